package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-server/internal/middleware"
	"github.com/noah-isme/activity-server/internal/service"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
	"github.com/noah-isme/activity-server/pkg/response"
)

// SubmissionHandler exposes submission and grading endpoints.
type SubmissionHandler struct {
	submissions *service.SubmissionService
	auth        *service.AuthService
}

// NewSubmissionHandler constructs handler.
func NewSubmissionHandler(submissions *service.SubmissionService, auth *service.AuthService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, auth: auth}
}

// Submit godoc
// @Summary Submit a notebook for grading
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param user formData string true "Student identifier"
// @Param name formData string true "Student display name"
// @Param activity formData string true "Activity id"
// @Param email formData string false "Student email"
// @Param prequiz_token formData string false "Pre-quiz token"
// @Param postquiz_token formData string false "Post-quiz token"
// @Param notebook formData file true "Notebook file"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	req := service.SubmitRequest{
		User:          c.PostForm("user"),
		Name:          c.PostForm("name"),
		ActivityID:    c.PostForm("activity"),
		Email:         optionalForm(c, "email"),
		PrequizToken:  optionalForm(c, "prequiz_token"),
		PostquizToken: optionalForm(c, "postquiz_token"),
	}

	content, filename, err := readUpload(c, "notebook")
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Notebook = content
	req.Filename = filename

	sub, err := h.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Submission received",
		"user":     sub.Username,
		"activity": sub.ActivityID,
	})
}

// UpdateScore godoc
// @Summary Update the score for a submission's latest attempt
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body service.ScoreRequest true "Score payload"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Router /api/score [put]
func (h *SubmissionHandler) UpdateScore(c *gin.Context) {
	var req service.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.submissions.UpdateScore(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"status":   "success",
		"activity": req.ActivityID,
		"user":     req.User,
		"score":    req.Score,
	})
}

// Attempts godoc
// @Summary List the grading history for a submission
// @Tags Submissions
// @Produce json
// @Param activity_id path string true "Activity id"
// @Param user path string true "Student identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/submissions/{activity_id}/{user}/attempts [get]
func (h *SubmissionHandler) Attempts(c *gin.Context) {
	activityID := c.Param("activity_id")
	username := c.Param("user")

	instructor := middleware.InstructorFromContext(c)
	if instructor == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if err := h.auth.RequireActivityAccess(c.Request.Context(), instructor, activityID); err != nil {
		response.Error(c, err)
		return
	}

	attempts, err := h.submissions.Attempts(c.Request.Context(), activityID, username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"activity": activityID,
		"user":     username,
		"attempts": attempts,
	})
}

func optionalForm(c *gin.Context, field string) *string {
	value := c.PostForm(field)
	if value == "" {
		return nil
	}
	return &value
}

func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, field+" file required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot open uploaded "+field)
	}
	defer file.Close() //nolint:errcheck
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "cannot read uploaded "+field)
	}
	return content, fileHeader.Filename, nil
}
