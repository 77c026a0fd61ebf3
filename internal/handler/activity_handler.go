package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-server/internal/middleware"
	"github.com/noah-isme/activity-server/internal/service"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
	"github.com/noah-isme/activity-server/pkg/response"
)

// ActivityHandler exposes activity management and listing endpoints.
type ActivityHandler struct {
	activities *service.ActivityService
	exports    *service.ExportService
	auth       *service.AuthService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(activities *service.ActivityService, exports *service.ExportService, auth *service.AuthService) *ActivityHandler {
	return &ActivityHandler{activities: activities, exports: exports, auth: auth}
}

// Create godoc
// @Summary Create a new activity with its grading notebook
// @Tags Activities
// @Accept multipart/form-data
// @Produce json
// @Param activity_id formData string true "Activity id"
// @Param activity_name formData string true "Display name"
// @Param enabled formData boolean false "Enabled flag (default true)"
// @Param grading_notebook formData file true "Grading notebook file"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/activity [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	enabled, err := strconv.ParseBool(c.DefaultPostForm("enabled", "true"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enabled flag"))
		return
	}

	content, filename, err := readUpload(c, "grading_notebook")
	if err != nil {
		response.Error(c, err)
		return
	}

	activity, err := h.activities.Create(c.Request.Context(), service.CreateActivityRequest{
		ActivityID:      c.PostForm("activity_id"),
		ActivityName:    c.PostForm("activity_name"),
		Enabled:         enabled,
		GradingNotebook: content,
		Filename:        filename,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"status":        "success",
		"activity_id":   activity.ActivityID,
		"activity_name": activity.ActivityName,
	})
}

// Delete godoc
// @Summary Delete an activity and all associated submissions
// @Tags Activities
// @Produce json
// @Param activity_id path string true "Activity id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/activity/{activity_id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	activityID := c.Param("activity_id")
	if err := h.activities.Delete(c.Request.Context(), activityID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"status":  "success",
		"message": "Activity '" + activityID + "' deleted",
	})
}

// Update godoc
// @Summary Rename or enable/disable an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param activity_id path string true "Activity id"
// @Param payload body service.PatchActivityRequest true "Fields to patch"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/activity/{activity_id} [patch]
func (h *ActivityHandler) Update(c *gin.Context) {
	var req service.PatchActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.activities.Update(c.Request.Context(), c.Param("activity_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"status":        "success",
		"activity_id":   activity.ActivityID,
		"activity_name": activity.ActivityName,
		"enabled":       activity.Enabled,
	})
}

// List godoc
// @Summary List activities with instructor and submission counts
// @Tags Activities
// @Produce json
// @Param enabled_only query boolean false "Restrict to enabled activities (default true)"
// @Success 200 {object} map[string]interface{}
// @Router /api/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	enabledOnly, err := strconv.ParseBool(c.DefaultQuery("enabled_only", "true"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enabled_only flag"))
		return
	}
	summaries, err := h.activities.List(c.Request.Context(), enabledOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"activities": summaries})
}

// ByEmail godoc
// @Summary List enabled activities a student email has submitted to
// @Tags Activities
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} map[string]interface{}
// @Router /api/activities/by-email/{email} [get]
func (h *ActivityHandler) ByEmail(c *gin.Context) {
	email := c.Param("email")
	refs, err := h.activities.ByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"email":      email,
		"activities": refs,
	})
}

// Export godoc
// @Summary Export an activity's submission report
// @Tags Activities
// @Produce text/csv
// @Produce application/pdf
// @Param activity_id path string true "Activity id"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} file
// @Failure 403 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/activity/{activity_id}/export [get]
func (h *ActivityHandler) Export(c *gin.Context) {
	activityID := c.Param("activity_id")

	instructor := middleware.InstructorFromContext(c)
	if instructor == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}
	if err := h.auth.RequireActivityAccess(c.Request.Context(), instructor, activityID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Render(c.Request.Context(), activityID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename=`+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
