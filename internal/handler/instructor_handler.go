package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-server/internal/service"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
	"github.com/noah-isme/activity-server/pkg/response"
)

// InstructorHandler exposes instructor management endpoints.
type InstructorHandler struct {
	instructors *service.InstructorService
}

// NewInstructorHandler constructs handler.
func NewInstructorHandler(instructors *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

// Add godoc
// @Summary Add an instructor to an activity
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body service.AddInstructorRequest true "Instructor payload"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorEnvelope
// @Security BearerAuth
// @Router /api/instructor [post]
func (h *InstructorHandler) Add(c *gin.Context) {
	var req service.AddInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if _, err := h.instructors.Add(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Instructor '%s' added to activity '%s'", req.Email, req.ActivityID),
	})
}
