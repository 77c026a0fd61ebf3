package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-server/internal/dto"
	"github.com/noah-isme/activity-server/internal/service"
	"github.com/noah-isme/activity-server/pkg/config"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
	"github.com/noah-isme/activity-server/pkg/response"
)

const tokenCookie = "instructor_token"

// DashboardHandler serves the instructor-facing HTML surface and the
// notebook download endpoint.
type DashboardHandler struct {
	auth        *service.AuthService
	dashboards  *service.DashboardService
	submissions *service.SubmissionService
	cfg         *config.Config
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(auth *service.AuthService, dashboards *service.DashboardService, submissions *service.SubmissionService, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{auth: auth, dashboards: dashboards, submissions: submissions, cfg: cfg}
}

// Dashboard renders the instructor dashboard, or the login page when the
// request carries no usable token.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	token := h.requestToken(c)
	if token == "" {
		h.renderLogin(c, "")
		return
	}

	instructor, err := h.auth.ResolveInstructor(c.Request.Context(), token)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrForbidden.Code {
			h.renderLogin(c, "Email not authorized as instructor")
		} else {
			h.renderLogin(c, "Invalid or expired token")
		}
		return
	}

	view, err := h.dashboards.View(c.Request.Context(), instructor, token)
	if err != nil {
		h.renderLogin(c, "Failed to load dashboard")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", view)
}

// Logout clears the session cookie and renders a redirect page.
func (h *DashboardHandler) Logout(c *gin.Context) {
	c.SetCookie(tokenCookie, "", -1, "/", "", false, false)
	c.HTML(http.StatusOK, "logout.html", nil)
}

// Download godoc
// @Summary Download a student's notebook
// @Tags Submissions
// @Produce application/x-ipynb+json
// @Param activity_id path string true "Activity id"
// @Param user path string true "Student identifier"
// @Param token query string true "Instructor bearer token"
// @Param attempt query integer false "Attempt id (default: latest)"
// @Success 200 {file} file
// @Failure 401 {object} response.ErrorEnvelope
// @Failure 403 {object} response.ErrorEnvelope
// @Failure 404 {object} response.ErrorEnvelope
// @Router /download/{activity_id}/{user} [get]
func (h *DashboardHandler) Download(c *gin.Context) {
	token := h.requestToken(c)
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "authentication token required"))
		return
	}

	instructor, err := h.auth.ResolveInstructor(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	activityID := c.Param("activity_id")
	username := c.Param("user")

	if err := h.auth.RequireActivityAccess(c.Request.Context(), instructor, activityID); err != nil {
		response.Error(c, err)
		return
	}

	var attemptID int64
	if raw := c.Query("attempt"); raw != "" {
		attemptID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attempt id"))
			return
		}
	}

	attempt, err := h.submissions.Download(c.Request.Context(), activityID, username, attemptID)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "notebook.ipynb"
	if attempt.NotebookFilename != nil && *attempt.NotebookFilename != "" {
		filename = *attempt.NotebookFilename
	}

	c.Header("Content-Disposition", `attachment; filename=`+filename)
	c.Data(http.StatusOK, "application/x-ipynb+json", attempt.Notebook)
}

// requestToken prefers the session cookie and falls back to the token query
// parameter used by dashboard download links.
func (h *DashboardHandler) requestToken(c *gin.Context) string {
	if token, err := c.Cookie(tokenCookie); err == nil && token != "" {
		return token
	}
	return c.Query("token")
}

func (h *DashboardHandler) renderLogin(c *gin.Context, errorMessage string) {
	c.HTML(http.StatusOK, "login.html", dto.LoginView{
		GoogleClientID: h.cfg.OAuth.GoogleClientID,
		Error:          errorMessage,
		CookieMaxAge:   int(h.cfg.Dashboard.CookieMaxAge.Seconds()),
	})
}
