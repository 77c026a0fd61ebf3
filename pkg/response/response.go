package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

// ErrorEnvelope is the body rendered for failed requests.
type ErrorEnvelope struct {
	Error *appErrors.Error `json:"error"`
}

// JSON sends a success payload as-is. The submission portal and the grading
// client both expect the documented top-level shapes, so there is no data
// wrapper here.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorEnvelope{Error: appErr})
}
