package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-server/internal/models"
	"github.com/noah-isme/activity-server/internal/service"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
	"github.com/noah-isme/activity-server/pkg/response"
)

// ContextInstructorKey is the gin context key storing the resolved instructor.
const ContextInstructorKey = "currentInstructor"

// InstructorAuth protects management routes by requiring a bearer token that
// resolves to a registered instructor.
func InstructorAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "authentication token required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "invalid authorization header"))
			c.Abort()
			return
		}

		instructor, err := auth.ResolveInstructor(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextInstructorKey, instructor)
		c.Next()
	}
}

// InstructorFromContext returns the instructor stored by InstructorAuth.
func InstructorFromContext(c *gin.Context) *models.Instructor {
	value, exists := c.Get(ContextInstructorKey)
	if !exists {
		return nil
	}
	instructor, ok := value.(*models.Instructor)
	if !ok {
		return nil
	}
	return instructor
}
