package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The "SELF" pseudo-role
// lets students reach their own resources by path id.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.Claims)

		allowSelf := false
		allowedRoles := make(map[string]struct{})

		for _, a := range allowed {
			if a == "SELF" {
				allowSelf = true
				continue
			}
			allowedRoles[a] = struct{}{}
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
