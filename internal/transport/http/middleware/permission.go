package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/core/domain"
	"github.com/JLCarveth/blog/internal/usecase"
)

// RequirePermission enforces that the authenticated caller's role grants
// every permission in the requirement. It must run after RequireAuth.
func RequirePermission(cache *usecase.PermissionCache, requirement domain.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		if !cache.Satisfies(identity.Role, requirement) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}
