package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/infra/security"
	"github.com/JLCarveth/blog/internal/usecase"
)

const (
	// TokenHeader carries the session token for API clients.
	TokenHeader = "x-access-token"
	// TokenCookie carries the session token for browser clients.
	TokenCookie = "token"
)

// RequireAuth validates the session token and attaches the caller's
// identity to the request. The token is read from the x-access-token header
// first, then from the token cookie.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		claims, err := auth.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "token expired"))
			case errors.Is(err, security.ErrTokenSignature):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid token signature"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid token"))
			}
			return
		}

		SetIdentity(c, Identity{Email: claims.Email, Role: claims.Role})

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(TokenHeader)); token != "" {
		return token
	}
	if token, err := c.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(token)
	}
	return ""
}
