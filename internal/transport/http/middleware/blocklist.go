package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JLCarveth/blog/internal/usecase"
)

// ErrorResponse mirrors the handlers' error payload shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response carrying the trace ID.
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// Blocklist rejects requests from banned client addresses. It runs before
// any token parsing so a banned client learns nothing about its token.
func Blocklist(cache *usecase.BlocklistCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache.IsBlocked(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "address is blocked"))
			return
		}

		c.Next()
	}
}
