package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header name for the trace ID.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for the trace ID.
	TraceIDKey = "trace_id"

	identityKey = "identity"
)

// Identity is the authenticated principal attached to the request context
// by the token gate. Everything downstream reads the role from here, never
// from the raw token.
type Identity struct {
	Email string
	Role  string
}

// EnrichContext assigns each request a trace ID and echoes it back in the
// response headers.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// SetIdentity attaches the authenticated principal to the request.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// GetIdentity retrieves the authenticated principal. The second return is
// false when the request never passed the token gate.
func GetIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}
