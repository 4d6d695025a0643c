package middleware

import (
	"github.com/gin-gonic/gin"

	"contrapunto/internal/pkg/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or assigns a fresh one, and echoes
// it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = id.New()
		}

		c.Set("request_id", rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}
