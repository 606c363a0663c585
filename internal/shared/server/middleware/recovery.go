package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/telemetry"
)

const streamStatusTrailer = "X-Stream-Status"

// Recovery turns handler panics into a 500 envelope. When the body is already
// streaming, the declared status trailer is set to "error" instead.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			written := c.Writer.Written()
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    UserIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"written":    written,
			})
			if !written {
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
				return
			}
			if c.Writer.Header().Get("Trailer") == streamStatusTrailer {
				c.Writer.Header().Set(streamStatusTrailer, "error")
				c.Set("streamStatus", "error")
			}
			c.Abort()
		}()
		c.Next()
	}
}
