package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"sbom-storage/internal/shared/server/respond"
	"sbom-storage/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. A download that already
// started streaming keeps its partial body; only the log line is emitted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := map[string]any{
				"request_id":  RequestIDFromContext(c),
				"panic":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
				"method":      c.Request.Method,
				"route":       c.FullPath(),
				"path":        c.Request.URL.Path,
				"headers_out": c.Writer.Written(),
			}
			if id := c.GetString("generationId"); id != "" {
				fields["generation_id"] = id
			}
			if id := c.GetString("enhancementId"); id != "" {
				fields["enhancement_id"] = id
			}
			telemetry.Error("http.panic", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
