package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meeting-backend/internal/shared/metrics"
	"meeting-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request and counts it.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.Method == http.MethodOptions {
			return
		}

		status := c.Writer.Status()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if engine := c.GetString("engine"); engine != "" {
			fields["engine"] = engine
		}
		if output := c.GetString("outputFile"); output != "" {
			fields["output_file"] = output
		}
		telemetry.Info("request.complete", fields)
	}
}
