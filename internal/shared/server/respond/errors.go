package respond

import (
	"github.com/gin-gonic/gin"

	"meeting-backend/internal/shared/telemetry"
)

// ErrorResponse is the body for validation and lookup failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FailureResponse is the body for analysis failures.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Error logs and sends {"error": message}.
func Error(c *gin.Context, status int, message string) {
	logError(c, status, message)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// Failure logs and sends {"success": false, "error": message}.
func Failure(c *gin.Context, status int, message string) {
	logError(c, status, message)
	c.AbortWithStatusJSON(status, FailureResponse{Success: false, Error: message})
}

func logError(c *gin.Context, status int, message string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})
}
