package respond

import (
	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/shared/telemetry"
)

// Context keys populated by middleware and handlers.
const (
	RequestIDKey  = "requestId"
	DocumentIDKey = "documentId"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString(RequestIDKey),
	}
	if docID := c.GetString(DocumentIDKey); docID != "" {
		fields["document_id"] = docID
	}
	if err, ok := details.(error); ok {
		fields["cause"] = err.Error()
		details = nil
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
