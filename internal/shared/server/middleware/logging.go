package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/shared/server/respond"
	"docbrains-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"bytes_out":   c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if docID := c.GetString(respond.DocumentIDKey); docID != "" {
			fields["document_id"] = docID
		}
		if method := c.GetString("extractionMethod"); method != "" {
			fields["extraction_method"] = method
		}
		telemetry.Info("request.complete", fields)
	}
}
