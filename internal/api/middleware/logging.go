package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// StructuredLogging emits one slog line per request. Health checks poll too
// often to be worth a line each.
func StructuredLogging(logger *slog.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		if p.Path == "/health" {
			return ""
		}

		id, _ := p.Keys[requestIDKey].(string)
		logger.Info("http request",
			"request_id", id,
			"method", p.Method,
			"path", p.Path,
			"status", p.StatusCode,
			"latency_ms", p.Latency.Milliseconds(),
			"client_ip", p.ClientIP,
			"user_agent", p.Request.UserAgent(),
			"error", p.ErrorMessage,
		)
		return ""
	})
}
