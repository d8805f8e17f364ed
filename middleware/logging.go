package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/internal/logger"
)

// RequestLogger emits one structured log line per request, tagged with
// the request ID so log lines correlate with responses.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("Request completed",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
