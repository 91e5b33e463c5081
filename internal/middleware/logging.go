package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finsight/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging tags every request with an X-Request-ID and emits one
// structured line per request after the handler chain completes.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if n := len(c.Errors); n > 0 {
			fields = append(fields, "errors", n)
		}
		logger.Get().Infow("request", fields...)
	}
}
