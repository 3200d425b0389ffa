package middleware

import (
	"time"

	"gscgateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// the raw query is left out, it carries the OAuth code on the callback
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []logger.Field{
			{Key: "path", Value: path},
			{Key: "method", Value: c.Request.Method},
			{Key: "status", Value: status},
			{Key: "latency", Value: latency.String()},
			{Key: "request_id", Value: RequestID(c)},
		}

		switch {
		case status >= 500:
			l.Error(c.Request.Context(), "request completed", fields...)
		case status >= 400:
			l.Warn(c.Request.Context(), "request completed", fields...)
		default:
			l.Info(c.Request.Context(), "request completed", fields...)
		}
	}
}
