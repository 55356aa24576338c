package middleware

import (
	"time"

	"taskforge-controlplane/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if a, ok := Actor(c); ok {
			fields = append(fields, zap.String("user_id", a.UserID))
		}

		log := logger.FromContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}
