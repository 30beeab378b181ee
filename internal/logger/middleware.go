package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// request logging for gin: one line per request, warn on 5xx
func Middleware() gin.HandlerFunc {
	l := With("component", "http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		lvl := slog.LevelInfo
		if status >= 500 {
			lvl = slog.LevelWarn
		}

		l.Log(c.Request.Context(), lvl, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
