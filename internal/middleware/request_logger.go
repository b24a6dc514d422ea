package middleware

import (
	"time"

	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request. Probe paths are logged at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		format := "%s %s %d %s request_id=%s"
		args := []interface{}{c.Request.Method, path, c.Writer.Status(), time.Since(start), c.GetString(RequestIDKey)}

		switch {
		case path == "/health" || path == "/metrics":
			logging.Debugf(format, args...)
		case c.Writer.Status() >= 500:
			logging.Errorf(format, args...)
		default:
			logging.Infof(format, args...)
		}
	}
}
