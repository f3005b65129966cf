package middleware

import (
	"strings"
	"time"

	"github.com/booktime/booktime/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
	LoggerKey       = "logger"
)

// LoggingMiddleware logs every request with a request id. Requests whose path
// starts with one of quietPrefixes (health checks, media files) log at debug.
func LoggingMiddleware(quietPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
		})
		c.Set(LoggerKey, log)

		quiet := false
		for _, prefix := range quietPrefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				quiet = true
				break
			}
		}

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status_code": status,
			"latency_ms":  time.Since(startTime).Milliseconds(),
			"body_size":   c.Writer.Size(),
		}
		if userID, ok := c.Get(UserIDKey); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		const msg = "Request completed"
		switch {
		case status >= 500:
			log.Error(msg, nil, fields)
		case status >= 400:
			log.Warn(msg, fields)
		case quiet:
			log.Debug(msg, fields)
		default:
			log.Info(msg, fields)
		}
	}
}

// GetLoggerFromContext returns the request logger, or the global one outside a request.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(LoggerKey); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
