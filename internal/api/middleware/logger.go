package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/timmy/tubevault/internal/logger"
)

const loggerKey = "logger"

// RequestLogger returns a Gin middleware that injects a request-scoped logger.
// Parameters:
//   - base: logger to enrich with request fields.
// Returns:
//   - gin.HandlerFunc: middleware handler.
func RequestLogger(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := base.WithContext(c.Request.Context())
		ctx = logger.WithFields(ctx, logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(loggerKey, logger.FromContext(ctx))
		c.Header("X-Request-ID", requestID)

		c.Next()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		logger.With(logger.Fields{
			logger.FieldStatus:     c.Writer.Status(),
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		}).Info(ctx, "%s %s client_ip=%s", c.Request.Method, path, c.ClientIP())
	}
}

// GetLogger returns the request-scoped logger, falling back to the one
// carried by the request context.
func GetLogger(c *gin.Context) *logger.Logger {
	if l, ok := c.Get(loggerKey); ok {
		if log, ok := l.(*logger.Logger); ok {
			return log
		}
	}
	return logger.FromContext(c.Request.Context())
}
