package security

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the request correlation header. An inbound value is
// trusted and echoed; otherwise a fresh one is assigned.
const HeaderRequestID = "X-Request-ID"

const contextKeyRequestID = "requestID"

// RequestIDMiddleware assigns each request a correlation ID and echoes it in
// the response headers.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID returns the correlation ID assigned by RequestIDMiddleware.
func RequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}

// AccessLogMiddleware logs each HTTP request with method, path, status, and duration.
// Paths listed in skipPaths are silently passed through without logging.
func AccessLogMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", duration,
			"clientIP", c.ClientIP(),
			"requestID", RequestID(c),
		)
	}
}
