package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/yigit/alumnihub/internal/app/models/dto"
)

// ContextRequestID holds the id of the current request
const ContextRequestID = "requestId"

// HeaderRequestID is echoed back on every response
const HeaderRequestID = "X-Request-ID"

// RequestID tags each request with a ULID unless the caller sent one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger logs one line per request after it completes
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str("requestId", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP())
		if userID, ok := GetUserID(c); ok {
			event = event.Str("userID", userID.String())
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("HTTP request")
	}
}

// Recovery turns panics into a 500 response and logs the stack
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Interface("panic", recovered).
			Str("requestId", c.GetString(ContextRequestID)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	})
}
