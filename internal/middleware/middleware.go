package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/events-api/internal/models"
	"github.com/joshua-takyi/events-api/internal/services"
)

const RequestIDHeader = "X-Request-ID"

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler renders the last error attached by a handler. Client errors
// are logged at warn level, everything else at error level.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		requestID, _ := c.Get("request_id")

		status, body := render(err)
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"error", err.Error(),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("Request error", attrs...)
		} else {
			logger.Warn("Request error", attrs...)
		}

		c.JSON(status, body)
	}
}

func render(err error) (int, any) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, models.NewValidationErrorResponse(verrs)
	}

	var se *services.Error
	if !errors.As(err, &se) {
		return http.StatusInternalServerError, models.NewUnexpectedErrorResponse()
	}
	switch se.Kind {
	case services.KindInvalidArgument:
		return http.StatusBadRequest, models.ErrorResponse{Detail: se.Detail}
	case services.KindNotFound:
		return http.StatusNotFound, models.ErrorResponse{Detail: se.Detail}
	case services.KindServiceUnavailable:
		return http.StatusServiceUnavailable, models.ErrorResponse{Detail: se.Detail}
	case services.KindStorage:
		return http.StatusInternalServerError, models.ErrorResponse{Detail: se.Detail}
	default:
		return http.StatusInternalServerError, models.NewUnexpectedErrorResponse()
	}
}

// Recovery turns a panic into the generic 500 body.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID, _ := c.Get("request_id")
		logger.Error("Panic recovered",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.NewUnexpectedErrorResponse())
	})
}
