package api

import (
	"alcyxob/training-planner/internal/logger"
	"alcyxob/training-planner/internal/service"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware reuses the caller's request ID or assigns a new one and
// puts it on the request context for the service loggers.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// LoggingMiddleware logs every request once it has been handled, together
// with any error a handler attached.
func LoggingMiddleware(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := logger.FromContext(c.Request.Context(), base)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", attrs...)
		default:
			log.Info("request handled", attrs...)
		}
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// statusForError maps a service error kind to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError aborts with the status of err. Internal failures
// are logged in full but not echoed to the client.
func respondWithServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
		if errors.Is(err, service.ErrStartFailed) {
			message = service.ErrStartFailed.Error()
		}
	}
	abortWithError(c, status, message)
}

// objectIDParam parses a path parameter as an ObjectID, aborting with 400 if it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
