// util/http_util.go
package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	grant_errors "github.com/dev-mohitbeniwal/grantflow/errors"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
)

// ActorContextKey holds the authenticated caller's email on a gin context.
const ActorContextKey = "actorEmail"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// StatusFor maps an error category to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, grant_errors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, grant_errors.ErrMissingIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, grant_errors.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, grant_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, grant_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, grant_errors.ErrLockUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, grant_errors.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError writes err with the status for its category.
// Server-side failures are logged as errors, caller mistakes as warnings.
func RespondWithServiceError(c *gin.Context, err error) {
	code := StatusFor(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", code),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	message := err.Error()
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
		if code == http.StatusInternalServerError {
			message = "internal server error"
		}
	} else {
		logger.Warn("Request rejected", fields...)
	}
	c.JSON(code, gin.H{"error": message})
}

func GetActorFromContext(c *gin.Context) (string, error) {
	actor, exists := c.Get(ActorContextKey)
	if !exists {
		return "", grant_errors.ErrMissingIdentity
	}
	email, ok := actor.(string)
	if !ok || email == "" {
		return "", grant_errors.ErrMissingIdentity
	}
	return email, nil
}
