package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yukikurage/workforce-api/internal/constants"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
)

// ErrorHandler renders the last error pushed with apierrors.Abort and logs
// it with the request context. Internal error text reaches the client only
// when debug is true.
func ErrorHandler(log zerolog.Logger, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if c.Writer.Written() {
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("error after response was written")
			return
		}

		appErr := apierrors.Respond(c, err, debug)
		logError(c, log, appErr, err)
	}
}

// Recovery turns panics into the standard 500 envelope.
func Recovery(log zerolog.Logger, debug bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		appErr := apierrors.Respond(c, err, debug)
		logError(c, log, appErr, err)
		c.Abort()
	})
}

func logError(c *gin.Context, log zerolog.Logger, appErr *apierrors.AppError, err error) {
	event := log.Warn()
	if appErr.Status >= http.StatusInternalServerError {
		event = log.Error()
	}

	event = event.
		Err(err).
		Int("status", appErr.Status).
		Str("code", appErr.Code).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("request_id", GetRequestID(c))
	if userID, ok := GetUserID(c); ok {
		event = event.Uint64("user_id", userID)
	}
	if raw, ok := c.Get(constants.ContextKeyRequestBody); ok {
		if body, ok := raw.([]byte); ok && len(body) > 0 {
			event = event.Str("body", RedactBody(body))
		}
	}
	event.Msg("request failed")
}

// NoRoute renders unknown paths in the standard envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		apierrors.Abort(c, apierrors.NewNotFoundError("Route not found"))
	}
}
