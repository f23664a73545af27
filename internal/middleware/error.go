package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "weddingbudget/internal/errors"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into the {"ok": false, "error": {...}} envelope. AppErrors keep
// their code; anything else is logged and reported as INTERNAL_ERROR.
// Responses a handler already wrote are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		log := Logger(c)
		// Process the last error (most relevant in a middleware chain)
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				fields := []interface{}{
					"code", appErr.Code,
					"internal", appErr.Internal.Error(),
					"path", c.FullPath(),
				}
				// retryable errors are transient store or lock failures
				if appErr.Retryable {
					log.Warnw("retryable app error", fields...)
				} else {
					log.Errorw("app error", fields...)
				}
			}
			c.JSON(appErr.StatusCode, errorBody(appErr))
			return
		}

		log.Errorw("unexpected error",
			"error", err.Error(),
			"path", c.FullPath(),
			"method", c.Request.Method,
		)
		c.JSON(apperrors.ErrInternalServer.StatusCode, errorBody(apperrors.ErrInternalServer))
	}
}
