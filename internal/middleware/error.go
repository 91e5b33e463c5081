package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
)

// ErrorHandler converts errors attached to the Gin context into the
// JSON error envelope. Only the last attached error is rendered; it is
// the one closest to the failure when middleware stack errors pile up.
// Anything that is not an AppError is masked as a generic 500 so
// internals never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
