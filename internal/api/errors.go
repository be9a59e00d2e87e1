package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/pkg/logging"
)

// statusFor maps an application error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	case models.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a JSON error response. Application errors map to
// their status and surface their message; anything else is logged and
// reported as a plain 500 so internals never leak.
func writeError(c *gin.Context, err error) {
	if appErr, ok := models.AsAppError(err); ok && appErr.Code != models.CodeInternal {
		c.JSON(statusFor(appErr.Code), gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}

	logging.GetLogger().Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    models.CodeInternal,
		"message": "internal error",
	})
}
