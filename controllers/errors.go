package controllers

import (
	"net/http"

	"gin-catalog/apperrors"
	"gin-catalog/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusOf maps an error kind onto its HTTP status.
func statusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.Unauthenticated:
		return http.StatusUnauthorized
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Conflict:
		return http.StatusConflict
	case apperrors.InvalidInput:
		return http.StatusBadRequest
	case apperrors.UpstreamFailure:
		if apperrors.UpstreamKindOf(err) == apperrors.ExchangeFailed {
			return http.StatusBadGateway
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("unexpected error",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		_ = ctx.Error(err)
		ctx.JSON(status, gin.H{"error": constants.ErrUnexpected})
		return
	}
	ctx.JSON(status, gin.H{"error": apperrors.Message(err, http.StatusText(status))})
}

func respondInvalidInput(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": constants.ErrInvalidInput, "details": err.Error()})
}
