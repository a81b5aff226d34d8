package middlewares

import (
	"net/http"

	"gin-catalog/apperrors"
	"gin-catalog/authz"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorize runs the guard for operations whose decision does not depend on
// the stored resource, such as category mutations and item creation. Item
// updates and deletes need the owner and are checked in the controller.
// Must run after AuthMiddleware.
func Authorize(op authz.Operation, kind authz.ResourceKind, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal := CurrentPrincipal(ctx)
		err := authz.Authorize(principal, op, authz.Resource{Kind: kind})
		if err == nil {
			ctx.Next()
			return
		}

		status := http.StatusForbidden
		if apperrors.Is(err, apperrors.Unauthenticated) {
			status = http.StatusUnauthorized
		}
		fields := []zap.Field{
			zap.Stringer("operation", op),
			zap.Stringer("resource", kind),
			zap.String("path", ctx.FullPath()),
		}
		if principal != nil {
			fields = append(fields, zap.Uint("user_id", principal.ID))
		}
		logger.Debug("access denied", fields...)
		ctx.AbortWithStatusJSON(status, gin.H{"error": apperrors.Message(err, http.StatusText(status))})
	}
}
