package middlewares

import (
	"net/http"
	"strings"

	"gin-catalog/apperrors"
	"gin-catalog/authz"
	"gin-catalog/constants"
	"gin-catalog/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionToken returns the session token presented with the request. The
// Authorization header wins over the session cookie.
func SessionToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := ctx.Cookie(constants.SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware resolves the session of every request. Requests without a
// valid session continue as anonymous with a nil principal.
func AuthMiddleware(authService services.IAuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var principal *authz.Principal

		token := SessionToken(ctx)
		if token != "" {
			ctx.Set(constants.ContextSessionToken, token)
			p, err := authService.CurrentPrincipal(ctx.Request.Context(), token)
			switch {
			case err == nil:
				principal = p
			case apperrors.Is(err, apperrors.Unauthenticated):
			default:
				logger.Error("failed to resolve session", zap.Error(err))
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": constants.ErrUnexpected})
				return
			}
		}

		ctx.Set(constants.ContextPrincipal, principal)
		ctx.Next()
	}
}

// CurrentPrincipal returns the principal set by AuthMiddleware, or nil.
func CurrentPrincipal(ctx *gin.Context) *authz.Principal {
	value, exists := ctx.Get(constants.ContextPrincipal)
	if !exists {
		return nil
	}
	principal, _ := value.(*authz.Principal)
	return principal
}

// CurrentSessionToken returns the token AuthMiddleware read from the request,
// or "" when none was presented.
func CurrentSessionToken(ctx *gin.Context) string {
	return ctx.GetString(constants.ContextSessionToken)
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if CurrentPrincipal(ctx) == nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": constants.ErrLoginRequired})
			return
		}
		ctx.Next()
	}
}
