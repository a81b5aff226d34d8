package controllers

import (
	"net/http"
	"strings"
	"time"

	"gin-catalog/constants"
	"gin-catalog/dto"
	"gin-catalog/middlewares"
	"gin-catalog/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CookieOptions struct {
	Secure     bool
	SessionTTL time.Duration
	StateTTL   time.Duration
}

type IAuthController interface {
	Login(ctx *gin.Context)
	Callback(ctx *gin.Context)
	GConnect(ctx *gin.Context)
	LocalLogin(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Me(ctx *gin.Context)
}

type AuthController struct {
	service services.IAuthService
	cookies CookieOptions
	logger  *zap.Logger
}

func NewAuthController(service services.IAuthService, cookies CookieOptions, logger *zap.Logger) IAuthController {
	return &AuthController{service: service, cookies: cookies, logger: logger}
}

// Login issues an anti-forgery state token and the provider URL to send the
// user to. The state is also stored in a cookie and must come back with
// the provider's answer.
func (c *AuthController) Login(ctx *gin.Context) {
	state, authURL, err := c.service.IssueState(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.setCookie(ctx, constants.StateCookieName, state, c.cookies.StateTTL)
	ctx.JSON(http.StatusOK, gin.H{"data": dto.LoginStateResponse{State: state, AuthURL: authURL}})
}

func (c *AuthController) Callback(ctx *gin.Context) {
	if providerErr := ctx.Query("error"); providerErr != "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": providerErr})
		return
	}
	c.login(ctx, ctx.Query("state"), ctx.Query("code"))
}

// GConnect accepts the one-time code as the raw request body.
func (c *AuthController) GConnect(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		respondInvalidInput(ctx, err)
		return
	}
	c.login(ctx, ctx.Query("state"), strings.TrimSpace(string(body)))
}

func (c *AuthController) login(ctx *gin.Context, state string, code string) {
	expected, _ := ctx.Cookie(constants.StateCookieName)
	c.clearCookie(ctx, constants.StateCookieName)

	result, err := c.service.Login(ctx.Request.Context(), services.LoginRequest{
		Code:          code,
		State:         state,
		ExpectedState: expected,
		CurrentToken:  middlewares.CurrentSessionToken(ctx),
	})
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.respondLogin(ctx, result)
}

func (c *AuthController) LocalLogin(ctx *gin.Context) {
	var input dto.LocalLoginInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	result, err := c.service.LocalLogin(ctx.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.respondLogin(ctx, result)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	token := middlewares.CurrentSessionToken(ctx)
	if err := c.service.Logout(ctx.Request.Context(), token); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.clearCookie(ctx, constants.SessionCookieName)
	ctx.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (c *AuthController) Me(ctx *gin.Context) {
	principal := middlewares.CurrentPrincipal(ctx)
	if principal == nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": constants.ErrLoginRequired})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": principal})
}

func (c *AuthController) respondLogin(ctx *gin.Context, result *services.LoginResult) {
	c.setCookie(ctx, constants.SessionCookieName, result.Token, c.cookies.SessionTTL)
	ctx.JSON(http.StatusOK, gin.H{"data": dto.LoginResponse{
		Token:            result.Token,
		UserID:           result.Principal.ID,
		DisplayName:      result.Principal.DisplayName,
		IsAdmin:          result.Principal.IsAdmin,
		AlreadyConnected: result.Reused,
	}})
}

func (c *AuthController) setCookie(ctx *gin.Context, name string, value string, ttl time.Duration) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, int(ttl.Seconds()), "/", "", c.cookies.Secure, true)
}

func (c *AuthController) clearCookie(ctx *gin.Context, name string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, "", -1, "/", "", c.cookies.Secure, true)
}
