package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gin-catalog/apperrors"
	"gin-catalog/config"
	"gin-catalog/constants"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type tokenInfo struct {
	IssuedTo string `json:"issued_to"`
	UserID   string `json:"user_id"`
	Error    string `json:"error"`
}

type userInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleVerifier upgrades a one-time code into an access token, checks the
// token belongs to this client and to the id_token subject, and fetches the
// user's profile.
type GoogleVerifier struct {
	oauth2       oauth2.Config
	tokenInfoURL string
	userInfoURL  string
	revokeURL    string
	httpClient   *http.Client
	logger       *zap.Logger
}

func NewGoogleVerifier(cfg config.OAuthConfig, logger *zap.Logger) *GoogleVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleVerifier{
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		tokenInfoURL: cfg.TokenInfoURL,
		userInfoURL:  cfg.UserInfoURL,
		revokeURL:    cfg.RevokeURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger.Named("identity"),
	}
}

func (v *GoogleVerifier) AuthCodeURL(state string) string {
	return v.oauth2.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (v *GoogleVerifier) Verify(ctx context.Context, code string) (*VerifiedIdentity, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, constants.ErrExchangeFailed, nil)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	tok, err := v.oauth2.Exchange(ctx, code)
	if err != nil {
		v.logger.Warn("code exchange failed", zap.Error(err))
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, constants.ErrExchangeFailed, err)
	}

	var info tokenInfo
	if err := v.getJSON(ctx, v.tokenInfoURL, url.Values{"access_token": {tok.AccessToken}}, &info); err != nil {
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, constants.ErrExchangeFailed, err)
	}
	if info.Error != "" {
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, info.Error, nil)
	}

	subject, err := idTokenSubject(tok)
	if err != nil {
		return nil, apperrors.Upstream(apperrors.TokenMismatch, constants.ErrTokenMismatch, err)
	}
	if info.UserID != subject {
		return nil, apperrors.Upstream(apperrors.TokenMismatch, "Token's user ID doesn't match given user ID", nil)
	}
	if info.IssuedTo != v.oauth2.ClientID {
		v.logger.Warn("token issued to another client", zap.String("issued_to", info.IssuedTo))
		return nil, apperrors.Upstream(apperrors.TokenMismatch, "Token's client ID does not match app's", nil)
	}

	var profile userInfo
	params := url.Values{"access_token": {tok.AccessToken}, "alt": {"json"}}
	if err := v.getJSON(ctx, v.userInfoURL, params, &profile); err != nil {
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, constants.ErrExchangeFailed, err)
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, apperrors.Upstream(apperrors.ExchangeFailed, "Provider returned no email", nil)
	}

	return &VerifiedIdentity{
		Subject:     subject,
		Email:       strings.TrimSpace(profile.Email),
		DisplayName: strings.TrimSpace(profile.Name),
		AccessToken: tok.AccessToken,
	}, nil
}

// Revoke invalidates an access token at the provider.
func (v *GoogleVerifier) Revoke(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (v *GoogleVerifier) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	// tokeninfo reports invalid tokens as 400 with an error body
	if resp.StatusCode >= 500 {
		return fmt.Errorf("get %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// idTokenSubject reads the sub claim of the id_token returned with tok
// without checking its signature.
func idTokenSubject(tok *oauth2.Token) (string, error) {
	raw, _ := tok.Extra("id_token").(string)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("provider did not return id_token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("parse id_token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("id_token has no subject")
	}
	return sub, nil
}
