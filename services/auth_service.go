package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gin-catalog/apperrors"
	"gin-catalog/authz"
	"gin-catalog/constants"
	"gin-catalog/identity"
	"gin-catalog/models"
	"gin-catalog/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var loginTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_login_total",
		Help: "Login attempts by method and result",
	},
	[]string{"method", "result"},
)

// SessionClaims is the payload of the signed session token. Admin is copied
// from the user at login and is not refreshed until the next login.
type SessionClaims struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type SessionOptions struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	LocalLogin bool
}

type LoginRequest struct {
	Code          string
	State         string
	ExpectedState string
	CurrentToken  string
}

// LoginResult carries the session token. Reused is true when the caller
// was already signed in as the same user and kept its session.
type LoginResult struct {
	Token     string
	Principal *authz.Principal
	Reused    bool
}

type IAuthService interface {
	IssueState(ctx context.Context) (state string, authURL string, err error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LocalLogin(ctx context.Context, email string, password string) (*LoginResult, error)
	Establish(ctx context.Context, user *models.User, providerToken string) (string, error)
	CurrentPrincipal(ctx context.Context, token string) (*authz.Principal, error)
	Logout(ctx context.Context, token string) error
	ProvisionLocalUser(ctx context.Context, email string, displayName string, password string, isAdmin bool) (*models.User, error)
}

type AuthService struct {
	users    repositories.IUserRepository
	sessions repositories.ISessionRepository
	verifier identity.Verifier
	states   identity.StateStore
	options  SessionOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users repositories.IUserRepository,
	sessions repositories.ISessionRepository,
	verifier identity.Verifier,
	states identity.StateStore,
	options SessionOptions,
	logger *zap.Logger,
) IAuthService {
	if options.TTL <= 0 {
		options.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		states:   states,
		options:  options,
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

func (s *AuthService) IssueState(ctx context.Context) (string, string, error) {
	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", "", err
	}
	return state, s.verifier.AuthCodeURL(state), nil
}

// Login verifies the anti-forgery state, exchanges the code with the
// identity provider and establishes a session. Nothing is written for a
// failed login.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.State == "" || req.State != req.ExpectedState {
		loginTotal.WithLabelValues("oauth", "invalid_state").Inc()
		return nil, apperrors.Upstream(apperrors.InvalidState, constants.ErrInvalidState, nil)
	}
	ok, err := s.states.Consume(ctx, req.State)
	if err != nil {
		return nil, err
	}
	if !ok {
		loginTotal.WithLabelValues("oauth", "invalid_state").Inc()
		return nil, apperrors.Upstream(apperrors.InvalidState, constants.ErrInvalidState, nil)
	}

	verified, err := s.verifier.Verify(ctx, req.Code)
	if err != nil {
		loginTotal.WithLabelValues("oauth", "upstream_failure").Inc()
		s.logger.Warn("identity verification failed", zap.Error(err))
		return nil, err
	}

	user, err := s.users.GetOrCreate(ctx, verified.Email, verified.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	if current, err := s.CurrentPrincipal(ctx, req.CurrentToken); err == nil && current.ID == user.ID {
		loginTotal.WithLabelValues("oauth", "already_connected").Inc()
		return &LoginResult{Token: req.CurrentToken, Principal: current, Reused: true}, nil
	}

	token, err := s.Establish(ctx, user, verified.AccessToken)
	if err != nil {
		return nil, err
	}
	loginTotal.WithLabelValues("oauth", "success").Inc()
	s.logger.Info("user logged in", zap.Uint("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return &LoginResult{Token: token, Principal: principalOf(user)}, nil
}

func (s *AuthService) LocalLogin(ctx context.Context, email string, password string) (*LoginResult, error) {
	if !s.options.LocalLogin {
		return nil, apperrors.New(apperrors.Forbidden, "Local login is disabled")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			loginTotal.WithLabelValues("local", "invalid_credentials").Inc()
			return nil, apperrors.New(apperrors.Unauthenticated, constants.ErrInvalidLogin)
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		loginTotal.WithLabelValues("local", "invalid_credentials").Inc()
		return nil, apperrors.New(apperrors.Unauthenticated, constants.ErrInvalidLogin)
	}

	token, err := s.Establish(ctx, user, "")
	if err != nil {
		return nil, err
	}
	loginTotal.WithLabelValues("local", "success").Inc()
	return &LoginResult{Token: token, Principal: principalOf(user)}, nil
}

// Establish records a new session for user and returns its signed token.
func (s *AuthService) Establish(ctx context.Context, user *models.User, providerToken string) (string, error) {
	now := s.now()
	session := models.Session{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		ProviderToken: providerToken,
		ExpiresAt:     now.Add(s.options.TTL),
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	claims := SessionClaims{
		Name:  name,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.options.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.options.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// CurrentPrincipal resolves the principal of a session token. Any invalid,
// expired or revoked token yields an Unauthenticated error.
func (s *AuthService) CurrentPrincipal(ctx context.Context, token string) (*authz.Principal, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Unauthenticated, constants.ErrLoginRequired, err)
	}

	session, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.Unauthenticated, constants.ErrLoginRequired)
		}
		return nil, err
	}
	if !session.Active(s.now()) {
		return nil, apperrors.New(apperrors.Unauthenticated, constants.ErrLoginRequired)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uint(userID) != session.UserID {
		return nil, apperrors.New(apperrors.Unauthenticated, constants.ErrLoginRequired)
	}
	return &authz.Principal{
		ID:          session.UserID,
		DisplayName: claims.Name,
		IsAdmin:     claims.Admin,
	}, nil
}

// Logout revokes the session behind token and, when the session holds a
// provider access token, revokes that too. Unknown or already revoked
// sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}

	session, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if session.RevokedAt != nil {
		return nil
	}

	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if session.ProviderToken != "" {
		if err := s.verifier.Revoke(ctx, session.ProviderToken); err != nil {
			s.logger.Warn("failed to revoke provider token", zap.Uint("user_id", session.UserID), zap.Error(err))
		}
	}
	s.logger.Info("user logged out", zap.Uint("user_id", session.UserID))
	return nil
}

// ProvisionLocalUser creates or updates a user that can sign in with a
// password.
func (s *AuthService) ProvisionLocalUser(ctx context.Context, email string, displayName string, password string, isAdmin bool) (*models.User, error) {
	if len(password) < 8 {
		return nil, apperrors.New(apperrors.InvalidInput, "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreate(ctx, email, displayName)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.IsAdmin = isAdmin
	if strings.TrimSpace(displayName) != "" {
		user.DisplayName = displayName
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) parse(token string, validateClaims bool) (*SessionClaims, error) {
	if token == "" {
		return nil, errors.New("missing session token")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if validateClaims {
		opts = append(opts, jwt.WithExpirationRequired(), jwt.WithIssuer(s.options.Issuer))
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.options.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func principalOf(user *models.User) *authz.Principal {
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	return &authz.Principal{ID: user.ID, DisplayName: name, IsAdmin: user.IsAdmin}
}
