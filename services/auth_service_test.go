package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gin-catalog/apperrors"
	"gin-catalog/identity"
	"gin-catalog/models"
	"gin-catalog/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	identity  identity.VerifiedIdentity
	err       error
	revokeErr error
	verified  int
	revoked   []string
}

func (f *fakeVerifier) AuthCodeURL(state string) string {
	return "https://provider.test/auth?state=" + state
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*identity.VerifiedIdentity, error) {
	f.verified++
	if f.err != nil {
		return nil, f.err
	}
	id := f.identity
	return &id, nil
}

func (f *fakeVerifier) Revoke(_ context.Context, accessToken string) error {
	f.revoked = append(f.revoked, accessToken)
	return f.revokeErr
}

type authFixture struct {
	db       *gorm.DB
	service  *AuthService
	verifier *fakeVerifier
	states   *identity.MemoryStateStore
	users    repositories.IUserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := setupDB(t)
	verifier := &fakeVerifier{identity: identity.VerifiedIdentity{
		Subject:     "1076915",
		Email:       "dan@example.com",
		DisplayName: "Daniel Coats",
		AccessToken: "access-123",
	}}
	states := identity.NewMemoryStateStore(10 * time.Minute)
	users := repositories.NewUserRepository(db)
	service := NewAuthService(
		users,
		repositories.NewSessionRepository(db),
		verifier,
		states,
		SessionOptions{Secret: "test-secret", Issuer: "gin-catalog", TTL: time.Hour, LocalLogin: true},
		nil,
	).(*AuthService)
	return &authFixture{db: db, service: service, verifier: verifier, states: states, users: users}
}

func (f *authFixture) sessionCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Session{}).Count(&n).Error)
	return n
}

func (f *authFixture) login(t *testing.T, current string) *LoginResult {
	t.Helper()
	ctx := context.Background()
	state, authURL, err := f.service.IssueState(ctx)
	require.NoError(t, err)
	assert.Contains(t, authURL, state)

	result, err := f.service.Login(ctx, LoginRequest{Code: "code", State: state, ExpectedState: state, CurrentToken: current})
	require.NoError(t, err)
	return result
}

func TestAuthService_LoginEstablishesSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	result := f.login(t, "")
	require.NotEmpty(t, result.Token)
	assert.False(t, result.Reused)
	assert.Equal(t, "Daniel Coats", result.Principal.DisplayName)
	assert.Equal(t, int64(1), f.sessionCount(t))

	principal, err := f.service.CurrentPrincipal(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Principal.ID, principal.ID)
	assert.False(t, principal.IsAdmin)

	user, err := f.users.FindByEmail(ctx, "dan@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
}

func TestAuthService_LoginRejectsBadState(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	state, _, err := f.service.IssueState(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"empty", LoginRequest{Code: "code"}},
		{"cookie mismatch", LoginRequest{Code: "code", State: state, ExpectedState: "SOMETHINGELSE"}},
		{"never issued", LoginRequest{Code: "code", State: "FORGED", ExpectedState: "FORGED"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Login(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.UpstreamFailure, apperrors.KindOf(err))
			assert.Equal(t, apperrors.InvalidState, apperrors.UpstreamKindOf(err))
		})
	}
	assert.Zero(t, f.verifier.verified)
	assert.Zero(t, f.sessionCount(t))
}

func TestAuthService_LoginRejectsReplayedState(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	state, _, err := f.service.IssueState(ctx)
	require.NoError(t, err)
	req := LoginRequest{Code: "code", State: state, ExpectedState: state}

	_, err = f.service.Login(ctx, req)
	require.NoError(t, err)

	_, err = f.service.Login(ctx, req)
	assert.Equal(t, apperrors.InvalidState, apperrors.UpstreamKindOf(err))
	assert.Equal(t, int64(1), f.sessionCount(t))
}

func TestAuthService_LoginUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.verifier.err = apperrors.Upstream(apperrors.TokenMismatch, "Token's user ID doesn't match given user ID.", nil)

	state, _, err := f.service.IssueState(ctx)
	require.NoError(t, err)
	_, err = f.service.Login(ctx, LoginRequest{Code: "code", State: state, ExpectedState: state})
	assert.Equal(t, apperrors.TokenMismatch, apperrors.UpstreamKindOf(err))
	assert.Zero(t, f.sessionCount(t))

	_, err = f.users.FindByEmail(ctx, "dan@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAuthService_AlreadyConnected(t *testing.T) {
	f := newAuthFixture(t)

	first := f.login(t, "")
	again := f.login(t, first.Token)
	assert.True(t, again.Reused)
	assert.Equal(t, first.Token, again.Token)
	assert.Equal(t, int64(1), f.sessionCount(t))

	f.verifier.identity.Email = "someone@example.com"
	other := f.login(t, first.Token)
	assert.False(t, other.Reused)
	assert.NotEqual(t, first.Token, other.Token)
}

func TestAuthService_AdminCachedAtLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	result := f.login(t, "")
	user, err := f.users.FindByID(ctx, result.Principal.ID)
	require.NoError(t, err)
	user.IsAdmin = true
	require.NoError(t, f.users.Save(ctx, user))

	principal, err := f.service.CurrentPrincipal(ctx, result.Token)
	require.NoError(t, err)
	assert.False(t, principal.IsAdmin, "role changes apply from the next login")

	fresh := f.login(t, "")
	assert.True(t, fresh.Principal.IsAdmin)
}

func TestAuthService_CurrentPrincipalRejects(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	result := f.login(t, "")

	other := NewAuthService(nil, repositories.NewSessionRepository(f.db), f.verifier, f.states,
		SessionOptions{Secret: "another-secret", Issuer: "gin-catalog"}, nil)

	tests := []struct {
		name    string
		service IAuthService
		token   string
	}{
		{"empty", f.service, ""},
		{"garbage", f.service, "not.a.token"},
		{"wrong secret", other, result.Token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.service.CurrentPrincipal(ctx, tt.token)
			assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))
		})
	}

	t.Run("expired", func(t *testing.T) {
		f.service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { f.service.now = time.Now }()
		_, err := f.service.CurrentPrincipal(ctx, result.Token)
		assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	result := f.login(t, "")

	require.NoError(t, f.service.Logout(ctx, result.Token))
	assert.Equal(t, []string{"access-123"}, f.verifier.revoked)

	_, err := f.service.CurrentPrincipal(ctx, result.Token)
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))

	require.NoError(t, f.service.Logout(ctx, result.Token))
	assert.Len(t, f.verifier.revoked, 1)

	require.NoError(t, f.service.Logout(ctx, ""))
}

func TestAuthService_LogoutProviderFailureStillRevokes(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.verifier.revokeErr = errors.New("provider down")
	result := f.login(t, "")

	require.NoError(t, f.service.Logout(ctx, result.Token))
	_, err := f.service.CurrentPrincipal(ctx, result.Token)
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))
}

func TestAuthService_LocalLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	admin, err := f.service.ProvisionLocalUser(ctx, "Admin@Example.com", "Admin", "correct-horse", true)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	result, err := f.service.LocalLogin(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.True(t, result.Principal.IsAdmin)

	principal, err := f.service.CurrentPrincipal(ctx, result.Token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin)

	_, err = f.service.LocalLogin(ctx, "admin@example.com", "wrong-password")
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))

	_, err = f.service.LocalLogin(ctx, "nobody@example.com", "correct-horse")
	assert.Equal(t, apperrors.Unauthenticated, apperrors.KindOf(err))

	_, err = f.service.ProvisionLocalUser(ctx, "short@example.com", "", "short", false)
	assert.Equal(t, apperrors.InvalidInput, apperrors.KindOf(err))

	f.service.options.LocalLogin = false
	_, err = f.service.LocalLogin(ctx, "admin@example.com", "correct-horse")
	assert.Equal(t, apperrors.Forbidden, apperrors.KindOf(err))
}
