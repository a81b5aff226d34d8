// Package identity talks to the external OAuth2 identity provider and keeps
// the anti-forgery state tokens used during login.
package identity

import "context"

// VerifiedIdentity is what the provider vouches for after a successful code
// exchange.
type VerifiedIdentity struct {
	Subject     string
	Email       string
	DisplayName string
	AccessToken string
}

// Verifier exchanges one-time authorization codes with the provider.
// Errors are apperrors of kind UpstreamFailure.
type Verifier interface {
	AuthCodeURL(state string) string
	Verify(ctx context.Context, code string) (*VerifiedIdentity, error)
	Revoke(ctx context.Context, accessToken string) error
}
