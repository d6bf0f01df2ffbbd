// Package tokens implements credential issuance. Two interchangeable
// strategies exist: a stateless JWT access/refresh pair, and a server-stored
// opaque token. The active strategy is chosen once at startup.
package tokens

import "context"

// Credentials is what a successful registration or login hands back to the
// caller. The jwt strategy fills AccessToken/RefreshToken; the opaque
// strategy fills Token.
type Credentials struct {
	Token        string `json:"token,omitempty"`
	AccessToken  string `json:"access,omitempty"`
	RefreshToken string `json:"refresh,omitempty"`
}

// Issuer mints credentials for authenticated users and verifies presented
// tokens.
type Issuer interface {
	// Issue mints credentials for userID.
	Issue(ctx context.Context, userID string) (*Credentials, error)

	// Refresh mints a new access token from a valid refresh token. The
	// opaque strategy does not support refresh and always returns
	// common.ErrInvalidToken.
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)

	// Resolve verifies an access-capable token and returns the owning
	// user's ID.
	Resolve(ctx context.Context, token string) (string, error)

	// Revoke invalidates a token. Revoking an unknown token is not an
	// error; the jwt strategy is stateless and Revoke is a no-op.
	Revoke(ctx context.Context, token string) error
}
