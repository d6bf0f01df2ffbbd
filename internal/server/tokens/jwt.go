package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/server/auth"
	"github.com/avolkov/authgate/internal/server/config"
)

// JWTIssuer mints stateless HS256-signed access/refresh pairs. Validity is
// determined entirely by signature and embedded expiry; nothing is stored
// server-side.
type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTIssuer(cfg *config.Config) *JWTIssuer {
	return &JWTIssuer{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
	}
}

func (i *JWTIssuer) Issue(ctx context.Context, userID string) (*Credentials, error) {
	access, err := auth.GenerateToken(userID, auth.TokenTypeAccess, i.secret, i.accessTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := auth.GenerateToken(userID, auth.TokenTypeRefresh, i.secret, i.refreshTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh verifies the refresh-only claim and mints a new access token for
// the same subject. The refresh token is returned unchanged; there is no
// rotation or revocation list in this design.
func (i *JWTIssuer) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	userID, err := auth.ParseToken(refreshToken, auth.TokenTypeRefresh, i.secret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	access, err := auth.GenerateToken(userID, auth.TokenTypeAccess, i.secret, i.accessTTL)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &Credentials{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (i *JWTIssuer) Resolve(ctx context.Context, token string) (string, error) {
	return auth.ParseToken(token, auth.TokenTypeAccess, i.secret)
}

// Revoke is a no-op: stateless tokens cannot be invalidated server-side.
func (i *JWTIssuer) Revoke(ctx context.Context, token string) error {
	return nil
}
