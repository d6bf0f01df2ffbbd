package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/dbx"
	"github.com/avolkov/authgate/internal/server/repositories/repomanager"
)

// opaqueTokenBytes is the entropy of a generated token; the hex encoding
// doubles the string length.
const opaqueTokenBytes = 32

// OpaqueIssuer binds one random token to each user in the database.
// Issuance is get-or-create; tokens never expire and are invalidated only
// by Revoke.
type OpaqueIssuer struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewOpaqueIssuer(db *sql.DB, repos repomanager.RepositoryManager) *OpaqueIssuer {
	return &OpaqueIssuer{db: db, repos: repos}
}

// Issue returns the existing token for userID, or mints and stores a new
// one. Repeated calls for the same user return identical credentials. The
// lookup and insert run in one transaction so two concurrent calls cannot
// both insert.
func (i *OpaqueIssuer) Issue(ctx context.Context, userID string) (*Credentials, error) {
	var creds *Credentials
	err := dbx.WithTx(ctx, i.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := i.repos.AuthTokens(tx)

		existing, err := repo.FindByUser(ctx, userID)
		if err == nil {
			creds = &Credentials{Token: existing.Token}
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("error searching token: %w", err)
		}

		token, err := common.MakeRandHexString(opaqueTokenBytes)
		if err != nil {
			return common.ErrInternal
		}
		if err := repo.Create(ctx, userID, token); err != nil {
			return fmt.Errorf("error storing token: %w", err)
		}
		creds = &Credentials{Token: token}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return creds, nil
}

// Refresh is unsupported: opaque tokens do not expire, so there is nothing
// to refresh.
func (i *OpaqueIssuer) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	return nil, common.ErrInvalidToken
}

func (i *OpaqueIssuer) Resolve(ctx context.Context, token string) (string, error) {
	repo := i.repos.AuthTokens(i.db)

	authToken, err := repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", common.ErrInternal
	}
	return authToken.UserID, nil
}

// Revoke deletes the binding; unknown tokens are acknowledged silently.
func (i *OpaqueIssuer) Revoke(ctx context.Context, token string) error {
	repo := i.repos.AuthTokens(i.db)
	return repo.Delete(ctx, token)
}
