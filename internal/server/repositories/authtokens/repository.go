// Package authtokens declares the repository contract for opaque token
// bindings. Each user has at most one token; the token string itself is the
// primary key.
package authtokens

import (
	"context"

	"github.com/avolkov/authgate/internal/server/models"
)

// Repository defines persistence operations for opaque tokens.
type Repository interface {
	// Create inserts a new token binding for userID.
	Create(ctx context.Context, userID string, token string) error

	// Find looks up a binding by its token string, returning
	// common.ErrNotFound when the token is unknown.
	Find(ctx context.Context, token string) (*models.AuthToken, error)

	// FindByUser returns the existing binding for userID, or
	// common.ErrNotFound.
	FindByUser(ctx context.Context, userID string) (*models.AuthToken, error)

	// Delete removes a binding by its token string. Deleting an unknown
	// token is not an error.
	Delete(ctx context.Context, token string) error
}
