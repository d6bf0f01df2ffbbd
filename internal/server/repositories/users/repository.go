// Package users declares the repository contract for user identity records.
package users

import (
	"context"

	"github.com/avolkov/authgate/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a new user. A duplicate username yields
	// common.ErrAlreadyExists; the database unique constraint is the
	// serialization point for concurrent creates.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username, or
	// common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns the user with the given ID, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
