// Package services contains the server-side business logic. AuthService is
// the contract the transport layer consumes: registration, login, token
// refresh, logout, and token-to-user resolution.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/dbx"
	"github.com/avolkov/authgate/internal/server/auth"
	"github.com/avolkov/authgate/internal/server/models"
	"github.com/avolkov/authgate/internal/server/repositories/repomanager"
	"github.com/avolkov/authgate/internal/server/tokens"
	"github.com/google/uuid"
)

// AuthService composes the credential store and the token issuer. All
// failures are terminal for the request and surface as sentinel errors from
// internal/common.
type AuthService struct {
	db        dbx.DBTX
	repos     repomanager.RepositoryManager
	issuer    tokens.Issuer
	dummyHash string
}

func NewAuthService(db dbx.DBTX, repos repomanager.RepositoryManager, issuer tokens.Issuer) *AuthService {
	// Hashing a throwaway value keeps the unknown-username path in the
	// same timing class as a real password check.
	dummyHash, _ := auth.HashPassword("authgate-dummy")
	return &AuthService{db: db, repos: repos, issuer: issuer, dummyHash: dummyHash}
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return common.ErrValidation
	}
	return nil
}

// CreateUser validates input, hashes the password, and persists a new user.
// A duplicate username yields common.ErrAlreadyExists.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: hash,
	}

	repo := s.repos.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Register creates a user and issues credentials for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (*tokens.Credentials, error) {
	user, err := s.CreateUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issuer.Issue(ctx, user.ID)
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords are indistinguishable: both yield
// common.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	repo := s.repos.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn a comparison so the miss costs as much as a mismatch.
			auth.CheckPassword(s.dummyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates and issues credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*tokens.Credentials, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issuer.Issue(ctx, user.ID)
}

// Refresh delegates to the active issuer strategy.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Credentials, error) {
	return s.issuer.Refresh(ctx, refreshToken)
}

// Logout revokes the presented token. It always acknowledges: unknown
// tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.issuer.Revoke(ctx, token)
}

// UserByToken resolves an access-capable token to the owning user.
func (s *AuthService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.issuer.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	repo := s.repos.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrInternal
	}
	return user, nil
}
