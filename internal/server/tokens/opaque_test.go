package tokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/dbx"
	"github.com/avolkov/authgate/internal/server/models"
	"github.com/avolkov/authgate/internal/server/repositories/authtokens"
	"github.com/avolkov/authgate/internal/server/repositories/users"
)

// --- fakes ---

type fakeTokenRepo struct {
	byToken map[string]*models.AuthToken
	byUser  map[string]*models.AuthToken

	findErr   error
	createErr error
	deleteErr error

	deleted []string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		byToken: map[string]*models.AuthToken{},
		byUser:  map[string]*models.AuthToken{},
	}
}

func (f *fakeTokenRepo) Create(ctx context.Context, userID string, token string) error {
	if f.createErr != nil {
		return f.createErr
	}
	at := &models.AuthToken{Token: token, UserID: userID, CreatedAt: time.Now()}
	f.byToken[token] = at
	f.byUser[userID] = at
	return nil
}

func (f *fakeTokenRepo) Find(ctx context.Context, token string) (*models.AuthToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	at, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return at, nil
}

func (f *fakeTokenRepo) FindByUser(ctx context.Context, userID string) (*models.AuthToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	at, ok := f.byUser[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return at, nil
}

func (f *fakeTokenRepo) Delete(ctx context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	if at, ok := f.byToken[token]; ok {
		delete(f.byUser, at.UserID)
		delete(f.byToken, token)
	}
	return nil
}

type fakeRepoManager struct {
	tokens authtokens.Repository
}

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return nil }
func (f *fakeRepoManager) AuthTokens(db dbx.DBTX) authtokens.Repository { return f.tokens }
func (f *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func newOpaqueIssuer(t *testing.T, repo authtokens.Repository) (*OpaqueIssuer, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewOpaqueIssuer(db, &fakeRepoManager{tokens: repo}), mock, db
}

// --- tests ---

func TestOpaqueIssuer_IssueIsIdempotent(t *testing.T) {
	repo := newFakeTokenRepo()
	iss, mock, db := newOpaqueIssuer(t, repo)
	defer db.Close()
	ctx := context.Background()

	// Two issue calls, two transactions.
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	first, err := iss.Issue(ctx, "u-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if first.Token == "" || first.AccessToken != "" {
		t.Fatalf("unexpected credentials: %+v", first)
	}

	second, err := iss.Issue(ctx, "u-1")
	if err != nil {
		t.Fatalf("second Issue error: %v", err)
	}
	if second.Token != first.Token {
		t.Fatalf("issue not idempotent: %q vs %q", first.Token, second.Token)
	}
}

func TestOpaqueIssuer_ResolveRoundTrip(t *testing.T) {
	repo := newFakeTokenRepo()
	iss, mock, db := newOpaqueIssuer(t, repo)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()

	creds, err := iss.Issue(ctx, "u-2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	userID, err := iss.Resolve(ctx, creds.Token)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if userID != "u-2" {
		t.Fatalf("userID mismatch: got %q", userID)
	}
}

func TestOpaqueIssuer_ResolveUnknownToken(t *testing.T) {
	iss, _, db := newOpaqueIssuer(t, newFakeTokenRepo())
	defer db.Close()

	_, err := iss.Resolve(context.Background(), "ghost")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestOpaqueIssuer_RefreshUnsupported(t *testing.T) {
	iss, _, db := newOpaqueIssuer(t, newFakeTokenRepo())
	defer db.Close()

	_, err := iss.Refresh(context.Background(), "anything")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestOpaqueIssuer_RevokeUnknownTokenAcks(t *testing.T) {
	repo := newFakeTokenRepo()
	iss, _, db := newOpaqueIssuer(t, repo)
	defer db.Close()

	if err := iss.Revoke(context.Background(), "ghost"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "ghost" {
		t.Fatalf("delete not attempted: %v", repo.deleted)
	}
}

func TestOpaqueIssuer_IssueRollsBackOnCreateError(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.createErr = errors.New("insert failed")
	iss, mock, db := newOpaqueIssuer(t, repo)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := iss.Issue(context.Background(), "u-3"); err == nil {
		t.Fatalf("expected error from Issue")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction expectations: %v", err)
	}
}
