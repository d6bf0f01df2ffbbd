// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/authgate/internal/dbx"
	"github.com/avolkov/authgate/internal/server/repositories/authtokens"
	"github.com/avolkov/authgate/internal/server/repositories/users"
)

// RepositoryManager constructs repositories over any DBTX, so the same
// wiring works inside and outside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
