package repomanager

import (
	"context"
	"database/sql"

	"github.com/michosso/memepump-auth/internal/dbx"
	"github.com/michosso/memepump-auth/internal/server/repositories/users"
	"github.com/michosso/memepump-auth/internal/server/repositories/verifycodes"
	"github.com/michosso/memepump-auth/internal/server/repositories/wallets"
)

// RepositoryManager vends repository implementations bound to a DBTX.
// Services pass either the shared *sql.DB or a transaction handle.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Wallets(db dbx.DBTX) wallets.Repository
	VerifyCodes(db dbx.DBTX) verifycodes.Repository
}
