// Package repomanager wires repository constructors to a backing database
// and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/authcore/authcore/internal/dbx"
	"github.com/authcore/authcore/internal/server/repositories/accounts"
)

// RepositoryManager vends repository implementations bound to a DBTX
// (either *sql.DB or an open transaction).
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
