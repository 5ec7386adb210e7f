package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/accessconsole/internal/dbx"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/leaves"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. It is the
// default, usually over an in-memory database.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Leaves(db dbx.DBTX) leaves.Repository {
	return leaves.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3")
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
