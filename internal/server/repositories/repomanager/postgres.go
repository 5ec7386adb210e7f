package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/accessconsole/internal/dbx"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/leaves"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Leaves(db dbx.DBTX) leaves.Repository {
	return leaves.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "pgx")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
