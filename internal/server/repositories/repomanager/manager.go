// Package repomanager vends the device tree repositories for the configured
// database, runs the embedded goose migrations and opens the connection.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accessconsole/internal/dbx"
	"github.com/dmitrijs2005/accessconsole/internal/server/migrations"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/leaves"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Leaves(db dbx.DBTX) leaves.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// IsPostgres reports whether dsn names a PostgreSQL database; anything else
// is handed to SQLite.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to dsn, migrates the schema and returns the matching
// manager.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		m      RepositoryManager
		driver string
	)
	if IsPostgres(dsn) {
		m, driver = NewPostgresRepositoryManager(), "pgx"
	} else {
		m, driver = NewSQLiteRepositoryManager(), "sqlite"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == "sqlite" {
		// A single connection keeps in-memory databases alive and
		// serializes writers.
		db.SetMaxOpenConns(1)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}
	return db, m, nil
}
