package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/leaves"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost:5432/db"))
	assert.True(t, IsPostgres("postgresql://localhost/db"))
	assert.False(t, IsPostgres("file:tree?mode=memory"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	var db *sql.DB

	assert.IsType(t, &leaves.SQLRepository{}, NewSQLiteRepositoryManager().Leaves(db))
	assert.IsType(t, &leaves.SQLRepository{}, NewPostgresRepositoryManager().Leaves(db))
}

func TestOpen_SQLiteMigrates(t *testing.T) {
	ctx := context.Background()

	db, m, err := Open(ctx, memoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.IsType(t, &SQLiteRepositoryManager{}, m)

	n, err := m.Leaves(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	next, err := m.Leaves(db).NextRoot(ctx, "cards")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
}

func TestOpen_MigrationError(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	t.Cleanup(func() { gooseUpContext = orig })

	_, _, err := Open(context.Background(), memoryDSN())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	var dir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, d string, opts ...goose.OptionsFunc) error {
		dir = d
		return nil
	}
	t.Cleanup(func() { gooseUpContext = orig })

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), nil))
	assert.Equal(t, ".", dir)
}
