package leaves

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func leafColumns() []string {
	return []string{"oid", "tbl", "root", "value", "updated_at"}
}

func TestNumbered(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT COUNT(*) FROM leaves", "SELECT COUNT(*) FROM leaves"},
		{"WHERE oid = ?", "WHERE oid = $1"},
		{"VALUES (?, ?, ?, ?, ?)", "VALUES ($1, $2, $3, $4, $5)"},
		{"value = ? AND updated_at < ?", "value = $1 AND updated_at < $2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, numbered(tt.in))
	}
}

func TestPostgres_Put(t *testing.T) {
	r, mock := newPostgresWithMock(t)

	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5\)\s+ON CONFLICT \(oid\) DO UPDATE`).
		WithArgs("0.4.1.1", "cards", "0.4.1", "Alice", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Put(context.Background(), &models.Leaf{
		OID: "0.4.1.1", Table: schema.Cards, Root: "0.4.1", Value: "Alice", UpdatedAt: time.Unix(0, 42),
	})
	require.NoError(t, err)
}

func TestPostgres_List(t *testing.T) {
	r, mock := newPostgresWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leaves WHERE tbl = $1 ORDER BY root, oid`)).
		WithArgs("cards").
		WillReturnRows(sqlmock.NewRows(leafColumns()).
			AddRow("0.4.1", "cards", "0.4.1", "ok", int64(5)).
			AddRow("0.4.1.1", "cards", "0.4.1", "Alice", int64(6)))

	list, err := r.List(context.Background(), schema.Cards)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsStatus())
	assert.Equal(t, "Alice", list[1].Value)
	assert.Equal(t, time.Unix(0, 6), list[1].UpdatedAt)
}

func TestPostgres_GetNotFound(t *testing.T) {
	r, mock := newPostgresWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM leaves WHERE oid = $1`)).
		WithArgs("0.3.9").
		WillReturnError(sql.ErrNoRows)

	_, err := r.Get(context.Background(), "0.3.9")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgres_DeleteAndPurge(t *testing.T) {
	r, mock := newPostgresWithMock(t)
	before := time.Unix(0, 100)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM leaves WHERE root = $1 AND oid <> root`)).
		WithArgs("0.4.1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`value = $1 AND updated_at < $2`)).
		WithArgs("deleted", int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := r.DeleteBelow(context.Background(), "0.4.1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = r.PurgeStatus(context.Background(), "deleted", before)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPostgres_Roots(t *testing.T) {
	r, mock := newPostgresWithMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO roots (tbl, n) VALUES ($1, $2) ON CONFLICT (tbl, n) DO NOTHING`)).
		WithArgs("doors", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(n), 0) + 1 FROM roots WHERE tbl = $1`)).
		WithArgs("doors").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(5)))

	require.NoError(t, r.ReserveRoot(context.Background(), schema.Doors, 4))
	n, err := r.NextRoot(context.Background(), schema.Doors)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestPostgres_WrapsErrors(t *testing.T) {
	r, mock := newPostgresWithMock(t)
	cause := errors.New("connection reset")

	mock.ExpectExec(`INSERT INTO roots`).WillReturnError(cause)

	err := r.ReserveRoot(context.Background(), schema.Doors, 1)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to reserve root")
}
