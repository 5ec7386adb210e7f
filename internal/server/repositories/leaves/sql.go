package leaves

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/dbx"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/models"
)

// SQLRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx). Queries are written with ? placeholders; bind rewrites them for
// drivers that number their parameters.
type SQLRepository struct {
	db   dbx.DBTX
	bind func(query string) string
}

func (r *SQLRepository) q(query string) string {
	if r.bind == nil {
		return query
	}
	return r.bind(query)
}

func (r *SQLRepository) List(ctx context.Context, tag schema.Tag) ([]models.Leaf, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT oid, tbl, root, value, updated_at FROM leaves WHERE tbl = ? ORDER BY root, oid`), tag)
	if err != nil {
		return nil, fmt.Errorf("failed to select leaves: %w", err)
	}
	return scanLeaves(rows)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]models.Leaf, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT oid, tbl, root, value, updated_at FROM leaves ORDER BY tbl, root, oid`))
	if err != nil {
		return nil, fmt.Errorf("failed to select leaves: %w", err)
	}
	return scanLeaves(rows)
}

func (r *SQLRepository) Get(ctx context.Context, o oid.OID) (*models.Leaf, error) {
	var (
		l       models.Leaf
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		r.q(`SELECT oid, tbl, root, value, updated_at FROM leaves WHERE oid = ?`), o).
		Scan(&l.OID, &l.Table, &l.Root, &l.Value, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leaf: %w", err)
	}
	l.UpdatedAt = time.Unix(0, updated)
	return &l, nil
}

// Put upserts a leaf by oid.
func (r *SQLRepository) Put(ctx context.Context, l *models.Leaf) error {
	query := `INSERT INTO leaves (oid, tbl, root, value, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (oid) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, r.q(query), l.OID, l.Table, l.Root, l.Value, l.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert leaf: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteBelow(ctx context.Context, root oid.OID) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM leaves WHERE root = ? AND oid <> root`), root)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leaves: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) PurgeStatus(ctx context.Context, status string, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.q(`DELETE FROM leaves WHERE root IN (
			SELECT root FROM leaves WHERE oid = root AND value = ? AND updated_at < ?)`),
		status, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge leaves: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM leaves`)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count leaves: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) ReserveRoot(ctx context.Context, tag schema.Tag, n int64) error {
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO roots (tbl, n) VALUES (?, ?) ON CONFLICT (tbl, n) DO NOTHING`), tag, n)
	if err != nil {
		return fmt.Errorf("failed to reserve root: %w", err)
	}
	return nil
}

func (r *SQLRepository) NextRoot(ctx context.Context, tag schema.Tag) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, r.q(`SELECT COALESCE(MAX(n), 0) + 1 FROM roots WHERE tbl = ?`), tag).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate root: %w", err)
	}
	return n, nil
}
