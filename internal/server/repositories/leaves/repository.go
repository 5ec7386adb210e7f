// Package leaves persists the device tree as flat (oid, value) rows, one
// row per leaf, plus the record numbers ever allocated per table.
package leaves

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/models"
)

type Repository interface {
	// List returns the leaves of a table ordered by record.
	List(ctx context.Context, tag schema.Tag) ([]models.Leaf, error)
	ListAll(ctx context.Context) ([]models.Leaf, error)
	// Get returns common.ErrNotFound when o is not stored.
	Get(ctx context.Context, o oid.OID) (*models.Leaf, error)
	Put(ctx context.Context, l *models.Leaf) error
	// DeleteBelow drops every leaf of the record except its status leaf.
	DeleteBelow(ctx context.Context, root oid.OID) (int64, error)
	// PurgeStatus drops records whose status leaf holds status and was last
	// written before the given time.
	PurgeStatus(ctx context.Context, status string, before time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)

	ReserveRoot(ctx context.Context, tag schema.Tag, n int64) error
	NextRoot(ctx context.Context, tag schema.Tag) (int64, error)
}

func scanLeaves(rows *sql.Rows) ([]models.Leaf, error) {
	defer rows.Close()

	var result []models.Leaf
	for rows.Next() {
		var (
			l       models.Leaf
			updated int64
		)
		if err := rows.Scan(&l.OID, &l.Table, &l.Root, &l.Value, &updated); err != nil {
			return nil, err
		}
		l.UpdatedAt = time.Unix(0, updated)
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
