// Package services contains server-side business logic. TreeService keeps the
// reference device tree: it answers polls, applies submissions atomically and
// allocates new records.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/dbx"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/models"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/leaves"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

// Record lifecycle values held by status leaves.
const (
	StatusNew     = wire.NewRecordValue
	StatusOK      = "ok"
	StatusDeleted = "deleted"
)

var ErrUnknownTable = errors.New("unknown table")

type TreeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *schema.Registry
	retention   time.Duration
	now         func() time.Time
	logger      logging.Logger
}

// TreeOption configures a TreeService.
type TreeOption func(*TreeService)

// WithRetention sets how long deleted records keep being reported before
// they are purged. Zero keeps them forever.
func WithRetention(d time.Duration) TreeOption {
	return func(s *TreeService) { s.retention = d }
}

func WithClock(now func() time.Time) TreeOption {
	return func(s *TreeService) { s.now = now }
}

func WithLogger(l logging.Logger) TreeOption {
	return func(s *TreeService) { s.logger = l }
}

func NewTreeService(db *sql.DB, m repomanager.RepositoryManager, registry *schema.Registry, opts ...TreeOption) *TreeService {
	s := &TreeService{
		db:          db,
		repomanager: m,
		registry:    registry,
		now:         time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "tree")
	return s
}

func (s *TreeService) table(tag schema.Tag) (*schema.Table, error) {
	t, ok := s.registry.Table(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, tag)
	}
	return t, nil
}

// Poll returns every leaf of a table, including the status of deleted
// records still inside the retention window.
func (s *TreeService) Poll(ctx context.Context, tag schema.Tag) ([]wire.Update, error) {
	if _, err := s.table(tag); err != nil {
		return nil, err
	}

	repo := s.repomanager.Leaves(s.db)

	if s.retention > 0 {
		n, err := repo.PurgeStatus(ctx, StatusDeleted, s.now().Add(-s.retention))
		if err != nil {
			return nil, err
		}
		if n > 0 {
			s.logger.Debug(ctx, "purged deleted records", "leaves", n)
		}
	}

	list, err := repo.List(ctx, tag)
	if err != nil {
		return nil, err
	}
	return toUpdates(list), nil
}

// Submit applies sub to one table in a single transaction: objects first,
// then deletions. Any unknown or read-only identifier rejects the whole
// submission. The response echoes every leaf that changed.
func (s *TreeService) Submit(ctx context.Context, tag schema.Tag, sub wire.Submission) (wire.Response, error) {
	t, err := s.table(tag)
	if err != nil {
		return nil, err
	}
	if t.ReadOnly {
		return nil, fmt.Errorf("%w: %s", common.ErrReadOnly, tag)
	}

	var changed []models.Leaf
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Leaves(tx)
		now := s.now()

		for _, o := range sub.Objects {
			var (
				list []models.Leaf
				err  error
			)
			if o.OID == wire.NewRecordOID {
				list, err = s.allocate(ctx, repo, t, now)
			} else {
				list, err = s.write(ctx, repo, t, o, now)
			}
			if err != nil {
				return err
			}
			changed = append(changed, list...)
		}

		for _, root := range sub.Deleted {
			l, err := s.delete(ctx, repo, t, root, now)
			if err != nil {
				return err
			}
			changed = append(changed, *l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wire.Response{tag: toUpdates(changed)}, nil
}

// live returns the status leaf of root, failing unless the record exists
// and is not deleted.
func live(ctx context.Context, repo leaves.Repository, root oid.OID) (*models.Leaf, error) {
	status, err := repo.Get(ctx, root)
	if errors.Is(err, common.ErrNotFound) || (err == nil && status.Value == StatusDeleted) {
		return nil, fmt.Errorf("%w: record %s does not exist", common.ErrUnknownOID, root)
	}
	return status, err
}

func (s *TreeService) write(ctx context.Context, repo leaves.Repository, t *schema.Table, o wire.Object, now time.Time) ([]models.Leaf, error) {
	c, ok := t.MatchRoot(o.OID)
	if !ok || c.Suffix == "" {
		return nil, fmt.Errorf("%w: %s is not a %s field", common.ErrUnknownOID, o.OID, t.Tag)
	}

	switch route := t.Resolve(c.Suffix); {
	case route.Target == schema.TargetNone:
		return nil, fmt.Errorf("%w: %s is not a %s field", common.ErrUnknownOID, o.OID, t.Tag)
	case !t.Writable(c.Suffix):
		return nil, fmt.Errorf("%w: %s", common.ErrReadOnly, o.OID)
	}

	status, err := live(ctx, repo, c.Root)
	if err != nil {
		return nil, err
	}

	l := models.Leaf{OID: o.OID, Table: t.Tag, Root: c.Root, Value: o.Value, UpdatedAt: now}
	if err := repo.Put(ctx, &l); err != nil {
		return nil, err
	}
	out := []models.Leaf{l}

	// The first write to an allocated record makes it a regular one.
	if status.Value == StatusNew {
		status.Value, status.UpdatedAt = StatusOK, now
		if err := repo.Put(ctx, status); err != nil {
			return nil, err
		}
		out = append(out, *status)
	}
	return out, nil
}

// allocate creates the next record of t with status "new" and a blank
// leaf per scalar field. The status leaf comes first.
func (s *TreeService) allocate(ctx context.Context, repo leaves.Repository, t *schema.Table, now time.Time) ([]models.Leaf, error) {
	n, err := repo.NextRoot(ctx, t.Tag)
	if err != nil {
		return nil, err
	}
	if err := repo.ReserveRoot(ctx, t.Tag, n); err != nil {
		return nil, err
	}

	root := t.Base.Append("." + strconv.FormatInt(n, 10))
	out := []models.Leaf{{OID: root, Table: t.Tag, Root: root, Value: StatusNew, UpdatedAt: now}}
	for _, f := range t.Fields {
		out = append(out, models.Leaf{OID: root.Append(f.Suffix), Table: t.Tag, Root: root, UpdatedAt: now})
	}

	for i := range out {
		if err := repo.Put(ctx, &out[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Info(ctx, "record allocated", "table", t.Tag, "root", root)
	return out, nil
}

func (s *TreeService) delete(ctx context.Context, repo leaves.Repository, t *schema.Table, root oid.OID, now time.Time) (*models.Leaf, error) {
	c, ok := t.MatchRoot(root)
	if !ok || c.Suffix != "" {
		return nil, fmt.Errorf("%w: %s is not a %s record", common.ErrUnknownOID, root, t.Tag)
	}

	status, err := live(ctx, repo, root)
	if err != nil {
		return nil, err
	}

	if _, err := repo.DeleteBelow(ctx, root); err != nil {
		return nil, err
	}
	status.Value, status.UpdatedAt = StatusDeleted, now
	if err := repo.Put(ctx, status); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "record deleted", "table", t.Tag, "root", root)
	return status, nil
}

// Seed loads r into an empty tree and reports whether it did. A tree that
// already holds leaves is left alone.
func (s *TreeService) Seed(ctx context.Context, r wire.Response) (bool, error) {
	n, err := s.repomanager.Leaves(s.db).Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Leaves(tx)
		now := s.now()

		for tag, updates := range r {
			t, err := s.table(tag)
			if err != nil {
				return err
			}
			for _, u := range updates {
				c, ok := t.MatchRoot(u.OID)
				if !ok {
					return fmt.Errorf("%w: %s is not in %s", common.ErrUnknownOID, u.OID, tag)
				}
				num, err := strconv.ParseInt(string(c.Root[len(t.Base)+1:]), 10, 64)
				if err != nil {
					return fmt.Errorf("%w: %s", common.ErrUnknownOID, c.Root)
				}
				if err := repo.ReserveRoot(ctx, tag, num); err != nil {
					return err
				}
				l := models.Leaf{OID: u.OID, Table: tag, Root: c.Root, Value: u.Value, UpdatedAt: now}
				if err := repo.Put(ctx, &l); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}

	s.logger.Info(ctx, "tree seeded", "leaves", r.Len())
	return true, nil
}

// Export returns the whole tree keyed by table.
func (s *TreeService) Export(ctx context.Context) (wire.Response, error) {
	list, err := s.repomanager.Leaves(s.db).ListAll(ctx)
	if err != nil {
		return nil, err
	}

	r := make(wire.Response)
	for _, l := range list {
		r[l.Table] = append(r[l.Table], wire.Update{OID: l.OID, Value: l.Value})
	}
	return r, nil
}

func toUpdates(list []models.Leaf) []wire.Update {
	out := make([]wire.Update, 0, len(list))
	for _, l := range list {
		out = append(out, wire.Update{OID: l.OID, Value: l.Value})
	}
	return out
}
