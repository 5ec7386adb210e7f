package records

import (
	"errors"
	"sort"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/google/uuid"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrNotFound     = errors.New("record not found")
)

// Store holds the records of every table. Only the Engine writes server
// state (fields, status, liveness); the console adds and removes local
// placeholders.
type Store struct {
	registry *schema.Registry
	tables   map[schema.Tag]map[oid.OID]*Record
}

// NewStore returns an empty store for the tables in registry.
func NewStore(registry *schema.Registry) *Store {
	s := &Store{
		registry: registry,
		tables:   make(map[schema.Tag]map[oid.OID]*Record),
	}
	for _, t := range registry.Tables() {
		s.tables[t.Tag] = make(map[oid.OID]*Record)
	}
	return s
}

// Registry returns the schema the store was built for.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// Get returns the record whose root is o.
func (s *Store) Get(o oid.OID) (*Record, bool) {
	for _, records := range s.tables {
		if r, ok := records[o]; ok {
			return r, true
		}
	}
	return nil, false
}

// Owner returns the record that o (a root or any identifier below it)
// belongs to.
func (s *Store) Owner(o oid.OID) (*Record, bool) {
	if r, ok := s.Get(o); ok {
		return r, true
	}
	t, ok := s.registry.Lookup(o)
	if !ok {
		return nil, false
	}
	c, ok := t.MatchRoot(o)
	if !ok {
		return nil, false
	}
	r, ok := s.tables[t.Tag][c.Root]
	return r, ok
}

// List returns the records of a table ordered by identifier. Local
// placeholders sort last.
func (s *Store) List(tag schema.Tag) ([]*Record, error) {
	records, ok := s.tables[tag]
	if !ok {
		return nil, ErrUnknownTable
	}

	list := make([]*Record, 0, len(records))
	for _, r := range records {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Local != list[j].Local {
			return !list[i].Local
		}
		return oid.Compare(list[i].OID, list[j].OID) < 0
	})
	return list, nil
}

// Len counts records across all tables, tombstones included.
func (s *Store) Len() int {
	n := 0
	for _, records := range s.tables {
		n += len(records)
	}
	return n
}

// Value returns the current server value of the leaf at o.
func (s *Store) Value(o oid.OID) (string, bool) {
	t, ok := s.registry.Lookup(o)
	if !ok {
		return "", false
	}
	c, ok := t.MatchRoot(o)
	if !ok {
		return "", false
	}
	r, ok := s.tables[t.Tag][c.Root]
	if !ok {
		return "", false
	}

	route := t.Resolve(c.Suffix)
	switch route.Target {
	case schema.TargetStatus:
		return r.Status, true
	case schema.TargetField:
		return r.Fields[route.Field.Name], true
	case schema.TargetMember:
		if e, ok := r.Collections[route.Collection.Name][route.Sub]; ok {
			return FormatBool(e.Allowed), true
		}
		return FormatBool(false), true
	case schema.TargetLabel:
		if e, ok := r.Collections[route.Collection.Name][route.Sub]; ok {
			return e.Label, true
		}
		return "", true
	default:
		return "", false
	}
}

// AddLocal creates a placeholder record that the server has not assigned an
// identifier to yet. Its identity is a random placeholder outside the
// identifier grammar so ingestion can never address it.
func (s *Store) AddLocal(tag schema.Tag, now time.Time) (*Record, error) {
	t, ok := s.registry.Table(tag)
	if !ok {
		return nil, ErrUnknownTable
	}

	r := newRecord(t, oid.OID("new:"+uuid.NewString()), now)
	r.Status = StatusNew
	r.Local = true
	s.tables[tag][r.OID] = r
	return r, nil
}

// Remove deletes a record outright, together with its nested collections.
func (s *Store) Remove(o oid.OID) bool {
	for _, records := range s.tables {
		if _, ok := records[o]; ok {
			delete(records, o)
			return true
		}
	}
	return false
}

// Sweep evicts tombstones that have not been touched for at least grace.
// Records that are not marked deleted are never evicted. It returns the
// evicted roots.
func (s *Store) Sweep(now time.Time, grace time.Duration) []oid.OID {
	var evicted []oid.OID
	for _, t := range s.registry.Tables() {
		records := s.tables[t.Tag]
		for o, r := range records {
			if !r.Deleted() || r.Local {
				continue
			}
			if now.Sub(r.Touched) >= grace {
				delete(records, o)
				evicted = append(evicted, o)
			}
		}
	}
	sort.Slice(evicted, func(i, j int) bool { return oid.Compare(evicted[i], evicted[j]) < 0 })
	return evicted
}
