package schema

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
)

// Registry holds the declared tables.
type Registry struct {
	tables []*Table
	byTag  map[Tag]*Table
}

// NewRegistry validates and indexes tables. Tags and bases must be unique.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{byTag: make(map[Tag]*Table, len(tables))}
	bases := make(map[oid.OID]Tag, len(tables))

	for i := range tables {
		t := tables[i]
		t.Collections = append([]Collection(nil), t.Collections...)
		if err := t.init(); err != nil {
			return nil, err
		}
		if _, ok := r.byTag[t.Tag]; ok {
			return nil, fmt.Errorf("%w: tag %q", ErrDuplicateTable, t.Tag)
		}
		if other, ok := bases[t.Base]; ok {
			return nil, fmt.Errorf("%w: base %s used by %q and %q", ErrDuplicateTable, t.Base, other, t.Tag)
		}
		bases[t.Base] = t.Tag
		r.tables = append(r.tables, &t)
		r.byTag[t.Tag] = &t
	}

	return r, nil
}

// Table returns the table registered under tag.
func (r *Registry) Table(tag Tag) (*Table, bool) {
	t, ok := r.byTag[tag]
	return t, ok
}

// Tables returns the tables in declaration order.
func (r *Registry) Tables() []*Table {
	return r.tables
}

// Tags returns the table tags in declaration order.
func (r *Registry) Tags() []Tag {
	tags := make([]Tag, 0, len(r.tables))
	for _, t := range r.tables {
		tags = append(tags, t.Tag)
	}
	return tags
}

// Lookup finds the owning table of o by longest matching base.
func (r *Registry) Lookup(o oid.OID) (*Table, bool) {
	var best *Table
	for _, t := range r.tables {
		if o != t.Base && !oid.IsAncestor(t.Base, o) {
			continue
		}
		if best == nil || len(t.Base) > len(best.Base) {
			best = t
		}
	}
	return best, best != nil
}

// ParseTag resolves a table name case-insensitively.
func (r *Registry) ParseTag(s string) (Tag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	_, ok := r.byTag[Tag(s)]
	return Tag(s), ok
}
