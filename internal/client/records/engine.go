package records

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

// Observer is told about every field-level leaf the engine applies, with the
// value as stored. The field edit tracker implements it to reconcile local
// edits against the server.
type Observer interface {
	ServerUpdate(o oid.OID, value string)
}

// Stats counts what ingestion did with the updates it was given.
type Stats struct {
	Applied int
	Dropped int
	Created int
}

// Add accumulates s2 into s.
func (s *Stats) Add(s2 Stats) {
	s.Applied += s2.Applied
	s.Dropped += s2.Dropped
	s.Created += s2.Created
}

// Engine decodes leaf updates into a Store.
type Engine struct {
	store    *Store
	observer Observer
	now      func() time.Time
	logger   logging.Logger
	total    Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs the observer notified of applied field leaves.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides the liveness clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for drop diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("module", "ingest")
	return e
}

// Stats returns the running totals since the engine was created.
func (e *Engine) Stats() Stats {
	return e.total
}

// Ingest applies updates in order. It never fails: anything that does not
// route to a known table, record and field is dropped and counted.
func (e *Engine) Ingest(updates []wire.Update) Stats {
	var st Stats
	now := e.now()

	for _, u := range updates {
		applied, created := e.apply(u, now)
		if created {
			st.Created++
		}
		if applied {
			st.Applied++
			continue
		}
		st.Dropped++
		e.logger.Debug(context.Background(), "dropped update", "oid", u.OID)
	}

	e.total.Add(st)
	return st
}

// apply routes one update. Any update under a known root creates or
// refreshes its record, even when the suffix names nothing decoded here.
func (e *Engine) apply(u wire.Update, now time.Time) (applied, created bool) {
	t, ok := e.store.registry.Lookup(u.OID)
	if !ok {
		return false, false
	}

	c, ok := t.MatchRoot(u.OID)
	if !ok {
		return false, false
	}

	records := e.store.tables[t.Tag]
	r, ok := records[c.Root]
	if !ok {
		r = newRecord(t, c.Root, now)
		records[c.Root] = r
		created = true
	}
	r.Touched = now

	route := t.Resolve(c.Suffix)
	if route.Target == schema.TargetNone {
		return false, created
	}

	value := u.Value
	switch route.Target {
	case schema.TargetStatus:
		if value == "" {
			value = StatusUnknown
		}
		r.Status = value
		return true, created

	case schema.TargetField:
		r.Fields[route.Field.Name] = value

	case schema.TargetMember, schema.TargetLabel:
		m := r.Collections[route.Collection.Name]
		entry, ok := m[route.Sub]
		if !ok {
			entry = &Entry{Key: route.Sub}
			m[route.Sub] = entry
		}
		if route.Target == schema.TargetMember {
			entry.Allowed = ParseBool(value)
			value = FormatBool(entry.Allowed)
		} else {
			entry.Label = value
		}
	}

	if e.observer != nil {
		e.observer.ServerUpdate(u.OID, value)
	}
	return true, created
}
