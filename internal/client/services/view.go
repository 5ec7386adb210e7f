package services

import (
	"fmt"

	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/client/tracker"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

// Field is a snapshot of one leaf as the operator sees it.
type Field struct {
	OID      oid.OID
	Original string
	Current  string
	Status   tracker.Status
}

// Stats summarises the console state.
type Stats struct {
	Ingest    records.Stats
	Records   int
	Bound     int
	Modified  int
	Pending   int
	Conflicts int
}

// Records returns copies of the records of a table.
func (c *Console) Records(tag schema.Tag) ([]*records.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.store.List(tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tag, err)
	}
	out := make([]*records.Record, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out, nil
}

// Record returns a copy of the record rooted at o.
func (c *Console) Record(o oid.OID) (*records.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.store.Get(o)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Field returns the state of the leaf at o. Leaves that were never edited
// or bound report the store value as clean.
func (c *Console) Field(o oid.OID) (Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.field(o)
}

func (c *Console) field(o oid.OID) (Field, bool) {
	if b, ok := c.tracker.Get(o); ok {
		return Field{OID: o, Original: b.Original(), Current: b.Current(), Status: b.Status()}, true
	}
	v, ok := c.store.Value(o)
	if !ok {
		return Field{}, false
	}
	return Field{OID: o, Original: v, Current: v}, true
}

// Fields returns the bound leaves at or below o.
func (c *Console) Fields(o oid.OID) []Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	bindings := c.tracker.Bindings(o)
	out := make([]Field, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, Field{OID: b.OID(), Original: b.Original(), Current: b.Current(), Status: b.Status()})
	}
	return out
}

// Aggregate returns the roll-up indicator of a record or sub-record.
func (c *Console) Aggregate(o oid.OID) tracker.Aggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Aggregate(o)
}

// Stats reports counters for diagnostics.
func (c *Console) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Ingest:    c.engine.Stats(),
		Records:   c.store.Len(),
		Bound:     c.tracker.Count(tracker.Clean),
		Modified:  c.tracker.Count(tracker.Modified),
		Pending:   c.tracker.Count(tracker.Pending),
		Conflicts: c.tracker.Count(tracker.Conflict),
	}
}
