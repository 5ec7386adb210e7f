// Package tracker keeps the per-field edit state of the console: the
// server's value, the operator's value and the modified/pending/conflict
// bits, and rolls that state up to every tracked ancestor.
//
// Transitions are driven by two independent events, a local edit and a
// server update, plus the submission bracket used by the commit protocol.
// A Tracker is not safe for concurrent use.
package tracker

import (
	"errors"
	"sort"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
)

var (
	ErrUnknownField = errors.New("field is not bound")
	ErrReadOnly     = common.ErrReadOnly
)

type node struct {
	oid       oid.OID
	binding   *Binding
	aggregate Aggregate
	handle    AggregateHandle
}

func (n *node) modified() bool {
	return n.aggregate.Modified != None || (n.binding != nil && n.binding.status.Has(Modified))
}

func (n *node) pending() bool {
	return n.aggregate.Pending || (n.binding != nil && n.binding.status.Has(Pending))
}

func (n *node) conflict() bool {
	return n.aggregate.Conflict || (n.binding != nil && n.binding.status.Has(Conflict))
}

// Tracker owns the field bindings. Bindings refer to records by identifier
// only; the record store is never touched from here.
type Tracker struct {
	nodes    map[oid.OID]*node
	rootOf   func(oid.OID) (oid.OID, bool)
	writable func(oid.OID) bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRoots makes Bind register the owning record of every field as an
// aggregate node, so record rows roll up without an explicit Group call.
func WithRoots(rootOf func(oid.OID) (oid.OID, bool)) Option {
	return func(t *Tracker) { t.rootOf = rootOf }
}

// WithWritable restricts which identifiers accept local edits.
func WithWritable(writable func(oid.OID) bool) Option {
	return func(t *Tracker) { t.writable = writable }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{nodes: make(map[oid.OID]*node)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Bind registers the field addressed by h with the given server value. If
// the field is already bound the handle is attached to the existing binding
// and brought up to date.
func (t *Tracker) Bind(h Handle, original string) *Binding {
	b := t.BindValue(h.OID(), original)
	b.handle = h
	if !h.HasFocus() {
		h.SetValue(b.current)
	}
	b.render()
	return b
}

// BindValue registers a field that has no rendering surface.
func (t *Tracker) BindValue(o oid.OID, original string) *Binding {
	if n, ok := t.nodes[o]; ok && n.binding != nil {
		return n.binding
	}

	b := &Binding{oid: o, original: original, current: original}
	n, ok := t.nodes[o]
	if !ok {
		n = &node{oid: o}
		t.nodes[o] = n
	}
	n.binding = b

	if t.rootOf != nil {
		if root, ok := t.rootOf(o); ok && root != o {
			t.Group(root, nil)
		}
	}
	t.recompute(n)
	t.propagate(o)
	return b
}

// Group registers an aggregate node, typically a record row. h may be nil.
func (t *Tracker) Group(o oid.OID, h AggregateHandle) {
	n, ok := t.nodes[o]
	if !ok {
		n = &node{oid: o}
		t.nodes[o] = n
	}
	if h != nil {
		n.handle = h
	}
	t.recompute(n)
	t.propagate(o)
}

// Get returns the binding of a field.
func (t *Tracker) Get(o oid.OID) (*Binding, bool) {
	n, ok := t.nodes[o]
	if !ok || n.binding == nil {
		return nil, false
	}
	return n.binding, true
}

// Bindings lists the bindings at or below o, ordered by identifier.
func (t *Tracker) Bindings(o oid.OID) []*Binding {
	var list []*Binding
	for id, n := range t.nodes {
		if n.binding != nil && (id == o || oid.IsAncestor(o, id)) {
			list = append(list, n.binding)
		}
	}
	sort.Slice(list, func(i, j int) bool { return oid.Compare(list[i].oid, list[j].oid) < 0 })
	return list
}

// Modified lists the modified bindings at or below o.
func (t *Tracker) Modified(o oid.OID) []*Binding {
	var list []*Binding
	for _, b := range t.Bindings(o) {
		if b.status.Has(Modified) {
			list = append(list, b)
		}
	}
	return list
}

// Count returns how many bindings have every bit of s set. Count(Clean)
// counts all bindings.
func (t *Tracker) Count(s Status) int {
	n := 0
	for _, node := range t.nodes {
		if node.binding != nil && node.binding.status.Has(s) {
			n++
		}
	}
	return n
}

// Aggregate returns the roll-up indicator of a tracked node.
func (t *Tracker) Aggregate(o oid.OID) Aggregate {
	if n, ok := t.nodes[o]; ok {
		return n.aggregate
	}
	return Aggregate{}
}

// Edit records an operator change to a bound field.
func (t *Tracker) Edit(o oid.OID, v string) error {
	b, ok := t.Get(o)
	if !ok {
		return ErrUnknownField
	}
	if t.writable != nil && !t.writable(o) {
		return ErrReadOnly
	}

	b.edit(v)
	if b.handle != nil && b.handle.Value() != v {
		b.handle.SetValue(v)
	}
	b.render()
	t.propagate(o)
	return nil
}

// ServerUpdate reconciles a new server value against any local edit. Fields
// that are not bound are ignored.
func (t *Tracker) ServerUpdate(o oid.OID, v string) {
	b, ok := t.Get(o)
	if !ok {
		return
	}
	b.serverUpdate(v)
	b.render()
	t.propagate(o)
}

// Blur pushes a server value that arrived while the field had focus.
func (t *Tracker) Blur(o oid.OID) {
	b, ok := t.Get(o)
	if !ok || !b.deferred || b.handle == nil {
		return
	}
	b.deferred = false
	if b.status == Clean {
		b.handle.SetValue(b.current)
	}
}

// BeginSubmit marks fields as in flight: pending set, modified cleared.
func (t *Tracker) BeginSubmit(list []oid.OID) {
	for _, o := range list {
		b, ok := t.Get(o)
		if !ok {
			continue
		}
		b.status.set(Pending, true)
		b.status.set(Modified, false)
		b.render()
		t.propagate(o)
	}
}

// EndSubmit settles fields once their submission has completed, accepted or
// not. Fields whose value still differs from the server's end up modified,
// so a rejected edit is not lost.
func (t *Tracker) EndSubmit(list []oid.OID) {
	for _, o := range list {
		b, ok := t.Get(o)
		if !ok {
			continue
		}
		b.settle()
		b.render()
		t.propagate(o)
	}
}

// Revert discards the local edits at or below o.
func (t *Tracker) Revert(o oid.OID) {
	for _, b := range t.Bindings(o) {
		b.revert()
		b.render()
		t.propagate(b.oid)
	}
	if n, ok := t.nodes[o]; ok {
		t.recompute(n)
	}
}

// Forget drops every node at or below o, e.g. once its record is gone.
func (t *Tracker) Forget(o oid.OID) {
	for id := range t.nodes {
		if id == o || oid.IsAncestor(o, id) {
			delete(t.nodes, id)
		}
	}
	t.propagate(o)
}

// propagate recomputes every tracked ancestor of o, nearest first.
func (t *Tracker) propagate(o oid.OID) {
	for _, a := range oid.Ancestors(o) {
		if n, ok := t.nodes[a]; ok {
			t.recompute(n)
		}
	}
}

// recompute counts the distinct modified subtrees directly below n: a
// tracked descendant counts once when no tracked node sits between it and
// n, and everything below it is folded into its own indicator.
func (t *Tracker) recompute(n *node) {
	count := 0
	var agg Aggregate

	for id, child := range t.nodes {
		if !oid.IsAncestor(n.oid, id) || t.nearest(id) != n.oid {
			continue
		}
		if child.modified() {
			count++
		}
		agg.Pending = agg.Pending || child.pending()
		agg.Conflict = agg.Conflict || child.conflict()
	}
	agg.Modified = multiplicity(count)

	n.aggregate = agg
	if n.handle != nil {
		n.handle.SetAggregate(agg)
	}
}

// nearest returns the closest tracked ancestor of o.
func (t *Tracker) nearest(o oid.OID) oid.OID {
	for _, a := range oid.Ancestors(o) {
		if _, ok := t.nodes[a]; ok {
			return a
		}
	}
	return ""
}
