package tracker

import "github.com/dmitrijs2005/accessconsole/internal/oid"

// Binding is the edit state of one field: the last value the server
// confirmed, the value the operator sees and the status bits. Only the
// Tracker mutates it.
type Binding struct {
	oid      oid.OID
	original string
	current  string
	status   Status
	handle   Handle
	// deferred is set when a server value arrived while the handle had
	// focus and has not been pushed to it yet.
	deferred bool
}

func (b *Binding) OID() oid.OID     { return b.oid }
func (b *Binding) Original() string { return b.original }
func (b *Binding) Current() string  { return b.current }
func (b *Binding) Status() Status   { return b.status }

// Clean reports whether the field carries no local edit state at all.
func (b *Binding) Clean() bool {
	return b.status == Clean
}

// Conflicting returns the server value and the operator's value of a field
// in conflict.
func (b *Binding) Conflicting() (server, local string, ok bool) {
	if !b.status.Has(Conflict) {
		return "", "", false
	}
	return b.original, b.current, true
}

func (b *Binding) render() {
	if b.handle != nil {
		b.handle.SetStatus(b.status.Has(Modified), b.status.Has(Pending), b.status.Has(Conflict))
	}
}

func (b *Binding) show(v string) {
	if b.handle == nil {
		return
	}
	if b.handle.HasFocus() {
		b.deferred = true
		return
	}
	b.deferred = false
	b.handle.SetValue(v)
}

// edit applies an operator change. A field in flight keeps its modified bit
// clear; it is recomputed when the submission settles.
func (b *Binding) edit(v string) {
	b.current = v
	if b.status.Has(Pending) {
		return
	}
	if b.current == b.original {
		b.status.set(Modified|Conflict, false)
	} else {
		b.status.set(Modified, true)
	}
}

// serverUpdate applies a new server value according to the branch the
// field is in.
func (b *Binding) serverUpdate(v string) {
	prev := b.original
	b.original = v

	switch {
	case b.status.Has(Pending):
		b.status.set(Conflict, v != prev && v != b.current)

	case b.status.Has(Modified):
		switch {
		case v != prev && v != b.current:
			b.status.set(Conflict, true)
		case v != b.current:
			b.status.set(Conflict, false)
		default:
			b.status.set(Modified|Conflict, false)
		}

	default:
		b.status = Clean
		b.current = v
		b.show(v)
	}
}

// settle ends a submission. Whatever the outcome the field's modified bit is
// recomputed from its values, so an edit that the server has not caught up
// with is kept.
func (b *Binding) settle() {
	b.status.set(Pending, false)
	if b.current == b.original {
		b.status = Clean
	} else {
		b.status.set(Modified, true)
	}
}

func (b *Binding) revert() {
	b.current = b.original
	b.status.set(Modified|Conflict, false)
	b.deferred = false
	if b.handle != nil {
		b.handle.SetValue(b.current)
	}
}
