package tracker

import "github.com/dmitrijs2005/accessconsole/internal/oid"

// Handle is the rendering surface of one editable field. The tracker pushes
// values and status into it; it never reads state back except the focus.
type Handle interface {
	OID() oid.OID
	Value() string
	SetValue(v string)
	HasFocus() bool
	SetStatus(modified, pending, conflict bool)
}

// AggregateHandle renders the roll-up indicator of a record or nested entry.
type AggregateHandle interface {
	SetAggregate(a Aggregate)
}
