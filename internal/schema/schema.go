// Package schema declares the tables of the access-control tree: where each
// table lives in the identifier space, which suffix carries which field and
// how nested collections (card groups, group doors) are laid out.
//
// The registry is static data consumed read-only by the ingestion engine,
// the commit protocol and the reference server.
package schema

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
)

// Tag names a table, e.g. "cards".
type Tag string

const (
	Interfaces  Tag = "interfaces"
	Controllers Tag = "controllers"
	Doors       Tag = "doors"
	Cards       Tag = "cards"
	Groups      Tag = "groups"
	Events      Tag = "events"
	Logs        Tag = "logs"
	Users       Tag = "users"
)

// Kind is the role a scalar field plays; values travel as strings and the
// kind decides how they are interpreted.
type Kind int

const (
	KindText Kind = iota
	KindName
	KindNumber
	KindDate
	KindDateTime
	KindEnum
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindEnum:
		return "enum"
	case KindBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// Field maps a logical field name to its identifier suffix.
type Field struct {
	Name     string
	Suffix   string
	Kind     Kind
	ReadOnly bool
}

// Collection is a nested sub-record collection. An identifier
// "<root><Suffix>.<sub>" carries the membership flag of entry <sub> and
// "<root><Suffix>.<sub><LabelSuffix>" carries its label.
type Collection struct {
	Name        string
	Suffix      string
	LabelSuffix string

	pattern oid.Pattern
}

var (
	ErrDuplicateTable = errors.New("duplicate table")
	ErrInvalidBase    = errors.New("invalid table base")
	ErrInvalidSuffix  = errors.New("invalid field suffix")
)

// Table declares one entity table.
type Table struct {
	Tag         Tag
	Base        oid.OID
	ReadOnly    bool
	Fields      []Field
	Collections []Collection
	// DeleteWhen lists the identity fields whose blanking turns an update
	// into a deletion. An empty list means records are never deleted by
	// blanking.
	DeleteWhen []string

	root     oid.Pattern
	bySuffix map[string]Field
	byName   map[string]Field
}

func (t *Table) init() error {
	if !t.Base.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBase, t.Base)
	}

	t.root = oid.RootPattern(t.Base)
	t.bySuffix = make(map[string]Field, len(t.Fields))
	t.byName = make(map[string]Field, len(t.Fields))

	for _, f := range t.Fields {
		if f.Suffix == "" || !oid.OID("0"+f.Suffix).Valid() {
			return fmt.Errorf("%w: %s.%s %q", ErrInvalidSuffix, t.Tag, f.Name, f.Suffix)
		}
		t.bySuffix[f.Suffix] = f
		t.byName[f.Name] = f
	}

	for i := range t.Collections {
		c := &t.Collections[i]
		if c.Suffix == "" || !oid.OID("0"+c.Suffix).Valid() {
			return fmt.Errorf("%w: %s.%s %q", ErrInvalidSuffix, t.Tag, c.Name, c.Suffix)
		}
		c.pattern = oid.CollectionPattern(c.Suffix)
	}

	return nil
}

// MatchRoot captures the record root of o.
func (t *Table) MatchRoot(o oid.OID) (oid.Capture, bool) {
	return oid.MatchRoot(o, t.root)
}

// Field looks a field up by name.
func (t *Table) Field(name string) (Field, bool) {
	f, ok := t.byName[name]
	return f, ok
}

// FieldBySuffix looks a field up by its identifier suffix.
func (t *Table) FieldBySuffix(suffix string) (Field, bool) {
	f, ok := t.bySuffix[suffix]
	return f, ok
}

// Collection looks a nested collection up by name.
func (t *Table) Collection(name string) (*Collection, bool) {
	for i := range t.Collections {
		if t.Collections[i].Name == name {
			return &t.Collections[i], true
		}
	}
	return nil, false
}

// Target says what a record-relative suffix addresses.
type Target int

const (
	TargetNone Target = iota
	TargetStatus
	TargetField
	TargetMember
	TargetLabel
)

// Route is the resolved destination of a leaf update inside a record.
type Route struct {
	Target     Target
	Field      Field
	Collection *Collection
	Sub        string
}

// Resolve dispatches a record-relative suffix: "" is the lifecycle status,
// an exact field suffix is a scalar and anything matching a collection
// pattern is a nested flag or label.
func (t *Table) Resolve(suffix string) Route {
	if suffix == "" {
		return Route{Target: TargetStatus}
	}

	if f, ok := t.bySuffix[suffix]; ok {
		return Route{Target: TargetField, Field: f}
	}

	for i := range t.Collections {
		c := &t.Collections[i]
		m, ok := c.pattern.Match(suffix)
		if !ok {
			continue
		}
		switch m.Inner {
		case "":
			return Route{Target: TargetMember, Collection: c, Sub: m.Sub}
		case c.LabelSuffix:
			return Route{Target: TargetLabel, Collection: c, Sub: m.Sub}
		}
	}

	return Route{Target: TargetNone}
}

// Writable reports whether the operator may edit the leaf at suffix.
func (t *Table) Writable(suffix string) bool {
	if t.ReadOnly {
		return false
	}
	r := t.Resolve(suffix)
	switch r.Target {
	case TargetField:
		return !r.Field.ReadOnly
	case TargetMember:
		return true
	default:
		return false
	}
}
