package records

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

// Lifecycle statuses known to the console. The server may report others
// ("ok", "uncertain", ...) which are stored verbatim.
const (
	StatusUnknown = "unknown"
	StatusNew     = "new"
	StatusDeleted = "deleted"
)

// Layouts used by date and datetime fields.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Entry is one element of a nested collection: a membership (or "allowed")
// flag and the label the server pairs with it.
type Entry struct {
	Key     string
	Allowed bool
	Label   string
}

// Record is one entity instance. Its OID never changes after creation.
type Record struct {
	OID    oid.OID
	Tag    schema.Tag
	Status string
	// Fields holds scalar values by logical field name.
	Fields map[string]string
	// Collections holds nested entries by collection name, then sub key.
	Collections map[string]map[string]*Entry
	// Touched is refreshed on every update naming the record.
	Touched time.Time
	// Local marks a placeholder created by the console that the server has
	// never confirmed.
	Local bool
}

func newRecord(t *schema.Table, root oid.OID, now time.Time) *Record {
	r := &Record{
		OID:         root,
		Tag:         t.Tag,
		Status:      StatusUnknown,
		Fields:      make(map[string]string, len(t.Fields)),
		Collections: make(map[string]map[string]*Entry, len(t.Collections)),
		Touched:     now,
	}
	for _, f := range t.Fields {
		r.Fields[f.Name] = ""
	}
	for _, c := range t.Collections {
		r.Collections[c.Name] = make(map[string]*Entry)
	}
	return r
}

// Deleted reports whether the record is a tombstone.
func (r *Record) Deleted() bool {
	return r.Status == StatusDeleted
}

// Get returns a scalar field value.
func (r *Record) Get(field string) string {
	return r.Fields[field]
}

// Int parses a number field. Blank values read as zero.
func (r *Record) Int(field string) (int64, error) {
	v := strings.TrimSpace(r.Fields[field])
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// Bool parses a boolean field.
func (r *Record) Bool(field string) bool {
	return ParseBool(r.Fields[field])
}

// Date parses a date or datetime field. Blank values read as the zero time.
func (r *Record) Date(field string) (time.Time, error) {
	v := strings.TrimSpace(r.Fields[field])
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateTimeLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, v)
}

// Entries lists a nested collection ordered by numeric key.
func (r *Record) Entries(collection string) []Entry {
	m := r.Collections[collection]
	list := make([]Entry, 0, len(m))
	for _, e := range m {
		list = append(list, *e)
	}
	sort.Slice(list, func(i, j int) bool {
		return oid.Compare(oid.OID(list[i].Key), oid.OID(list[j].Key)) < 0
	})
	return list
}

// Clone returns a deep copy safe to hand outside the store.
func (r *Record) Clone() *Record {
	c := *r
	c.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	c.Collections = make(map[string]map[string]*Entry, len(r.Collections))
	for name, m := range r.Collections {
		cm := make(map[string]*Entry, len(m))
		for k, e := range m {
			ec := *e
			cm[k] = &ec
		}
		c.Collections[name] = cm
	}
	return &c
}

// ParseBool accepts the spellings the server uses for flags.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on", "y":
		return true
	default:
		return false
	}
}

// FormatBool is the canonical spelling of a flag value.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}
