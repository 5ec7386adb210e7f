package tracker

import "strings"

// Status is the edit state of a field. Modified, Pending and Conflict are
// independent bits; the zero value is clean.
type Status uint8

const (
	Modified Status = 1 << iota
	Pending
	Conflict
)

// Clean is the status of a field whose current value is the server's.
const Clean Status = 0

// Has reports whether every bit of f is set in s.
func (s Status) Has(f Status) bool {
	return s&f == f
}

func (s Status) String() string {
	if s == Clean {
		return "clean"
	}
	var parts []string
	if s.Has(Modified) {
		parts = append(parts, "modified")
	}
	if s.Has(Pending) {
		parts = append(parts, "pending")
	}
	if s.Has(Conflict) {
		parts = append(parts, "conflict")
	}
	return strings.Join(parts, "+")
}

func (s *Status) set(f Status, on bool) {
	if on {
		*s |= f
	} else {
		*s &^= f
	}
}

// Multiplicity summarises how many distinct modified subtrees sit below a
// node.
type Multiplicity int

const (
	None Multiplicity = iota
	Single
	Multiple
)

func multiplicity(n int) Multiplicity {
	switch {
	case n > 1:
		return Multiple
	case n == 1:
		return Single
	default:
		return None
	}
}

func (m Multiplicity) String() string {
	switch m {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	default:
		return ""
	}
}

// Aggregate is the indicator an ancestor (a record row, a nested entry)
// shows for the fields below it.
type Aggregate struct {
	Modified Multiplicity
	Pending  bool
	Conflict bool
}
