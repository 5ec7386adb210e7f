package oid

import (
	"regexp"
)

// Capture holds the named groups extracted by a Pattern. Groups the pattern
// does not declare are left empty.
type Capture struct {
	// Root is the record identifier (group "root").
	Root OID
	// Suffix is whatever follows the root (group "suffix").
	Suffix string
	// Sub is the nested entry key (group "sub").
	Sub string
	// Inner is the optional suffix below a nested entry (group "inner").
	Inner string
}

// Pattern is a compiled identifier pattern with named capture groups
// "root", "suffix", "sub" and "inner".
type Pattern struct {
	re *regexp.Regexp
}

// MustCompile compiles expr and panics if it is not a valid expression.
// Patterns are declared statically by the schema, so a bad one is a
// programming error.
func MustCompile(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// RootPattern returns the pattern for records directly below base:
// "<base>.<n>" with n >= 1, followed by any number of field segments.
func RootPattern(base OID) Pattern {
	return MustCompile(`^(?P<root>` + regexp.QuoteMeta(string(base)) + `\.[1-9][0-9]*)(?P<suffix>(?:\.[0-9]+)*)$`)
}

// CollectionPattern matches the suffix of a nested collection entry, e.g.
// ".5.3" or ".5.3.1" for collection ".5" and inner suffix ".1".
func CollectionPattern(collection string) Pattern {
	return MustCompile(`^` + regexp.QuoteMeta(collection) + `\.(?P<sub>[0-9]+)(?P<inner>(?:\.[0-9]+)?)$`)
}

// Match applies p to s. The zero Pattern never matches.
func (p Pattern) Match(s string) (Capture, bool) {
	if p.re == nil {
		return Capture{}, false
	}
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return Capture{}, false
	}
	var c Capture
	for i, name := range p.re.SubexpNames() {
		switch name {
		case "root":
			c.Root = OID(m[i])
		case "suffix":
			c.Suffix = m[i]
		case "sub":
			c.Sub = m[i]
		case "inner":
			c.Inner = m[i]
		}
	}
	return c, true
}

// MatchRoot matches o against a root pattern.
func MatchRoot(o OID, p Pattern) (Capture, bool) {
	return p.Match(string(o))
}

func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}
