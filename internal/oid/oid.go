// Package oid implements the dotted identifier grammar used to address
// records and fields in the access-control tree, e.g. "0.4.17.5.3".
//
// Identifiers are opaque strings on the wire; the helpers here only look at
// their structure (prefixes and trailing segments) and never do arithmetic
// on the segments.
package oid

import (
	"regexp"
	"strconv"
	"strings"
)

// OID is a sequence of non-negative integers separated by '.'.
type OID string

var grammar = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

func (o OID) String() string {
	return string(o)
}

// Valid reports whether o is a well formed identifier.
func (o OID) Valid() bool {
	return grammar.MatchString(string(o))
}

// Append returns o extended by suffix. The suffix is expected to start with
// '.', e.g. ".5.3".
func (o OID) Append(suffix string) OID {
	return OID(string(o) + suffix)
}

// IsAncestor reports whether b lies strictly below a, that is whether b
// begins with a followed by '.'.
func IsAncestor(a, b OID) bool {
	return a != "" && strings.HasPrefix(string(b), string(a)+".")
}

// IsParent reports whether b is exactly one segment below a.
func IsParent(a, b OID) bool {
	if !IsAncestor(a, b) {
		return false
	}
	return !strings.Contains(string(b)[len(a)+1:], ".")
}

// Parent strips the trailing segment. A single segment identifier has no
// parent.
func Parent(o OID) (OID, bool) {
	ix := strings.LastIndexByte(string(o), '.')
	if ix < 0 {
		return "", false
	}
	return o[:ix], true
}

// Ancestors lists every ancestor of o, nearest first.
func Ancestors(o OID) []OID {
	var list []OID
	for p, ok := Parent(o); ok; p, ok = Parent(p) {
		list = append(list, p)
	}
	return list
}

// Suffix returns the part of o below base (including the leading '.'), or
// false when o is not base itself or a descendant of it.
func Suffix(base, o OID) (string, bool) {
	switch {
	case o == base:
		return "", true
	case IsAncestor(base, o):
		return string(o[len(base):]), true
	default:
		return "", false
	}
}

// Compare orders identifiers segment by segment, numerically where both
// segments are numbers. It returns -1, 0 or +1.
func Compare(a, b OID) int {
	as := strings.Split(string(a), ".")
	bs := strings.Split(string(b), ".")

	for i := 0; i < len(as) && i < len(bs); i++ {
		x, errx := strconv.ParseUint(as[i], 10, 64)
		y, erry := strconv.ParseUint(bs[i], 10, 64)
		switch {
		case errx == nil && erry == nil:
			if x < y {
				return -1
			} else if x > y {
				return 1
			}
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}

	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}
