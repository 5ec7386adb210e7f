package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/client/services"
	"github.com/dmitrijs2005/accessconsole/internal/client/tracker"
)

// marker renders field status bits: * modified, ~ pending, ! conflict.
func marker(s tracker.Status) string {
	var b strings.Builder
	if s.Has(tracker.Modified) {
		b.WriteByte('*')
	}
	if s.Has(tracker.Pending) {
		b.WriteByte('~')
	}
	if s.Has(tracker.Conflict) {
		b.WriteByte('!')
	}
	return b.String()
}

// badge renders a roll-up: one * per distinct modified subtree, capped at two.
func badge(a tracker.Aggregate) string {
	var b strings.Builder
	switch a.Modified {
	case tracker.Single:
		b.WriteString("*")
	case tracker.Multiple:
		b.WriteString("**")
	}
	if a.Pending {
		b.WriteByte('~')
	}
	if a.Conflict {
		b.WriteByte('!')
	}
	return b.String()
}

func formatRow(r *records.Record, a tracker.Aggregate) string {
	status := r.Status
	if r.Local {
		status = "unsaved"
	}
	return strings.TrimRight(fmt.Sprintf("%-12s %-9s %-24s %s", r.OID, status, r.Get("name"), badge(a)), " ")
}

func formatField(name string, f services.Field) string {
	line := strings.TrimRight(fmt.Sprintf("  %-12s %-16s %-24s %s", name, f.OID, f.Current, marker(f.Status)), " ")
	if f.Status.Has(tracker.Conflict) {
		line += fmt.Sprintf("  (server has %q)", f.Original)
	}
	return line
}
