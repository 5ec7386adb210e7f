package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/client/services"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

var errUnknownTable = errors.New("unknown table")

func (a *App) table(name string) (*schema.Table, error) {
	tag, ok := a.registry.ParseTag(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownTable, name)
	}
	t, _ := a.registry.Table(tag)
	return t, nil
}

func (a *App) Tables(ctx context.Context) error {
	for _, t := range a.registry.Tables() {
		ro := ""
		if t.ReadOnly {
			ro = "read only"
		}
		a.println(fmt.Sprintf("%-12s %-6s %s", t.Tag, t.Base, ro))
	}
	return nil
}

func (a *App) List(ctx context.Context, name string) error {
	t, err := a.table(name)
	if err != nil {
		return err
	}
	list, err := a.console.Records(t.Tag)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("no records")
		return nil
	}
	for _, r := range list {
		a.println(formatRow(r, a.console.Aggregate(r.OID)))
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	r, ok := a.console.Record(oid.OID(id))
	if !ok {
		return fmt.Errorf("%s: %w", id, services.ErrNotFound)
	}
	t, _ := a.registry.Table(r.Tag)

	a.println(formatRow(r, a.console.Aggregate(r.OID)))
	for _, f := range t.Fields {
		fo := r.OID.Append(f.Suffix)
		fl, ok := a.console.Field(fo)
		if !ok {
			fl = services.Field{OID: fo, Original: r.Fields[f.Name], Current: r.Fields[f.Name]}
		}
		a.println(formatField(f.Name, fl))
	}
	for _, c := range t.Collections {
		for _, e := range r.Entries(c.Name) {
			member := r.OID.Append(c.Suffix + "." + e.Key)
			fl, ok := a.console.Field(member)
			if !ok {
				v := records.FormatBool(e.Allowed)
				fl = services.Field{OID: member, Original: v, Current: v}
			}
			a.println(formatField(fmt.Sprintf("%s[%s]", c.Name, e.Label), fl))
		}
	}
	return nil
}

func (a *App) Set(ctx context.Context, id, value string) error {
	return a.console.Edit(oid.OID(id), value)
}

func (a *App) Commit(ctx context.Context, ids []string) error {
	roots := make([]oid.OID, len(ids))
	for i, id := range ids {
		roots[i] = oid.OID(id)
	}
	if err := a.console.Commit(ctx, roots...); err != nil {
		return err
	}
	a.println("committed")
	return nil
}

func (a *App) Rollback(ctx context.Context, id string) error {
	if a.confirm && !Confirm(a.reader, fmt.Sprintf("Discard local changes to %s?", id), a.writer()) {
		a.println("kept")
		return nil
	}
	return a.console.Rollback(oid.OID(id))
}

func (a *App) New(ctx context.Context, name string) error {
	t, err := a.table(name)
	if err != nil {
		return err
	}
	created, err := a.console.Create(ctx, t.Tag)
	if err != nil {
		if created != "" {
			a.println(fmt.Sprintf("unsaved placeholder %s kept; rollback it to discard", created))
		}
		return err
	}
	a.println("created", created)
	return nil
}

func (a *App) Poll(ctx context.Context, name string) error {
	if name == "" {
		return a.console.PollAll(ctx)
	}
	t, err := a.table(name)
	if err != nil {
		return err
	}
	return a.console.Poll(ctx, t.Tag)
}

func (a *App) Sweep(ctx context.Context) error {
	evicted := a.console.Sweep()
	a.println(fmt.Sprintf("%d evicted", len(evicted)))
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	st := a.console.Stats()
	a.println(fmt.Sprintf("records %d  bound %d  modified %d  pending %d  conflicts %d",
		st.Records, st.Bound, st.Modified, st.Pending, st.Conflicts))
	a.println(fmt.Sprintf("ingested %d  created %d  dropped %d",
		st.Ingest.Applied, st.Ingest.Created, st.Ingest.Dropped))
	return nil
}
