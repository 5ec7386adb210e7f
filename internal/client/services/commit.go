package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dmitrijs2005/accessconsole/internal/client/client"
	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"github.com/google/uuid"
)

// batch is one submission to one table together with the fields it put in
// flight.
type batch struct {
	tag       schema.Tag
	sub       wire.Submission
	submitted mapset.Set[oid.OID]
}

// Commit submits the modified fields of the given records. Records whose
// identity fields are all blank are submitted as deletions instead. Every
// submitted field is pending until its batch settles; a rejected or failed
// batch leaves its fields modified with the operator's values.
func (c *Console) Commit(ctx context.Context, roots ...oid.OID) error {
	batches, err := c.prepare(roots)
	if err != nil {
		return err
	}

	var errs []error
	for _, b := range batches {
		if _, err := c.send(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// prepare builds one batch per table and marks its fields pending.
func (c *Console) prepare(roots []oid.OID) ([]*batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := mapset.NewThreadUnsafeSet[oid.OID]()
	byTag := make(map[schema.Tag]*batch)
	var order []*batch

	for _, root := range roots {
		if !seen.Add(root) {
			continue
		}
		r, ok := c.store.Get(root)
		if !ok {
			return nil, fmt.Errorf("%s: %w", root, ErrNotFound)
		}
		if r.Local {
			continue
		}
		t, _ := c.registry.Table(r.Tag)
		if t.ReadOnly {
			return nil, fmt.Errorf("%s: %w", r.Tag, ErrReadOnly)
		}

		// the delete rule only reclassifies an update, so a record without
		// edits sends nothing
		modified := c.tracker.Modified(root)
		if len(modified) == 0 {
			continue
		}

		b, ok := byTag[r.Tag]
		if !ok {
			b = &batch{tag: r.Tag, submitted: mapset.NewThreadUnsafeSet[oid.OID]()}
			byTag[r.Tag] = b
			order = append(order, b)
		}

		if c.blanked(t, r) {
			b.sub.Deleted = append(b.sub.Deleted, root)
			for _, f := range modified {
				b.submitted.Add(f.OID())
			}
			continue
		}
		for _, f := range modified {
			b.sub.Objects = append(b.sub.Objects, wire.Object{OID: f.OID(), Value: f.Current()})
			b.submitted.Add(f.OID())
		}
	}

	batches := order[:0]
	for _, b := range order {
		if b.sub.Empty() {
			continue
		}
		c.tracker.BeginSubmit(b.submitted.ToSlice())
		batches = append(batches, b)
	}
	return batches, nil
}

// blanked reports whether every identity field of r is blank as the
// operator currently sees it.
func (c *Console) blanked(t *schema.Table, r *records.Record) bool {
	if len(t.DeleteWhen) == 0 {
		return false
	}
	for _, name := range t.DeleteWhen {
		f, ok := t.Field(name)
		if !ok {
			return false
		}
		v := r.Fields[name]
		if b, ok := c.tracker.Get(r.OID.Append(f.Suffix)); ok {
			v = b.Current()
		}
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// send submits one batch and settles its fields. The response goes through
// ordinary ingestion before the fields leave pending.
func (c *Console) send(ctx context.Context, b *batch) (wire.Response, error) {
	id := uuid.NewString()
	logger := c.logger.With("batch", id, "table", b.tag)
	logger.Info(ctx, "submitting", "objects", len(b.sub.Objects), "deleted", len(b.sub.Deleted))

	resp, err := c.client.Submit(client.WithBatchID(ctx, id), b.tag, b.sub)
	if err == nil {
		st := c.ingest(resp)
		logger.Info(ctx, "submission accepted", "applied", st.Applied, "dropped", st.Dropped)
	}

	c.mu.Lock()
	c.tracker.EndSubmit(b.submitted.ToSlice())
	c.mu.Unlock()

	if err != nil {
		logger.Warn(ctx, "submission failed", "error", err)
		c.surface(err)
		return nil, fmt.Errorf("submit %s: %w", b.tag, err)
	}
	return resp, nil
}

// Rollback discards local edits under the record rooted at o. A record the
// server has never confirmed is removed outright.
func (c *Console) Rollback(o oid.OID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.store.Get(o)
	if !ok {
		return fmt.Errorf("%s: %w", o, ErrNotFound)
	}
	if r.Local {
		c.store.Remove(o)
		c.tracker.Forget(o)
		c.notifier.Notify(NoticeChanged, fmt.Sprintf("unsaved %s record discarded", r.Tag))
		return nil
	}
	c.tracker.Revert(o)
	return nil
}

// Create asks the server for a new record in tag and returns the root the
// server assigned. A local placeholder stands in for it until the server's
// record arrives; if the request fails the placeholder stays, and its
// identifier is returned so the operator can roll it back.
func (c *Console) Create(ctx context.Context, tag schema.Tag) (oid.OID, error) {
	c.mu.Lock()
	t, ok := c.registry.Table(tag)
	if !ok {
		c.mu.Unlock()
		return "", fmt.Errorf("%s: %w", tag, records.ErrUnknownTable)
	}
	if t.ReadOnly {
		c.mu.Unlock()
		return "", fmt.Errorf("%s: %w", tag, ErrReadOnly)
	}
	placeholder, err := c.store.AddLocal(tag, c.now())
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	b := &batch{
		tag:       tag,
		sub:       wire.Submission{Objects: []wire.Object{{OID: wire.NewRecordOID, Value: wire.NewRecordValue}}},
		submitted: mapset.NewThreadUnsafeSet[oid.OID](),
	}
	resp, err := c.send(ctx, b)
	if err != nil {
		return placeholder.OID, fmt.Errorf("create: %w", err)
	}

	c.mu.Lock()
	c.store.Remove(placeholder.OID)
	c.mu.Unlock()

	var created oid.OID
	if updates := resp[tag]; len(updates) > 0 {
		if m, ok := t.MatchRoot(updates[0].OID); ok {
			created = m.Root
		}
	}
	if created == "" {
		c.notifier.Notify(NoticeWarning, fmt.Sprintf("new %s record was not confirmed", tag))
		return "", fmt.Errorf("create %s: %w", tag, ErrNotCreated)
	}
	c.logger.Info(ctx, "record created", "table", tag, "oid", created)
	return created, nil
}
