package services

import (
	"fmt"

	"github.com/dmitrijs2005/accessconsole/internal/client/records"
	"github.com/dmitrijs2005/accessconsole/internal/client/tracker"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

// Bind attaches a rendering surface to the leaf it names.
func (c *Console) Bind(h tracker.Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.store.Value(h.OID())
	if !ok {
		return fmt.Errorf("%s: %w", h.OID(), ErrNotFound)
	}
	c.tracker.Bind(h, v)
	return nil
}

// Blur tells the console a bound handle lost focus.
func (c *Console) Blur(o oid.OID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.Blur(o)
}

// Edit records an operator change to the leaf at o. Membership flags are
// normalized to "true" or "false".
func (c *Console) Edit(o oid.OID, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.registry.Lookup(o)
	if !ok {
		return fmt.Errorf("%s: %w", o, ErrNotFound)
	}
	m, ok := t.MatchRoot(o)
	if !ok {
		return fmt.Errorf("%s: %w", o, ErrNotFound)
	}
	if _, ok := c.store.Get(m.Root); !ok {
		return fmt.Errorf("%s: %w", m.Root, ErrNotFound)
	}

	route := t.Resolve(m.Suffix)
	if route.Target == schema.TargetMember {
		value = records.FormatBool(records.ParseBool(value))
	}

	if _, ok := c.tracker.Get(o); !ok {
		v, ok := c.store.Value(o)
		if !ok {
			return fmt.Errorf("%s: %w", o, ErrNotFound)
		}
		c.tracker.BindValue(o, v)
	}

	if err := c.tracker.Edit(o, value); err != nil {
		return fmt.Errorf("%s: %w", o, err)
	}
	return nil
}
