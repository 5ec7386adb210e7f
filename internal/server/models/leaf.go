// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
)

// Leaf is one value of the device tree.
type Leaf struct {
	OID oid.OID
	// Table is the owning table of OID.
	Table schema.Tag
	// Root is the record OID belongs to. The record's lifecycle status is
	// stored in the leaf whose OID equals Root.
	Root      oid.OID
	Value     string
	UpdatedAt time.Time
}

// IsStatus reports whether l is a record's lifecycle status leaf.
func (l *Leaf) IsStatus() bool {
	return l.OID == l.Root
}
