package tracker

import (
	"testing"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardsTracker() *Tracker {
	registry := schema.Default()
	return New(WithRoots(func(o oid.OID) (oid.OID, bool) {
		tbl, ok := registry.Lookup(o)
		if !ok {
			return "", false
		}
		c, ok := tbl.MatchRoot(o)
		return c.Root, ok
	}))
}

func TestAggregate_DistinctNestedSubRecordsAreMultiple(t *testing.T) {
	tr := cardsTracker()
	row := &fakeRow{}
	tr.Group("0.4.1", row)

	modifiedField(t, tr, "0.4.1.5.1", "false", "true")
	modifiedField(t, tr, "0.4.1.5.2", "true", "false")

	assert.Equal(t, Multiple, tr.Aggregate("0.4.1").Modified)
	assert.Equal(t, Multiple, row.last.Modified)
}

func TestAggregate_OneNestedSubRecordIsSingle(t *testing.T) {
	tr := cardsTracker()
	tr.BindValue("0.4.1.5.1.1", "Staff")
	modifiedField(t, tr, "0.4.1.5.1", "false", "true")

	assert.Equal(t, Single, tr.Aggregate("0.4.1").Modified)
	assert.Equal(t, None, tr.Aggregate("0.4.1.5.1").Modified)
}

func TestAggregate_CountsSubtreesNotFields(t *testing.T) {
	tr := New()
	tr.Group("0.1.1", nil)
	tr.Group("0.1.1.2", nil)

	modifiedField(t, tr, "0.1.1.2.1", "a", "b")
	modifiedField(t, tr, "0.1.1.2.2", "a", "b")

	assert.Equal(t, Multiple, tr.Aggregate("0.1.1.2").Modified)
	assert.Equal(t, Single, tr.Aggregate("0.1.1").Modified, "two fields in one sub-record count once")

	modifiedField(t, tr, "0.1.1.1", "x", "y")
	assert.Equal(t, Multiple, tr.Aggregate("0.1.1").Modified)
}

func TestAggregate_SkipsUntrackedIntermediates(t *testing.T) {
	tr := New()
	tr.Group("0.4.1", nil)

	modifiedField(t, tr, "0.4.1.5.1", "false", "true")
	modifiedField(t, tr, "0.4.1.5.2", "false", "true")

	// 0.4.1.5 is only a path prefix, not a tracked node
	assert.Equal(t, Multiple, tr.Aggregate("0.4.1").Modified)
	assert.Equal(t, Aggregate{}, tr.Aggregate("0.4.1.5"))
}

func TestAggregate_GroupRegisteredLate(t *testing.T) {
	tr := New()
	tr.Group("0.1", nil)
	modifiedField(t, tr, "0.1.1.2.1", "a", "b")
	modifiedField(t, tr, "0.1.1.2.2", "a", "b")
	require.Equal(t, Multiple, tr.Aggregate("0.1").Modified)

	tr.Group("0.1.1", nil)

	assert.Equal(t, Multiple, tr.Aggregate("0.1.1").Modified)
	assert.Equal(t, Single, tr.Aggregate("0.1").Modified)
}

func TestAggregate_PendingAndConflictRollUp(t *testing.T) {
	tr := cardsTracker()
	modifiedField(t, tr, "0.4.1.1", "A", "B")
	modifiedField(t, tr, "0.4.1.2", "1", "2")

	tr.BeginSubmit([]oid.OID{"0.4.1.1"})
	tr.ServerUpdate("0.4.1.2", "3")

	agg := tr.Aggregate("0.4.1")
	assert.Equal(t, Single, agg.Modified)
	assert.True(t, agg.Pending)
	assert.True(t, agg.Conflict)
}

func TestBindValue_AutoGroupsRecordRoot(t *testing.T) {
	tr := cardsTracker()
	modifiedField(t, tr, "0.4.7.1", "A", "B")

	assert.Equal(t, Single, tr.Aggregate("0.4.7").Modified)
}
