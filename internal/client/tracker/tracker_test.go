package tracker

import (
	"math/rand"
	"testing"

	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id       oid.OID
	value    string
	focus    bool
	modified bool
	pending  bool
	conflict bool
}

func (h *fakeHandle) OID() oid.OID      { return h.id }
func (h *fakeHandle) Value() string     { return h.value }
func (h *fakeHandle) SetValue(v string) { h.value = v }
func (h *fakeHandle) HasFocus() bool    { return h.focus }
func (h *fakeHandle) SetStatus(modified, pending, conflict bool) {
	h.modified, h.pending, h.conflict = modified, pending, conflict
}

type fakeRow struct {
	last Aggregate
}

func (r *fakeRow) SetAggregate(a Aggregate) { r.last = a }

func modifiedField(t *testing.T, tr *Tracker, o oid.OID, original, current string) *Binding {
	t.Helper()
	b := tr.BindValue(o, original)
	require.NoError(t, tr.Edit(o, current))
	require.Equal(t, Modified, b.Status())
	return b
}

func TestServerUpdate_ConflictRuleTable(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		want     Status
	}{
		{"independent change conflicts", "C", Modified | Conflict},
		{"server caught up", "B", Clean},
		{"echo of the old value", "A", Modified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			b := modifiedField(t, tr, "0.4.1.1", "A", "B")

			tr.ServerUpdate("0.4.1.1", tt.incoming)

			assert.Equal(t, tt.want, b.Status())
			assert.Equal(t, tt.incoming, b.Original())
			assert.Equal(t, "B", b.Current())
		})
	}
}

func TestServerUpdate_EchoClearsEarlierConflict(t *testing.T) {
	tr := New()
	b := modifiedField(t, tr, "0.4.1.1", "A", "B")

	tr.ServerUpdate("0.4.1.1", "C")
	require.Equal(t, Modified|Conflict, b.Status())

	server, local, ok := b.Conflicting()
	require.True(t, ok)
	assert.Equal(t, "C", server)
	assert.Equal(t, "B", local)

	tr.ServerUpdate("0.4.1.1", "C")
	assert.Equal(t, Modified, b.Status())
	_, _, ok = b.Conflicting()
	assert.False(t, ok)
}

func TestServerUpdate_CleanFieldTracksServer(t *testing.T) {
	tr := New()
	h := &fakeHandle{id: "0.4.1.1"}
	b := tr.Bind(h, "A")
	assert.Equal(t, "A", h.value)

	tr.ServerUpdate("0.4.1.1", "B")
	assert.Equal(t, Clean, b.Status())
	assert.Equal(t, "B", b.Current())
	assert.Equal(t, "B", h.value)
}

func TestServerUpdate_FocusDefersVisibleValue(t *testing.T) {
	tr := New()
	h := &fakeHandle{id: "0.4.1.1"}
	b := tr.Bind(h, "A")

	h.focus = true
	tr.ServerUpdate("0.4.1.1", "B")

	assert.Equal(t, "B", b.Original())
	assert.Equal(t, "A", h.value, "visible value is deferred while focused")

	h.focus = false
	tr.Blur("0.4.1.1")
	assert.Equal(t, "B", h.value)
}

func TestPendingBranch(t *testing.T) {
	tr := New()
	h := &fakeHandle{id: "0.4.1.1"}
	b := tr.Bind(h, "A")
	require.NoError(t, tr.Edit("0.4.1.1", "B"))
	assert.True(t, h.modified)

	tr.BeginSubmit([]oid.OID{"0.4.1.1"})
	assert.Equal(t, Pending, b.Status())
	assert.True(t, h.pending)
	assert.False(t, h.modified)

	// a concurrent change races the submission
	tr.ServerUpdate("0.4.1.1", "C")
	assert.Equal(t, Pending|Conflict, b.Status())

	// the submission's own echo arrives and clears the conflict, pending stays
	tr.ServerUpdate("0.4.1.1", "B")
	assert.Equal(t, Pending, b.Status())

	tr.EndSubmit([]oid.OID{"0.4.1.1"})
	assert.Equal(t, Clean, b.Status())
	assert.False(t, h.pending)
}

func TestPendingBranch_EditWhileInFlight(t *testing.T) {
	tr := New()
	b := modifiedField(t, tr, "0.4.1.1", "A", "B")

	tr.BeginSubmit([]oid.OID{"0.4.1.1"})
	tr.ServerUpdate("0.4.1.1", "B")
	require.NoError(t, tr.Edit("0.4.1.1", "D"))
	assert.Equal(t, Pending, b.Status(), "modified is never set while pending")

	tr.EndSubmit([]oid.OID{"0.4.1.1"})
	assert.Equal(t, Modified, b.Status())
	assert.Equal(t, "D", b.Current())
}

func TestEndSubmit_FailureRestoresModified(t *testing.T) {
	tr := New()
	b := modifiedField(t, tr, "0.4.1.1", "A", "B")

	tr.BeginSubmit([]oid.OID{"0.4.1.1"})
	tr.EndSubmit([]oid.OID{"0.4.1.1"})

	assert.Equal(t, Modified, b.Status())
	assert.Equal(t, "B", b.Current())
}

func TestEdit_Errors(t *testing.T) {
	tr := New(WithWritable(func(o oid.OID) bool { return o != "0.6.1.1" }))

	assert.ErrorIs(t, tr.Edit("0.4.1.1", "x"), ErrUnknownField)

	tr.BindValue("0.6.1.1", "A")
	assert.ErrorIs(t, tr.Edit("0.6.1.1", "x"), ErrReadOnly)
}

func TestEdit_BackToOriginalIsClean(t *testing.T) {
	tr := New()
	b := modifiedField(t, tr, "0.4.1.1", "A", "B")
	tr.ServerUpdate("0.4.1.1", "C")
	require.Equal(t, Modified|Conflict, b.Status())

	require.NoError(t, tr.Edit("0.4.1.1", "C"))
	assert.Equal(t, Clean, b.Status())
}

func TestCleanInvariant_RandomInterleavings(t *testing.T) {
	values := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		tr := New()
		h := &fakeHandle{id: "0.4.1.1"}
		b := tr.Bind(h, "A")

		for step := 0; step < 50; step++ {
			v := values[rng.Intn(len(values))]
			switch rng.Intn(3) {
			case 0:
				require.NoError(t, tr.Edit("0.4.1.1", v))
			case 1:
				tr.ServerUpdate("0.4.1.1", v)
			case 2:
				h.focus = !h.focus
				if !h.focus {
					tr.Blur("0.4.1.1")
				}
			}

			require.Equal(t, b.Current() == b.Original(), b.Status() == Clean,
				"run %d step %d: original=%q current=%q status=%s", run, step, b.Original(), b.Current(), b.Status())
			require.False(t, b.Status().Has(Modified) && b.Status().Has(Pending))
		}
	}
}

func TestRevert(t *testing.T) {
	tr := New()
	row := &fakeRow{}
	tr.Group("0.4.1", row)

	h := &fakeHandle{id: "0.4.1.1"}
	b := tr.Bind(h, "A")
	require.NoError(t, tr.Edit("0.4.1.1", "B"))
	tr.ServerUpdate("0.4.1.1", "C")
	modifiedField(t, tr, "0.4.1.2", "1", "2")
	require.Equal(t, Multiple, row.last.Modified)
	require.True(t, row.last.Conflict)

	tr.Revert("0.4.1")

	assert.Equal(t, Clean, b.Status())
	assert.Equal(t, "C", b.Current())
	assert.Equal(t, "C", h.value)
	assert.Equal(t, Aggregate{}, row.last)
	assert.Empty(t, tr.Modified("0.4.1"))
}

func TestForget(t *testing.T) {
	tr := New()
	tr.Group("0.4", nil)
	modifiedField(t, tr, "0.4.1.1", "A", "B")
	tr.Group("0.4.1", nil)
	require.Equal(t, Single, tr.Aggregate("0.4").Modified)

	tr.Forget("0.4.1")

	_, ok := tr.Get("0.4.1.1")
	assert.False(t, ok)
	assert.Equal(t, None, tr.Aggregate("0.4").Modified)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "clean", Clean.String())
	assert.Equal(t, "modified+conflict", (Modified | Conflict).String())
	assert.Equal(t, "pending", Pending.String())
}

func TestCount(t *testing.T) {
	tr := New()
	modifiedField(t, tr, "0.4.1.1", "A", "B")
	modifiedField(t, tr, "0.4.1.2", "A", "B")
	tr.BindValue("0.4.1.3", "A")
	tr.BeginSubmit([]oid.OID{"0.4.1.2"})

	assert.Equal(t, 3, tr.Count(Clean))
	assert.Equal(t, 1, tr.Count(Modified))
	assert.Equal(t, 1, tr.Count(Pending))
	assert.Equal(t, 0, tr.Count(Conflict))
}
