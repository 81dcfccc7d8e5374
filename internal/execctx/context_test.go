package execctx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	_, err := uuid.Parse(a.RunID())
	require.NoError(t, err, "run id must be a uuid")
	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.Empty(t, a.Cursor())
	assert.Zero(t, a.Steps())
}

func TestContext_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	c := New()
	c.SetVariable("x", cty.NumberIntVal(1))
	c.Log(Output, "hello")
	c.MarkVisited("a")
	c.MarkVisited("b")
	c.MarkVisited("a")
	c.BeginStep()
	c.RecordTransfer(Transfer{EdgeID: "e1", IsFlowEdge: true})

	// --- Act ---
	snap := c.Snapshot()
	c.SetVariable("x", cty.NumberIntVal(2))
	c.Log(Debug, "later")
	c.BeginStep()

	// --- Assert ---
	assert.True(t, snap.Variables["x"].RawEquals(cty.NumberIntVal(1)))
	assert.Equal(t, []ConsoleEntry{{Kind: Output, Text: "hello"}}, snap.Console)
	assert.Equal(t, []string{"a", "b"}, snap.Visited, "visited keeps first-visit order without duplicates")
	assert.Len(t, snap.LastTransfers, 1)
	assert.Equal(t, 1, snap.Steps)

	assert.Empty(t, c.Transfers(), "a new step clears transfers")
	assert.Equal(t, 2, c.Steps())
}

func TestContext_LoopCounters(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Zero(t, c.LoopIteration("loop"))

	c.SetLoopIteration("loop", 2)
	assert.Equal(t, 2, c.LoopIteration("loop"))

	c.SetLoopIteration("loop", 0)
	assert.Zero(t, c.LoopIteration("loop"))
	assert.NotContains(t, c.loops, "loop")
}

func TestContext_StoredOutputs(t *testing.T) {
	t.Parallel()

	c := New()
	outs := map[string]cty.Value{"success": cty.True}
	c.StoreOutputs("move", outs)
	outs["success"] = cty.False

	got, ok := c.Outputs("move")
	require.True(t, ok)
	assert.True(t, got["success"].RawEquals(cty.True), "stored outputs are copied")

	_, ok = c.Outputs("other")
	assert.False(t, ok)
}
