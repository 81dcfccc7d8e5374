package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func sampleRun(t *testing.T) (engine.RunResult, *graph.Graph) {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(graph.Node{ID: "walk", Type: graph.TypeMove}))
	require.NoError(t, g.AddNode(graph.Node{ID: "done", Type: graph.TypeExitReached}))

	return engine.RunResult{
		ExecutionPath: []string{"walk", "done"},
		Steps:         2,
		IsComplete:    true,
		Context: execctx.Snapshot{
			Variables: map[string]cty.Value{
				"b": cty.True,
				"a": cty.NumberIntVal(3),
			},
			Console: []execctx.ConsoleEntry{
				{Kind: execctx.Debug, Text: "Executing walk (move)"},
				{Kind: execctx.Output, Text: "Moved 1 step(s) to (3,2)"},
			},
		},
	}, g
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ASCII},
		{in: "table", want: ASCII},
		{in: "Markdown", want: Markdown},
		{in: "md", want: Markdown},
		{in: "html", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSummary_ASCII(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	run, g := sampleRun(t)

	// --- Act ---
	out := Summary(ASCII, run, g, false)

	// --- Assert ---
	assert.Contains(t, out, "Execution path")
	assert.Contains(t, out, "walk")
	assert.Contains(t, out, "exitReached")
	assert.Contains(t, out, "2 (completed)")
	assert.Contains(t, out, "Moved 1 step(s) to (3,2)")
	assert.NotContains(t, out, "Executing walk", "debug lines are hidden")
	assert.Less(t, bytes.Index([]byte(out), []byte("│ a")), bytes.Index([]byte(out), []byte("│ b")), "variables are sorted")
}

func TestSummary_DebugAndError(t *testing.T) {
	t.Parallel()

	run, g := sampleRun(t)
	run.IsComplete = false
	run.Err = errors.New("division by zero")
	run.ErrorNodeID = "div"

	out := Summary(Markdown, run, g, true)

	assert.Contains(t, out, "| walk |")
	assert.Contains(t, out, "Executing walk (move)")
	assert.Contains(t, out, "(failed)")
	assert.Contains(t, out, "Error at node div: division by zero")
}

func TestPath_UnknownNodes(t *testing.T) {
	t.Parallel()

	out := Path(Markdown, engine.RunResult{ExecutionPath: []string{"ghost"}, Steps: 1}, nil)

	assert.Contains(t, out, "| 1 | ghost |")
	assert.Contains(t, out, "(stopped)")
}

func TestLive(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	renders := 0
	live := NewLive(&buf, false, func() string {
		renders++
		return "grid"
	})
	ctx := context.Background()
	first := []execctx.ConsoleEntry{{Kind: execctx.Output, Text: "hello"}}
	second := append(first,
		execctx.ConsoleEntry{Kind: execctx.Debug, Text: "hidden"},
		execctx.ConsoleEntry{Kind: execctx.Error, Text: "boom"},
	)

	// --- Act ---
	live.StepCompleted(ctx, engine.StepResult{Context: execctx.Snapshot{Console: first}})
	live.StepCompleted(ctx, engine.StepResult{Context: execctx.Snapshot{Console: second}})
	live.RunFinished(ctx, engine.RunResult{})
	live.StepCompleted(ctx, engine.StepResult{Context: execctx.Snapshot{Console: first}})

	// --- Assert ---
	assert.Equal(t, "> hello\ngrid\n✗ boom\ngrid\n> hello\ngrid\n", buf.String())
	assert.Equal(t, 3, renders)
}
