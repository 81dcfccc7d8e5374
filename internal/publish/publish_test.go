package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/value"
	"github.com/specialistvlad/flowgrid/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type emitted struct {
	event   string
	payload any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (f *fakeEmitter) Emit(ev string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: ev, payload: args[0]})
	return f.err
}

func sampleStep(console ...string) engine.StepResult {
	entries := make([]execctx.ConsoleEntry, 0, len(console))
	for _, c := range console {
		entries = append(entries, execctx.ConsoleEntry{Kind: execctx.Output, Text: c})
	}
	return engine.StepResult{
		PreviousNodeID: "walk",
		CurrentNodeID:  "exit",
		Outputs: map[string]cty.Value{
			"success":  cty.True,
			"position": value.Position(3, 2),
		},
		DataTransfers: []execctx.Transfer{
			{EdgeID: "e1", Value: cty.NumberIntVal(2)},
			{EdgeID: "e2", IsFlowEdge: true},
		},
		Context: execctx.Snapshot{
			RunID:     "run-1",
			Steps:     1,
			Variables: map[string]cty.Value{"n": cty.StringVal("x")},
			Console:   entries,
		},
	}
}

func TestNewStepPayload(t *testing.T) {
	t.Parallel()

	// --- Act ---
	p, err := NewStepPayload(sampleStep("one", "two"), 1)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "run-1", p.RunID)
	assert.Equal(t, "walk", p.NodeID)
	assert.Equal(t, "exit", p.NextNodeID)
	assert.JSONEq(t, `{"x":3,"y":2}`, string(p.Outputs["position"]))
	assert.JSONEq(t, `true`, string(p.Outputs["success"]))
	assert.JSONEq(t, `"x"`, string(p.Variables["n"]))
	require.Len(t, p.Transfers, 2)
	assert.JSONEq(t, `2`, string(p.Transfers[0].Value))
	assert.Nil(t, p.Transfers[1].Value, "flow transfers carry no value")
	assert.Equal(t, []execctx.ConsoleEntry{{Kind: execctx.Output, Text: "two"}}, p.Console)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"edgeId":"e2","isFlowEdge":true`)
	assert.NotContains(t, string(raw), `"error"`)
}

func TestNewStepPayload_Error(t *testing.T) {
	t.Parallel()

	step := sampleStep()
	step.Err = errors.New("node 'div': division by zero")
	step.ErrorNodeID = "div"
	step.IsComplete = true

	p, err := NewStepPayload(step, 5)

	require.NoError(t, err)
	assert.Equal(t, "node 'div': division by zero", p.Error)
	assert.Equal(t, "div", p.ErrorNodeID)
	assert.Empty(t, p.Console)
	assert.NotNil(t, p.Console, "console is always a list")
}

func TestPublisher_TracksConsolePerRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	em := &fakeEmitter{}
	p := New(em)
	ctx := context.Background()

	// --- Act ---
	p.StepCompleted(ctx, sampleStep("one"))
	p.StepCompleted(ctx, sampleStep("one", "two"))
	p.RunFinished(ctx, engine.RunResult{
		ExecutionPath: []string{"walk", "exit"},
		Steps:         2,
		Context:       execctx.Snapshot{RunID: "run-1"},
	})
	p.StepCompleted(ctx, sampleStep("one"))

	// --- Assert ---
	require.Len(t, em.events, 4)
	assert.Equal(t, EventStep, em.events[0].event)
	assert.Len(t, em.events[0].payload.(StepPayload).Console, 1)
	assert.Equal(t, "two", em.events[1].payload.(StepPayload).Console[0].Text)
	assert.Len(t, em.events[1].payload.(StepPayload).Console, 1)

	assert.Equal(t, EventRun, em.events[2].event)
	run := em.events[2].payload.(RunPayload)
	assert.Equal(t, []string{"walk", "exit"}, run.ExecutionPath)
	assert.Empty(t, run.Error)

	assert.Len(t, em.events[3].payload.(StepPayload).Console, 1, "a finished run forgets its console offset")
}

func TestPublisher_EmitFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	em := &fakeEmitter{err: errors.New("disconnected")}
	p := New(em)

	assert.NotPanics(t, func() {
		p.StepCompleted(context.Background(), sampleStep())
		p.RunFinished(context.Background(), engine.RunResult{Err: errors.New("boom")})
	})
	assert.Len(t, em.events, 2)
	assert.Equal(t, "boom", em.events[1].payload.(RunPayload).Error)
}

func TestPublisher_ObserveWorld(t *testing.T) {
	t.Parallel()

	em := &fakeEmitter{}
	p := New(em)
	w, err := world.New(world.DefaultLevel(), world.WithJumpDuration(0))
	require.NoError(t, err)
	defer w.Subscribe(p.ObserveWorld(context.Background()))()

	_, err = w.Move(1)
	require.NoError(t, err)

	require.Len(t, em.events, 1)
	assert.Equal(t, EventWorld, em.events[0].event)
	assert.Equal(t, "move", em.events[0].payload.(map[string]any)["action"])
}

func TestDial_RejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), Config{URL: "not a url"})
	assert.Error(t, err)
}
