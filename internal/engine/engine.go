package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/specialistvlad/flowgrid/internal/behavior"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/gateway"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxSteps bounds RunFull unless WithMaxSteps says otherwise.
const DefaultMaxSteps = 1000

// StepResult describes one executed step.
type StepResult struct {
	// CurrentNodeID is where the cursor points after the step. Empty once the
	// run is complete.
	CurrentNodeID string
	// PreviousNodeID is the node this step executed.
	PreviousNodeID string
	// Outputs are the data outputs the executed node produced.
	Outputs       map[string]cty.Value
	Context       execctx.Snapshot
	DataTransfers []execctx.Transfer
	IsComplete    bool
	// Err is set when the step failed. ErrorNodeID names the node at fault,
	// which may be a pulled source rather than the executed node.
	Err         error
	ErrorNodeID string
}

// RunResult summarizes a RunFull call.
type RunResult struct {
	// ExecutionPath lists executed flow nodes in order, repeats included.
	ExecutionPath []string
	Context       execctx.Snapshot
	Steps         int
	IsComplete    bool
	Err           error
	ErrorNodeID   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxSteps caps RunFull. Values below one are ignored.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithDebug adds engine narration to the program console as debug lines.
func WithDebug(on bool) Option {
	return func(e *Engine) { e.debug = on }
}

// Engine runs one graph against one gateway. It is not safe for concurrent
// use; callers that share an engine must serialize access.
type Engine struct {
	graph    *graph.Graph
	gateway  gateway.Gateway
	logger   *slog.Logger
	maxSteps int
	debug    bool

	plan    *plan
	run     *execctx.Context
	initErr error
}

// New creates an idle engine. The graph is copied.
func New(g *graph.Graph, gw gateway.Gateway, opts ...Option) *Engine {
	if g == nil {
		g = graph.New()
	}
	e := &Engine{
		graph:    g.Clone(),
		gateway:  gw,
		logger:   slog.New(slog.DiscardHandler),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns a copy of the graph the engine runs.
func (e *Engine) Graph() *graph.Graph { return e.graph.Clone() }

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	return e.run != nil && e.run.Cursor() != ""
}

// Context returns a snapshot of the current or last run, if any.
func (e *Engine) Context() (execctx.Snapshot, bool) {
	if e.run == nil {
		return execctx.Snapshot{}, false
	}
	return e.run.Snapshot(), true
}

// Initialize validates the graph, seeds declared variables and places the
// cursor on the entry node. Any previous run is discarded. It returns false
// when the graph cannot run; the reason is logged.
func (e *Engine) Initialize() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Panic during initialization.", "panic", r)
			e.plan, e.run, ok = nil, nil, false
			e.initErr = fmt.Errorf("panic: %v", r)
		}
	}()

	e.plan, e.run, e.initErr = nil, nil, nil
	p, err := compile(e.graph)
	if err != nil {
		e.logger.Warn("Graph validation failed.", "error", err)
		e.initErr = err
		return false
	}

	rc := execctx.New()
	for _, n := range p.variables {
		name, v, err := behavior.Declare(n)
		if err != nil {
			e.logger.Warn("Invalid variable declaration.", "node_id", n.ID, "error", err)
			e.initErr = &NodeError{NodeID: n.ID, Err: err}
			return false
		}
		rc.SetVariable(name, v)
	}
	rc.SetCursor(p.entry)
	if e.debug {
		rc.Log(execctx.Debug, fmt.Sprintf("Execution initialized at %s", p.entry))
	}

	e.plan, e.run = p, rc
	e.logger.Info("🚀 Execution initialized.", "run_id", rc.RunID(), "entry", p.entry, "nodes", len(p.nodes), "variables", len(p.variables))
	return true
}

// InitError explains why the last Initialize returned false.
func (e *Engine) InitError() error { return e.initErr }

// Step executes the node under the cursor and advances along the first edge
// of the flow output it fired. With no edge to follow the run completes.
func (e *Engine) Step() (res StepResult) {
	if !e.Running() {
		res = StepResult{IsComplete: true, Err: ErrNoActiveRun}
		if e.run != nil {
			res.Context = e.run.Snapshot()
		}
		return res
	}

	rc := e.run
	id := rc.Cursor()
	defer func() {
		if r := recover(); r != nil {
			res = e.fail(id, fmt.Errorf("panic: %v", r))
		}
	}()

	rc.BeginStep()
	n := e.plan.nodes[id]
	if e.debug {
		rc.Log(execctx.Debug, fmt.Sprintf("Executing %s (%s)", id, n.Type))
	}
	e.logger.Debug("Executing node.", "node_id", id, "type", n.Type.String(), "step", rc.Steps())

	ev := newEvaluation(e.plan, behavior.Env{Ctx: rc, Gateway: e.gateway})
	out, err := ev.execute(id)
	if err != nil {
		return e.fail(id, err)
	}

	rc.StoreOutputs(id, out.Outputs)
	rc.MarkVisited(id)

	next := ""
	if edge, ok := e.plan.flowNext[portKey{id, out.Next}]; ok && out.Next != "" {
		rc.RecordTransfer(execctx.Transfer{EdgeID: edge.ID, Value: cty.NilVal, IsFlowEdge: true})
		next = edge.TargetNode
	}
	rc.SetCursor(next)

	complete := next == ""
	if complete {
		if e.debug {
			rc.Log(execctx.Debug, "Execution complete")
		}
		e.logger.Info("🏁 Execution finished.", "run_id", rc.RunID(), "steps", rc.Steps())
	}

	return StepResult{
		CurrentNodeID:  next,
		PreviousNodeID: id,
		Outputs:        maps.Clone(out.Outputs),
		Context:        rc.Snapshot(),
		DataTransfers:  rc.Transfers(),
		IsComplete:     complete,
	}
}

// fail halts the run and reports err against the node at fault.
func (e *Engine) fail(id string, err error) StepResult {
	err = nodeErr(id, err)
	faulty := id
	var ne *NodeError
	if errors.As(err, &ne) {
		faulty = ne.NodeID
	}

	e.run.Log(execctx.Error, err.Error())
	e.run.SetCursor("")
	e.logger.Error("Node execution failed.", "run_id", e.run.RunID(), "node_id", faulty, "error", err)

	return StepResult{
		PreviousNodeID: id,
		Context:        e.run.Snapshot(),
		DataTransfers:  e.run.Transfers(),
		IsComplete:     true,
		Err:            err,
		ErrorNodeID:    faulty,
	}
}

// RunFull steps until the run completes, fails or hits the step cap. The
// engine must have been initialized.
func (e *Engine) RunFull() RunResult {
	if !e.Running() {
		res := RunResult{IsComplete: true, Err: ErrNoActiveRun}
		if e.run != nil {
			res.Context = e.run.Snapshot()
		}
		return res
	}

	var path []string
	for len(path) < e.maxSteps {
		step := e.Step()
		path = append(path, step.PreviousNodeID)
		if step.IsComplete {
			return RunResult{
				ExecutionPath: path,
				Context:       step.Context,
				Steps:         len(path),
				IsComplete:    true,
				Err:           step.Err,
				ErrorNodeID:   step.ErrorNodeID,
			}
		}
	}

	err := fmt.Errorf("%w: stopped after %d steps", ErrStepLimitExceeded, e.maxSteps)
	snap, _ := e.Abort(err)
	return RunResult{
		ExecutionPath: path,
		Context:       snap,
		Steps:         len(path),
		IsComplete:    true,
		Err:           err,
	}
}

// Abort ends the active run with reason. The reason is appended to the
// console as an error line and the context stays readable. It returns false
// when no run was active.
func (e *Engine) Abort(reason error) (execctx.Snapshot, bool) {
	if !e.Running() {
		snap, _ := e.Context()
		return snap, false
	}
	e.run.Log(execctx.Error, reason.Error())
	e.run.SetCursor("")
	e.logger.Error("Run aborted.", "run_id", e.run.RunID(), "error", reason)
	return e.run.Snapshot(), true
}

// Reset discards the run. The graph and gateway are kept.
func (e *Engine) Reset() {
	if e.run != nil {
		e.logger.Debug("Execution reset.", "run_id", e.run.RunID())
	}
	e.plan, e.run = nil, nil
}

// UpdateGraph replaces the graph. It is refused while a run is active. The
// context of a finished run stays readable until the next Initialize or Reset.
func (e *Engine) UpdateGraph(g *graph.Graph) error {
	if e.Running() {
		return ErrRunActive
	}
	if g == nil {
		g = graph.New()
	}
	e.graph = g.Clone()
	e.plan = nil
	e.logger.Debug("Graph replaced.", "nodes", len(e.graph.Nodes), "edges", len(e.graph.Edges))
	return nil
}
