// Package execctx holds the mutable state of one program run. A Context is
// created by engine initialization, mutated only by engine steps and thrown
// away on reset; nothing else writes to it.
package execctx

import (
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
)

// ConsoleKind classifies console lines.
type ConsoleKind string

const (
	Output ConsoleKind = "output"
	Debug  ConsoleKind = "debug"
	Error  ConsoleKind = "error"
)

// ConsoleEntry is one line of program console output.
type ConsoleEntry struct {
	Kind ConsoleKind `json:"kind"`
	Text string      `json:"text"`
}

// Transfer records a value crossing an edge during the latest step. Flow
// transfers carry no value.
type Transfer struct {
	EdgeID     string    `json:"edgeId"`
	Value      cty.Value `json:"-"`
	IsFlowEdge bool      `json:"isFlowEdge"`
}

// Context is the state of a single run.
type Context struct {
	runID      string
	variables  map[string]cty.Value
	console    []ConsoleEntry
	visited    map[string]bool
	visitOrder []string
	transfers  []Transfer
	cursor     string
	steps      int

	// outputs stores the Data outputs of every executed effect or control node,
	// keyed by node then port.
	outputs map[string]map[string]cty.Value
	// loops holds the completed iteration count of each loop node.
	loops map[string]int
}

// New creates an empty context with a fresh run ID.
func New() *Context {
	return &Context{
		runID:     uuid.NewString(),
		variables: make(map[string]cty.Value),
		visited:   make(map[string]bool),
		outputs:   make(map[string]map[string]cty.Value),
		loops:     make(map[string]int),
	}
}

// RunID identifies the run this context belongs to.
func (c *Context) RunID() string { return c.runID }

// Variable returns a named program variable.
func (c *Context) Variable(name string) (cty.Value, bool) {
	v, ok := c.variables[name]
	return v, ok
}

// SetVariable creates or overwrites a program variable.
func (c *Context) SetVariable(name string, v cty.Value) {
	c.variables[name] = v
}

// Log appends a console line.
func (c *Context) Log(kind ConsoleKind, text string) {
	c.console = append(c.console, ConsoleEntry{Kind: kind, Text: text})
}

// Console returns a copy of the console.
func (c *Context) Console() []ConsoleEntry {
	return slices.Clone(c.console)
}

// MarkVisited records that a node's control-flow behavior has run.
func (c *Context) MarkVisited(id string) {
	if c.visited[id] {
		return
	}
	c.visited[id] = true
	c.visitOrder = append(c.visitOrder, id)
}

// Visited reports whether a node has executed in this run.
func (c *Context) Visited(id string) bool { return c.visited[id] }

// Cursor is the ID of the node the next step will execute, or "".
func (c *Context) Cursor() string { return c.cursor }

// SetCursor moves the cursor. An empty ID ends the run.
func (c *Context) SetCursor(id string) { c.cursor = id }

// BeginStep clears per-step data and counts the step.
func (c *Context) BeginStep() {
	c.transfers = nil
	c.steps++
}

// Steps is the number of steps begun in this run.
func (c *Context) Steps() int { return c.steps }

// RecordTransfer appends to the transfers of the current step.
func (c *Context) RecordTransfer(t Transfer) {
	c.transfers = append(c.transfers, t)
}

// Transfers returns a copy of the current step's transfers.
func (c *Context) Transfers() []Transfer {
	return slices.Clone(c.transfers)
}

// StoreOutputs keeps a node's Data outputs for consumers in later steps.
func (c *Context) StoreOutputs(id string, outs map[string]cty.Value) {
	c.outputs[id] = maps.Clone(outs)
}

// Outputs returns the stored outputs of a node.
func (c *Context) Outputs(id string) (map[string]cty.Value, bool) {
	o, ok := c.outputs[id]
	return o, ok
}

// LoopIteration returns how many body iterations a loop has started.
func (c *Context) LoopIteration(id string) int { return c.loops[id] }

// SetLoopIteration updates a loop counter. Zero removes it.
func (c *Context) SetLoopIteration(id string, n int) {
	if n == 0 {
		delete(c.loops, id)
		return
	}
	c.loops[id] = n
}

// Snapshot is an immutable copy of a Context, safe to hand to observers.
type Snapshot struct {
	RunID         string
	Variables     map[string]cty.Value
	Console       []ConsoleEntry
	Visited       []string
	LastTransfers []Transfer
	Cursor        string
	Steps         int
}

// Snapshot copies the context.
func (c *Context) Snapshot() Snapshot {
	return Snapshot{
		RunID:         c.runID,
		Variables:     maps.Clone(c.variables),
		Console:       slices.Clone(c.console),
		Visited:       slices.Clone(c.visitOrder),
		LastTransfers: slices.Clone(c.transfers),
		Cursor:        c.cursor,
		Steps:         c.steps,
	}
}
