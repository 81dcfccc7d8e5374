// Package engine executes node programs one flow node at a time.
//
// A program is a graph.Graph with two overlapping subgraphs. Flow edges form
// the control path and may contain loops. Data edges must be acyclic and are
// resolved lazily: when a flow node is about to execute, the engine pulls the
// values feeding its data inputs, evaluating pure value nodes on demand.
//
// The lifecycle is Initialize, then Step until the result reports completion
// (or RunFull to do that in one call), then Reset. Initialize validates the
// graph and finds the unique entry node. Step never panics; runtime failures
// come back on StepResult.Err and halt the run.
//
// Pull resolution is memoized per step. Within a single Step every node is
// evaluated at most once, so a world-action node read by several consumers
// reaches the gateway only once.
package engine
