// Package graph holds the program model: typed nodes joined by edges that
// connect a named output port of one node to a named input port of another.
//
// # Two Subgraphs
//
// Every edge belongs to exactly one of two subgraphs, decided by the kind of
// the ports it joins:
//
//   - **Flow edges** sequence execution. The flow subgraph may contain cycles,
//     but only through the body of a loop node.
//   - **Data edges** carry values. The data subgraph must be acyclic, because
//     values are resolved by pulling from producers on demand.
//
// # Pure Data
//
// Nothing in this package executes. A Node is an identifier, a closed type tag
// and a configuration map of cty values. Port layouts and semantics for each
// NodeType live in package behavior, and all mutable run state lives in the
// execution context owned by package engine.
package graph
