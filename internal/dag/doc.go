// Package dag is a small directed-graph index over string IDs. The engine
// uses it twice: once over data edges to prove the data subgraph acyclic
// before a run starts, and once over flow edges to find which nodes sit
// inside a loop body.
package dag
