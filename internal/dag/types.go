package dag

import (
	"errors"
	"strings"
	"sync"
)

// ErrCycle is wrapped by every error DetectCycles returns.
var ErrCycle = errors.New("cycle detected")

// ErrSelfEdge is returned by AddEdge when both ends are the same node.
var ErrSelfEdge = errors.New("self-referential edge not allowed")

// CycleError reports the node IDs forming a cycle, in traversal order, with
// the first node repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return ErrCycle.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Graph is a directed graph keyed by string IDs. Insertion order of nodes and
// edges is preserved so that traversals and reported cycles are deterministic.
// All operations on the graph are concurrency-safe.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node
	order []string
}

// node is un-exported to force interaction through string IDs.
type node struct {
	id string
	// dependents are successors in insertion order.
	dependents []*node
}
