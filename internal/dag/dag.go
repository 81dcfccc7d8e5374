package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a node with the given ID. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge fromID -> toID. Duplicate edges are
// collapsed. A self-referential edge returns ErrSelfEdge and is not stored.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("%w: %s -> %s", ErrSelfEdge, fromID, toID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if slices.Contains(fromNode.dependents, toNode) {
		return nil
	}
	fromNode.dependents = append(fromNode.dependents, toNode)
	return nil
}

// ReachableAvoiding returns every node reachable from the given start IDs by
// following edges forward, including the starts themselves. Paths through
// blocked are not followed and blocked is never in the result. Unknown starts
// are ignored.
func (g *Graph) ReachableAvoiding(blocked string, starts ...string) map[string]bool {
	return g.reach(blocked, starts)
}

func (g *Graph) reach(blocked string, starts []string) map[string]bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	seen := make(map[string]bool)
	var stack []*node
	for _, id := range starts {
		if n, ok := g.nodes[id]; ok && !seen[id] && id != blocked {
			seen[id] = true
			stack = append(stack, n)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range n.dependents {
			if next.id != blocked && !seen[next.id] {
				seen[next.id] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// DetectCycles checks the graph for cycles. The returned error is a
// *CycleError listing the nodes on the first cycle found.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: fully explored and cycle-free. onStack: the current DFS path.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var path []string

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if at, ok := onStack[n.id]; ok {
			cycle := append(slices.Clone(path[at:]), n.id)
			return &CycleError{Path: cycle}
		}

		onStack[n.id] = len(path)
		path = append(path, n.id)

		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
