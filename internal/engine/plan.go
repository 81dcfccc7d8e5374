package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/flowgrid/internal/behavior"
	"github.com/specialistvlad/flowgrid/internal/dag"
	"github.com/specialistvlad/flowgrid/internal/graph"
)

type portKey struct {
	node string
	port string
}

// plan is the validated, indexed form of a graph that steps run against.
type plan struct {
	nodes   map[string]graph.Node
	schemas map[string]behavior.Schema
	// variables lists variable nodes in graph order.
	variables []graph.Node
	entry     string
	// flowNext maps a flow output to the first edge leaving it.
	flowNext map[portKey]graph.Edge
	// dataIn maps a data input to the first edge entering it.
	dataIn map[portKey]graph.Edge
}

// Validate checks that g can be executed: every node type is known, every
// edge joins existing ports of the same kind, data edges are acyclic and
// exactly one entry node exists.
func Validate(g *graph.Graph) error {
	_, err := compile(g)
	return err
}

func compile(g *graph.Graph) (*plan, error) {
	if g == nil {
		return nil, ErrNoEntry
	}
	p := &plan{
		nodes:    make(map[string]graph.Node, len(g.Nodes)),
		schemas:  make(map[string]behavior.Schema, len(g.Nodes)),
		flowNext: make(map[portKey]graph.Edge),
		dataIn:   make(map[portKey]graph.Edge),
	}

	for _, n := range g.Nodes {
		if _, dup := p.nodes[n.ID]; dup {
			return nil, fmt.Errorf("%w: node '%s'", ErrDuplicateID, n.ID)
		}
		s, err := behavior.Lookup(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node '%s': %w", n.ID, err)
		}
		p.nodes[n.ID] = n
		p.schemas[n.ID] = s
		if n.Type == graph.TypeVariable {
			p.variables = append(p.variables, n)
		}
	}

	data, flow := dag.New(), dag.New()
	for _, n := range g.Nodes {
		data.AddNode(n.ID)
		flow.AddNode(n.ID)
	}

	var flowEdges []graph.Edge
	edgeIDs := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		if edgeIDs[e.ID] {
			return nil, fmt.Errorf("%w: edge '%s'", ErrDuplicateID, e.ID)
		}
		edgeIDs[e.ID] = true

		kind, err := p.checkEdge(e)
		if err != nil {
			return nil, err
		}
		switch kind {
		case graph.Data:
			if err := data.AddEdge(e.SourceNode, e.TargetNode); err != nil {
				if errors.Is(err, dag.ErrSelfEdge) {
					return nil, fmt.Errorf("%w: node '%s' feeds itself", ErrDataCycle, e.SourceNode)
				}
				return nil, err
			}
			if _, taken := p.dataIn[portKey{e.TargetNode, e.TargetPort}]; !taken {
				p.dataIn[portKey{e.TargetNode, e.TargetPort}] = e
			}
		case graph.Flow:
			// Self loops are legal control flow; the flow graph is only used
			// for reachability, where they add nothing.
			if err := flow.AddEdge(e.SourceNode, e.TargetNode); err != nil && !errors.Is(err, dag.ErrSelfEdge) {
				return nil, err
			}
			flowEdges = append(flowEdges, e)
			if _, taken := p.flowNext[portKey{e.SourceNode, e.SourcePort}]; !taken {
				p.flowNext[portKey{e.SourceNode, e.SourcePort}] = e
			}
		}
	}

	if err := data.DetectCycles(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataCycle, err)
	}

	entry, err := p.findEntry(g, flow, flowEdges)
	if err != nil {
		return nil, err
	}
	p.entry = entry
	return p, nil
}

// checkEdge verifies both ends of e and returns the kind of port it joins.
func (p *plan) checkEdge(e graph.Edge) (graph.PortKind, error) {
	src, ok := p.schemas[e.SourceNode]
	if !ok {
		return 0, fmt.Errorf("%w: edge '%s' (%s): unknown source node '%s'", ErrDanglingEdge, e.ID, e, e.SourceNode)
	}
	dst, ok := p.schemas[e.TargetNode]
	if !ok {
		return 0, fmt.Errorf("%w: edge '%s' (%s): unknown target node '%s'", ErrDanglingEdge, e.ID, e, e.TargetNode)
	}
	out, ok := src.Port(e.SourcePort, graph.Out)
	if !ok {
		return 0, fmt.Errorf("%w: edge '%s' (%s): %s has no output '%s'", ErrDanglingEdge, e.ID, e, src.Type, e.SourcePort)
	}
	in, ok := dst.Port(e.TargetPort, graph.In)
	if !ok {
		return 0, fmt.Errorf("%w: edge '%s' (%s): %s has no input '%s'", ErrDanglingEdge, e.ID, e, dst.Type, e.TargetPort)
	}
	if out.Kind != in.Kind {
		return 0, fmt.Errorf("%w: edge '%s' (%s)", ErrPortKind, e.ID, e)
	}
	return out.Kind, nil
}

// findEntry returns the only flow node without an incoming flow edge. An edge
// into a loop node that comes back from the loop's own body does not count,
// so a program may start with a loop. The body is whatever the body output
// reaches without passing through the loop again.
func (p *plan) findEntry(g *graph.Graph, flow *dag.Graph, flowEdges []graph.Edge) (string, error) {
	bodies := make(map[string]map[string]bool)
	for _, e := range flowEdges {
		if p.schemas[e.SourceNode].Type != graph.TypeLoop || e.SourcePort != behavior.PortBody {
			continue
		}
		if bodies[e.SourceNode] == nil {
			bodies[e.SourceNode] = map[string]bool{e.SourceNode: true}
		}
		for id := range flow.ReachableAvoiding(e.SourceNode, e.TargetNode) {
			bodies[e.SourceNode][id] = true
		}
	}

	incoming := make(map[string]int)
	for _, e := range flowEdges {
		if bodies[e.TargetNode][e.SourceNode] {
			continue
		}
		incoming[e.TargetNode]++
	}

	var entries []string
	for _, n := range g.Nodes {
		if p.schemas[n.ID].IsFlowNode() && incoming[n.ID] == 0 {
			entries = append(entries, n.ID)
		}
	}
	switch len(entries) {
	case 0:
		return "", ErrNoEntry
	case 1:
		return entries[0], nil
	default:
		slices.Sort(entries)
		return "", fmt.Errorf("%w: %s", ErrMultipleEntries, strings.Join(entries, ", "))
	}
}
