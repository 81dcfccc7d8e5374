package graph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Node is a single vertex of a program graph. It carries no behavior; the
// behavior table is keyed by Type.
type Node struct {
	ID     string
	Type   NodeType
	Config map[string]cty.Value
}

// ConfigValue returns the configured value for key. Missing keys and null
// values both report false.
func (n Node) ConfigValue(key string) (cty.Value, bool) {
	v, ok := n.Config[key]
	if !ok || v == cty.NilVal || v.IsNull() {
		return cty.NilVal, false
	}
	return v, true
}

// ConfigString returns a string config entry or the fallback when the entry
// is missing or not a known string.
func (n Node) ConfigString(key, fallback string) string {
	v, ok := n.ConfigValue(key)
	if !ok || !v.IsKnown() || v.Type() != cty.String {
		return fallback
	}
	return v.AsString()
}

// Edge joins SourceNode.SourcePort (an output) to TargetNode.TargetPort (an input).
type Edge struct {
	ID         string
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// String renders the edge as "source.port -> target.port".
func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.SourceNode, e.SourcePort, e.TargetNode, e.TargetPort)
}

// Graph is an ordered collection of nodes and edges. Order matters: when a
// port has several edges the first one wins, so Graph keeps insertion order.
type Graph struct {
	Nodes []Node
	Edges []Edge

	byID     map[string]int
	edgeIDs  map[string]bool
	reserved map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byID: make(map[string]int)}
}

// AddNode appends a node. Node IDs must be unique and non-empty.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return fmt.Errorf("node id cannot be empty")
	}
	g.ensureIndex()
	if _, exists := g.byID[n.ID]; exists {
		return fmt.Errorf("duplicate node id '%s'", n.ID)
	}
	if n.Config == nil {
		n.Config = make(map[string]cty.Value)
	}
	g.byID[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return nil
}

// AddEdge appends an edge. An empty ID is replaced with "eN", where N starts
// at the edge's position and counts up past IDs already taken or reserved.
// References are not checked here; the engine validates them on initialize.
func (g *Graph) AddEdge(e Edge) {
	g.ensureEdgeIndex()
	if e.ID == "" {
		e.ID = g.nextEdgeID()
	}
	g.edgeIDs[e.ID] = true
	g.Edges = append(g.Edges, e)
}

// ReserveEdgeIDs keeps generated edge IDs clear of ids that explicit edges
// will claim later.
func (g *Graph) ReserveEdgeIDs(ids ...string) {
	if g.reserved == nil {
		g.reserved = make(map[string]bool, len(ids))
	}
	for _, id := range ids {
		g.reserved[id] = true
	}
}

func (g *Graph) nextEdgeID() string {
	for n := len(g.Edges) + 1; ; n++ {
		id := fmt.Sprintf("e%d", n)
		if !g.edgeIDs[id] && !g.reserved[id] {
			return id
		}
	}
}

// Connect is a shorthand for AddEdge with a generated edge ID.
func (g *Graph) Connect(from, fromPort, to, toPort string) {
	g.AddEdge(Edge{SourceNode: from, SourcePort: fromPort, TargetNode: to, TargetPort: toPort})
}

// Node looks a node up by ID.
func (g *Graph) Node(id string) (Node, bool) {
	g.ensureIndex()
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Clone returns a deep copy of the node and edge lists. cty values are
// immutable and are shared.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, n := range g.Nodes {
		cfg := make(map[string]cty.Value, len(n.Config))
		for k, v := range n.Config {
			cfg[k] = v
		}
		out.byID[n.ID] = len(out.Nodes)
		out.Nodes = append(out.Nodes, Node{ID: n.ID, Type: n.Type, Config: cfg})
	}
	out.Edges = append(out.Edges, g.Edges...)
	return out
}

// ensureIndex rebuilds the ID index for graphs built as struct literals.
func (g *Graph) ensureIndex() {
	if g.byID != nil && len(g.byID) == len(g.Nodes) {
		return
	}
	g.byID = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.byID[n.ID] = i
	}
}

// ensureEdgeIndex rebuilds the set of used edge IDs for graphs built as
// struct literals.
func (g *Graph) ensureEdgeIndex() {
	if g.edgeIDs != nil && len(g.edgeIDs) == len(g.Edges) {
		return
	}
	g.edgeIDs = make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		g.edgeIDs[e.ID] = true
	}
}
