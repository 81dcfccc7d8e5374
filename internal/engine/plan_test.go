package engine

import (
	"testing"

	"github.com/specialistvlad/flowgrid/internal/dag"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		build   func(t *testing.T) *graph.Graph
		wantErr error
	}{
		{
			name:    "empty graph has no entry",
			build:   func(t *testing.T) *graph.Graph { return graph.New() },
			wantErr: ErrNoEntry,
		},
		{
			name: "value nodes alone have no entry",
			build: func(t *testing.T) *graph.Graph {
				return newGraph(t, node("x", graph.TypeVariable), node("p", graph.TypePlayer))
			},
			wantErr: ErrNoEntry,
		},
		{
			name: "flow cycle without a loop has no entry",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("a", graph.TypePrint), node("b", graph.TypePrint))
				g.Connect("a", "flow", "b", "flow")
				g.Connect("b", "flow", "a", "flow")
				return g
			},
			wantErr: ErrNoEntry,
		},
		{
			name: "two unconnected flow nodes",
			build: func(t *testing.T) *graph.Graph {
				return newGraph(t, node("a", graph.TypePrint), node("b", graph.TypeMove))
			},
			wantErr: ErrMultipleEntries,
		},
		{
			name: "data cycle",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t,
					node("start", graph.TypePrint),
					node("m1", graph.TypeMath),
					node("m2", graph.TypeMath),
				)
				g.Connect("m1", "result", "m2", "a")
				g.Connect("m2", "result", "m1", "a")
				g.Connect("m1", "result", "start", "value")
				return g
			},
			wantErr: ErrDataCycle,
		},
		{
			name: "node feeding itself",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("start", graph.TypePrint), node("m", graph.TypeMath))
				g.Connect("m", "result", "m", "a")
				return g
			},
			wantErr: ErrDataCycle,
		},
		{
			name: "edge to a missing node",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("start", graph.TypePrint))
				g.Connect("start", "flow", "ghost", "flow")
				return g
			},
			wantErr: ErrDanglingEdge,
		},
		{
			name: "edge from a missing port",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("start", graph.TypePrint), node("end", graph.TypePrint))
				g.Connect("start", "true", "end", "flow")
				return g
			},
			wantErr: ErrDanglingEdge,
		},
		{
			name: "edge into an output port",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("start", graph.TypeMove), node("x", graph.TypeVariable))
				g.Connect("x", "value", "start", "success")
				return g
			},
			wantErr: ErrDanglingEdge,
		},
		{
			name: "flow output into a data input",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("start", graph.TypePrint), node("end", graph.TypePrint))
				g.Connect("start", "flow", "end", "value")
				return g
			},
			wantErr: ErrPortKind,
		},
		{
			name: "unknown node type",
			build: func(t *testing.T) *graph.Graph {
				return &graph.Graph{Nodes: []graph.Node{{ID: "x", Type: graph.TypeInvalid}}}
			},
			wantErr: graph.ErrUnknownNodeType,
		},
		{
			name: "duplicate node id",
			build: func(t *testing.T) *graph.Graph {
				return &graph.Graph{Nodes: []graph.Node{
					{ID: "a", Type: graph.TypePrint},
					{ID: "a", Type: graph.TypeMove},
				}}
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "duplicate edge id",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("a", graph.TypePrint), node("b", graph.TypePrint), node("c", graph.TypePrint))
				g.AddEdge(graph.Edge{ID: "same", SourceNode: "a", SourcePort: "flow", TargetNode: "b", TargetPort: "flow"})
				g.AddEdge(graph.Edge{ID: "same", SourceNode: "b", SourcePort: "flow", TargetNode: "c", TargetPort: "flow"})
				return g
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "program starting with a loop",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("loop", graph.TypeLoop), node("move", graph.TypeMove))
				g.Connect("loop", "body", "move", "flow")
				g.Connect("move", "flow", "loop", "flow")
				return g
			},
		},
		{
			name: "loop feeding itself through its body",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t, node("loop", graph.TypeLoop))
				g.Connect("loop", "body", "loop", "flow")
				return g
			},
		},
		{
			name: "value nodes may feed several consumers",
			build: func(t *testing.T) *graph.Graph {
				g := newGraph(t,
					node("x", graph.TypeVariable),
					node("a", graph.TypePrint),
					node("b", graph.TypePrint),
				)
				g.Connect("a", "flow", "b", "flow")
				g.Connect("x", "value", "a", "value")
				g.Connect("x", "value", "b", "value")
				return g
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tc.build(t))

			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidate_ReportsCyclePath(t *testing.T) {
	t.Parallel()

	g := newGraph(t,
		node("start", graph.TypePrint),
		node("m1", graph.TypeMath),
		node("m2", graph.TypeMath),
	)
	g.Connect("m1", "result", "m2", "a")
	g.Connect("m2", "result", "m1", "b")

	err := Validate(g)

	var cycle *dag.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"m1", "m2", "m1"}, cycle.Path)
}

func TestValidate_ListsEveryEntry(t *testing.T) {
	t.Parallel()

	g := newGraph(t, node("b", graph.TypePrint), node("a", graph.TypeTurn))

	err := Validate(g)

	require.ErrorIs(t, err, ErrMultipleEntries)
	assert.EqualError(t, err, "multiple entry nodes: a, b")
}

func TestCompile_Indexes(t *testing.T) {
	t.Parallel()

	g := newGraph(t,
		node("x", graph.TypeVariable),
		node("if", graph.TypeIf),
		node("a", graph.TypePrint),
		node("b", graph.TypePrint),
	)
	g.Connect("x", "value", "if", "condition")
	g.Connect("if", "true", "a", "flow")
	g.Connect("if", "false", "b", "flow")

	p, err := compile(g)

	require.NoError(t, err)
	assert.Equal(t, "if", p.entry)
	assert.Equal(t, "a", p.flowNext[portKey{"if", "true"}].TargetNode)
	assert.Equal(t, "b", p.flowNext[portKey{"if", "false"}].TargetNode)
	assert.Equal(t, "e1", p.dataIn[portKey{"if", "condition"}].ID)
	require.Len(t, p.variables, 1)
	assert.Equal(t, "x", p.variables[0].ID)
}
