package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/portref"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// evalCtx is what node attributes are evaluated against. Programs have no
// variables of their own, only a handful of pure functions.
var evalCtx = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"format": stdlib.FormatFunc,
		"lower":  stdlib.LowerFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,
		"upper":  stdlib.UpperFunc,
	},
}

// decodeInto appends the nodes and edges declared in body to g.
func decodeInto(g *graph.Graph, body hcl.Body) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return diags
	}

	for _, nb := range root.Nodes {
		n, diags := decodeNode(nb)
		if diags.HasErrors() {
			return diags
		}
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("%s: %w", nb.DefRange, err)
		}
	}

	edges := make([]graph.Edge, 0, len(root.Edges))
	for _, eb := range root.Edges {
		e, diags := decodeEdge(eb)
		if diags.HasErrors() {
			return diags
		}
		if e.ID != "" {
			g.ReserveEdgeIDs(e.ID)
		}
		edges = append(edges, e)
	}
	for _, e := range edges {
		g.AddEdge(e)
	}
	return nil
}

func decodeNode(nb *nodeBlock) (graph.Node, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	t, err := graph.ParseNodeType(nb.Type)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown node type",
			Detail:   fmt.Sprintf("Node %q has type %q. %s.", nb.ID, nb.Type, knownTypes()),
			Subject:  nb.DefRange.Ptr(),
		})
		return graph.Node{}, diags
	}

	attrs, attrDiags := nb.Config.JustAttributes()
	diags = append(diags, attrDiags...)
	if diags.HasErrors() {
		return graph.Node{}, diags
	}

	cfg := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, valDiags := attrValue(attr.Expr)
		diags = append(diags, valDiags...)
		cfg[name] = v
	}
	return graph.Node{ID: nb.ID, Type: t, Config: cfg}, diags
}

// attrValue evaluates a node attribute. A lone keyword such as `add` or
// `right` is taken as the string it spells.
func attrValue(expr hcl.Expression) (cty.Value, hcl.Diagnostics) {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return cty.StringVal(kw), nil
	}
	return expr.Value(evalCtx)
}

func decodeEdge(eb *edgeBlock) (graph.Edge, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	from, fromDiags := refValue(eb.From, "from")
	diags = append(diags, fromDiags...)
	to, toDiags := refValue(eb.To, "to")
	diags = append(diags, toDiags...)
	if diags.HasErrors() {
		return graph.Edge{}, diags
	}

	e := graph.Edge{
		SourceNode: from.Node,
		SourcePort: from.Port,
		TargetNode: to.Node,
		TargetPort: to.Port,
	}
	if eb.ID != nil {
		e.ID = *eb.ID
	}
	return e, nil
}

// refValue reads a port reference written either as a traversal
// (`move.flow`) or as a string ("move.flow").
func refValue(expr hcl.Expression, attr string) (portref.Ref, hcl.Diagnostics) {
	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid port reference",
			Detail:   fmt.Sprintf("The %q attribute %s.", attr, detail),
			Subject:  expr.Range().Ptr(),
		}}
	}

	if traversal, tDiags := hcl.AbsTraversalForExpr(expr); !tDiags.HasErrors() {
		if len(traversal) != 2 {
			return portref.Ref{}, invalid("must have exactly two parts, node.port")
		}
		step, ok := traversal[1].(hcl.TraverseAttr)
		if !ok {
			return portref.Ref{}, invalid("must be written as node.port")
		}
		ref, err := portref.Parse(traversal.RootName() + "." + step.Name)
		if err != nil {
			return portref.Ref{}, invalid(err.Error())
		}
		return ref, nil
	}

	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return portref.Ref{}, diags
	}
	if v.IsNull() || !v.Type().Equals(cty.String) {
		return portref.Ref{}, invalid("must be a node.port reference")
	}
	ref, err := portref.Parse(v.AsString())
	if err != nil {
		return portref.Ref{}, invalid(err.Error())
	}
	return ref, nil
}

func knownTypes() string {
	names := make([]string, 0, len(graph.AllTypes()))
	for _, t := range graph.AllTypes() {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return fmt.Sprintf("Known types are: %v", names)
}
