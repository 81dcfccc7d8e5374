package hcl

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Encode renders g in canonical form: nodes in graph order with sorted
// attributes, then edges. Edge IDs that Load would generate anyway are left
// out.
func Encode(g *graph.Graph) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range g.Nodes {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("node", []string{n.Type.String(), n.ID})
		for _, key := range slices.Sorted(maps.Keys(n.Config)) {
			block.Body().SetAttributeValue(key, n.Config[key])
		}
	}

	for i, e := range g.Edges {
		if i > 0 || len(g.Nodes) > 0 {
			body.AppendNewline()
		}
		eb := body.AppendNewBlock("edge", nil).Body()
		if e.ID != fmt.Sprintf("e%d", i+1) {
			eb.SetAttributeValue("id", cty.StringVal(e.ID))
		}
		eb.SetAttributeRaw("from", refTokens(e.SourceNode, e.SourcePort))
		eb.SetAttributeRaw("to", refTokens(e.TargetNode, e.TargetPort))
	}

	return hclwrite.Format(f.Bytes())
}

// refTokens writes a reference bare when both parts are identifiers and
// quoted otherwise.
func refTokens(node, port string) hclwrite.Tokens {
	if hclsyntax.ValidIdentifier(node) && hclsyntax.ValidIdentifier(port) {
		return hclwrite.TokensForTraversal(hcl.Traversal{
			hcl.TraverseRoot{Name: node},
			hcl.TraverseAttr{Name: port},
		})
	}
	return hclwrite.TokensForValue(cty.StringVal(node + "." + port))
}

// Format normalizes the layout of a program file, keeping comments. The
// source must parse.
func Format(src []byte, filename string) ([]byte, error) {
	_, diags := hclwrite.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return hclwrite.Format(src), nil
}
