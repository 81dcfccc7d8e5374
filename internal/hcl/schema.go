package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is the top level of a program file. Unknown blocks and attributes
// are rejected by the decoder.
type fileRoot struct {
	Nodes []*nodeBlock `hcl:"node,block"`
	Edges []*edgeBlock `hcl:"edge,block"`
}

type nodeBlock struct {
	Type     string    `hcl:"type,label"`
	ID       string    `hcl:"id,label"`
	Config   hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type edgeBlock struct {
	ID       *string        `hcl:"id,optional"`
	From     hcl.Expression `hcl:"from"`
	To       hcl.Expression `hcl:"to"`
	DefRange hcl.Range      `hcl:",def_range"`
}
