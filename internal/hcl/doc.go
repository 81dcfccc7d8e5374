// Package hcl loads node programs from HCL files and writes them back.
//
// A program is a list of node blocks labelled with the node type and ID,
// followed by edge blocks joining `node.port` references:
//
//	node "variable" "steps" {
//	  initial = 2
//	}
//
//	node "move" "walk" {}
//
//	edge {
//	  from = steps.value
//	  to   = walk.steps
//	}
//
// References may be written bare or quoted. Bare keywords in node attributes
// read as strings, so `operation = add` and `operation = "add"` are equal.
package hcl
