// Package behavior is the node behavior table: for every graph.NodeType it
// fixes the port layout and the execution semantics. Dispatch is an
// exhaustive switch over the closed NodeType set, so adding a type without a
// behavior fails loudly.
package behavior

import (
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/graph"
)

// Kind is the execution category of a node type.
type Kind int

const (
	// Value nodes are pure and only run when a consumer pulls their outputs.
	Value Kind = iota
	// Effect nodes have one flow input and one flow output and perform one effect.
	Effect
	// Control nodes pick which flow output fires.
	Control
	// Passive nodes mirror external state and only serve data.
	Passive
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Effect:
		return "effect"
	case Control:
		return "control"
	default:
		return "passive"
	}
}

// Port names shared across node types.
const (
	PortFlow  = "flow"
	PortBody  = "body"
	PortDone  = "done"
	PortTrue  = "true"
	PortFalse = "false"
)

// Schema is the static description of a node type.
type Schema struct {
	Type  graph.NodeType
	Kind  Kind
	Ports []graph.Port
	// WorldAction is set for effect nodes that call the gateway.
	WorldAction bool
}

// Port finds a port by name and direction.
func (s Schema) Port(name string, dir graph.Direction) (graph.Port, bool) {
	for _, p := range s.Ports {
		if p.Name == name && p.Direction == dir {
			return p, true
		}
	}
	return graph.Port{}, false
}

// IsFlowNode reports whether the node takes part in control flow.
func (s Schema) IsFlowNode() bool {
	return s.Kind == Effect || s.Kind == Control
}

var (
	flowIn  = graph.FlowIn(PortFlow)
	flowOut = graph.FlowOut(PortFlow)
	posOut  = func(name string) graph.Port { return graph.DataOut(name, graph.Any) }
)

// Lookup returns the schema for a node type.
func Lookup(t graph.NodeType) (Schema, error) {
	s := Schema{Type: t}
	switch t {
	case graph.TypeVariable:
		s.Kind = Value
		s.Ports = []graph.Port{graph.DataOut("value", graph.Any)}
	case graph.TypeMath:
		s.Kind = Value
		s.Ports = []graph.Port{
			graph.DataIn("a", graph.Number),
			graph.DataIn("b", graph.Number),
			graph.DataOut("result", graph.Number),
		}
	case graph.TypeLogical:
		s.Kind = Value
		s.Ports = []graph.Port{
			graph.DataIn("left", graph.Any),
			graph.DataIn("right", graph.Any),
			graph.DataOut("result", graph.Boolean),
		}
	case graph.TypeBooleanLogic:
		s.Kind = Value
		s.Ports = []graph.Port{
			graph.DataIn("left", graph.Boolean),
			graph.DataIn("right", graph.Boolean),
			graph.DataOut("result", graph.Boolean),
		}
	case graph.TypeAssignment:
		s.Kind = Effect
		s.Ports = []graph.Port{flowIn, graph.DataIn("value", graph.Any), flowOut, graph.DataOut("result", graph.Any)}
	case graph.TypePrint:
		s.Kind = Effect
		s.Ports = []graph.Port{flowIn, graph.DataIn("value", graph.Any), flowOut}
	case graph.TypeMove:
		s.Kind, s.WorldAction = Effect, true
		s.Ports = []graph.Port{
			flowIn, graph.DataIn("steps", graph.Number),
			flowOut,
			graph.DataOut("success", graph.Boolean),
			graph.DataOut("steps", graph.Number),
			posOut("position"),
			graph.DataOut("direction", graph.String),
		}
	case graph.TypeTurn:
		s.Kind, s.WorldAction = Effect, true
		s.Ports = []graph.Port{
			flowIn, graph.DataIn("direction", graph.String),
			flowOut,
			graph.DataOut("success", graph.Boolean),
			graph.DataOut("direction", graph.String),
			graph.DataOut("previousDirection", graph.String),
			graph.DataOut("newDirection", graph.String),
		}
	case graph.TypeJump:
		s.Kind, s.WorldAction = Effect, true
		s.Ports = []graph.Port{
			flowIn, flowOut,
			graph.DataOut("success", graph.Boolean),
			graph.DataOut("height", graph.Number),
			posOut("position"),
		}
	case graph.TypeWallAhead:
		s.Kind, s.WorldAction = Effect, true
		s.Ports = []graph.Port{
			flowIn, flowOut,
			graph.DataOut("wallExists", graph.Boolean),
			posOut("position"),
			graph.DataOut("direction", graph.String),
			posOut("obstaclePosition"),
		}
	case graph.TypeExitReached:
		s.Kind, s.WorldAction = Effect, true
		s.Ports = []graph.Port{
			flowIn, flowOut,
			graph.DataOut("isReached", graph.Boolean),
			posOut("position"),
			posOut("exitPosition"),
		}
	case graph.TypeIf:
		s.Kind = Control
		s.Ports = []graph.Port{
			flowIn, graph.DataIn("condition", graph.Boolean),
			graph.FlowOut(PortTrue), graph.FlowOut(PortFalse),
		}
	case graph.TypeLoop:
		s.Kind = Control
		s.Ports = []graph.Port{
			flowIn, graph.DataIn("count", graph.Number),
			graph.FlowOut(PortBody), graph.FlowOut(PortDone),
			graph.DataOut("index", graph.Number),
		}
	case graph.TypePlayer:
		s.Kind = Passive
		s.Ports = []graph.Port{
			posOut("position"),
			graph.DataOut("direction", graph.String),
			graph.DataOut("isJumping", graph.Boolean),
		}
	default:
		return Schema{}, fmt.Errorf("%w: %s", graph.ErrUnknownNodeType, t)
	}
	return s, nil
}
