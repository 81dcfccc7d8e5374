package graph

import (
	"errors"
	"fmt"
)

// ErrUnknownNodeType is returned when a type name has no entry in the node
// vocabulary.
var ErrUnknownNodeType = errors.New("unknown node type")

// NodeType is the closed set of node kinds a program may contain.
type NodeType int

const (
	TypeInvalid NodeType = iota
	TypeVariable
	TypeMath
	TypeLogical
	TypeBooleanLogic
	TypeAssignment
	TypePrint
	TypeMove
	TypeTurn
	TypeJump
	TypeWallAhead
	TypeExitReached
	TypeIf
	TypeLoop
	TypePlayer
)

var typeNames = [...]string{
	TypeInvalid:      "invalid",
	TypeVariable:     "variable",
	TypeMath:         "math",
	TypeLogical:      "logical",
	TypeBooleanLogic: "booleanLogic",
	TypeAssignment:   "assignment",
	TypePrint:        "print",
	TypeMove:         "move",
	TypeTurn:         "turn",
	TypeJump:         "jump",
	TypeWallAhead:    "wallAhead",
	TypeExitReached:  "exitReached",
	TypeIf:           "if",
	TypeLoop:         "loop",
	TypePlayer:       "player",
}

// String returns the type name used in program files.
func (t NodeType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return typeNames[t]
}

// ParseNodeType maps a program-file type name to its NodeType.
func ParseNodeType(name string) (NodeType, error) {
	for i, n := range typeNames {
		if NodeType(i) != TypeInvalid && n == name {
			return NodeType(i), nil
		}
	}
	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
}

// AllTypes lists every valid node type in declaration order.
func AllTypes() []NodeType {
	out := make([]NodeType, 0, len(typeNames)-1)
	for i := range typeNames {
		if NodeType(i) != TypeInvalid {
			out = append(out, NodeType(i))
		}
	}
	return out
}

// Direction says whether a port receives or emits.
type Direction int

const (
	In Direction = iota
	Out
)

// PortKind separates sequencing ports from value ports.
type PortKind int

const (
	Flow PortKind = iota
	Data
)

func (k PortKind) String() string {
	if k == Flow {
		return "flow"
	}
	return "data"
}

// DataType is the static type of a Data port.
type DataType int

const (
	Any DataType = iota
	Number
	String
	Boolean
)

func (t DataType) String() string {
	switch t {
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	default:
		return "any"
	}
}

// ParseDataType accepts the type keywords used in program files. "bool" is
// accepted as an alias of "boolean".
func ParseDataType(name string) (DataType, error) {
	switch name {
	case "any", "":
		return Any, nil
	case "number":
		return Number, nil
	case "string":
		return String, nil
	case "boolean", "bool":
		return Boolean, nil
	}
	return Any, fmt.Errorf("unsupported data type %q: must be one of number, string, boolean, any", name)
}

// Port describes one connection point of a node type.
type Port struct {
	Name      string
	Direction Direction
	Kind      PortKind
	Type      DataType
}

// FlowIn declares a flow input port.
func FlowIn(name string) Port { return Port{Name: name, Direction: In, Kind: Flow} }

// FlowOut declares a flow output port.
func FlowOut(name string) Port { return Port{Name: name, Direction: Out, Kind: Flow} }

// DataIn declares a typed data input port.
func DataIn(name string, t DataType) Port {
	return Port{Name: name, Direction: In, Kind: Data, Type: t}
}

// DataOut declares a typed data output port.
func DataOut(name string, t DataType) Port {
	return Port{Name: name, Direction: Out, Kind: Data, Type: t}
}
