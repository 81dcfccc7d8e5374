// Package gateway defines the narrow interface through which node behaviors
// reach the outside world. The engine never touches world state directly; it
// calls a Gateway and copies the returned fields onto Data outputs.
package gateway

import "fmt"

// Direction is a compass heading on the grid. North decreases y.
type Direction string

const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"
)

var clockwise = []Direction{North, East, South, West}

// ParseDirection validates a heading name.
func ParseDirection(s string) (Direction, error) {
	for _, d := range clockwise {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid direction %q: must be north, east, south or west", s)
}

// Turn returns the heading after rotating a quarter turn towards side.
func (d Direction) Turn(side Side) Direction {
	for i, c := range clockwise {
		if c != d {
			continue
		}
		if side == Left {
			return clockwise[(i+3)%4]
		}
		return clockwise[(i+1)%4]
	}
	return East
}

// Delta is the unit step for the heading.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 1, 0
	}
}

// Side selects the rotation of a turn.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// ParseSide validates a turn side.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Left, Right:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid turn direction %q: must be left or right", s)
}

// Position is a grid cell.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add offsets a position by n unit steps along d.
func (p Position) Add(d Direction, n int) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx*n, Y: p.Y + dy*n}
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// MoveResult reports a move attempt. A blocked move leaves Position unchanged
// and sets Success to false.
type MoveResult struct {
	Success   bool
	Steps     int
	Position  Position
	Direction Direction
}

// TurnResult reports a rotation. Direction and NewDirection are the same
// heading; both are kept because programs address either name.
type TurnResult struct {
	Success           bool
	Direction         Direction
	PreviousDirection Direction
	NewDirection      Direction
}

// JumpResult reports a jump.
type JumpResult struct {
	Success  bool
	Height   int
	Position Position
}

// WallResult reports what is in front of the agent. ObstaclePosition is nil
// when the way is clear.
type WallResult struct {
	WallExists       bool
	Position         Position
	Direction        Direction
	ObstaclePosition *Position
}

// ExitResult reports whether the agent stands on the exit.
type ExitResult struct {
	IsReached    bool
	Position     Position
	ExitPosition Position
}

// AgentState is a read-only snapshot of the agent.
type AgentState struct {
	Position  Position  `json:"position"`
	Direction Direction `json:"direction"`
	IsJumping bool      `json:"isJumping"`
}

// Gateway is the set of world actions available to a program. A returned
// error is a gateway failure and halts the run.
type Gateway interface {
	Move(steps int) (MoveResult, error)
	Turn(side Side) (TurnResult, error)
	Jump() (JumpResult, error)
	CheckWall() (WallResult, error)
	CheckExit() (ExitResult, error)
}

// AgentReader is implemented by gateways that can expose the agent snapshot
// to player nodes.
type AgentReader interface {
	AgentState() AgentState
}
