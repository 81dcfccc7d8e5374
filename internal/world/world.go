// Package world is the host-side grid simulation. A World implements
// gateway.Gateway for the engine and doubles as the shared state handle for
// presentation code: observers subscribe to the handle itself, so two worlds
// in one process never see each other's events.
package world

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/flowgrid/internal/gateway"
)

// DefaultJumpDuration is how long the agent stays airborne after a jump.
const DefaultJumpDuration = time.Second

// Event is delivered to observers after every state change.
type Event struct {
	Action  string
	Message string
	Agent   gateway.AgentState
}

// Observer receives world events. Observers run synchronously on the goroutine
// that changed the world and must not call back into it.
type Observer func(Event)

// Option configures a World.
type Option func(*World)

// WithJumpDuration overrides DefaultJumpDuration. Zero disables automatic
// landing; the flag then stays set until Reset.
func WithJumpDuration(d time.Duration) Option {
	return func(w *World) { w.jumpDuration = d }
}

// World is a single agent on a walled grid. It is safe for concurrent use.
type World struct {
	mu           sync.RWMutex
	level        Level
	walls        map[gateway.Position]bool
	agent        gateway.AgentState
	lastAction   string
	jumpDuration time.Duration
	jumpTimer    *time.Timer

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

var _ gateway.Gateway = (*World)(nil)
var _ gateway.AgentReader = (*World)(nil)

// New builds a world from a validated level.
func New(level Level, opts ...Option) (*World, error) {
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("invalid level: %w", err)
	}
	w := &World{
		level:        level,
		walls:        make(map[gateway.Position]bool, len(level.Walls)),
		jumpDuration: DefaultJumpDuration,
		observers:    make(map[int]Observer),
	}
	for _, p := range level.Walls {
		w.walls[p] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	w.agent = w.startState()
	w.lastAction = "ready"
	return w, nil
}

// Level returns the level the world was built from.
func (w *World) Level() Level {
	return w.level
}

// Subscribe registers an observer and returns a function that removes it.
func (w *World) Subscribe(fn Observer) (unsubscribe func()) {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	return func() {
		w.obsMu.Lock()
		defer w.obsMu.Unlock()
		delete(w.observers, id)
	}
}

// AgentState returns a snapshot of the agent.
func (w *World) AgentState() gateway.AgentState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.agent
}

// LastAction describes the most recent state change.
func (w *World) LastAction() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastAction
}

// Move advances the agent steps cells forward. The whole path must be on the
// grid and free of walls, otherwise the agent stays put.
func (w *World) Move(steps int) (gateway.MoveResult, error) {
	if steps < 0 {
		return gateway.MoveResult{}, fmt.Errorf("steps must not be negative, got %d", steps)
	}

	w.mu.Lock()
	from := w.agent.Position
	dir := w.agent.Direction
	blocked := false
	for i := 1; i <= steps; i++ {
		if w.isObstacle(from.Add(dir, i)) {
			blocked = true
			break
		}
	}
	res := gateway.MoveResult{Success: !blocked, Steps: steps, Position: from, Direction: dir}
	if !blocked {
		res.Position = from.Add(dir, steps)
		w.agent.Position = res.Position
		w.lastAction = fmt.Sprintf("moved %d step(s) to %s", steps, res.Position)
	} else {
		w.lastAction = "move blocked: wall ahead"
	}
	ev := w.eventLocked("move")
	w.mu.Unlock()

	w.notify(ev)
	return res, nil
}

// Turn rotates the agent a quarter turn.
func (w *World) Turn(side gateway.Side) (gateway.TurnResult, error) {
	if _, err := gateway.ParseSide(string(side)); err != nil {
		return gateway.TurnResult{}, err
	}

	w.mu.Lock()
	prev := w.agent.Direction
	next := prev.Turn(side)
	w.agent.Direction = next
	w.lastAction = fmt.Sprintf("turned %s, now facing %s", side, next)
	ev := w.eventLocked("turn")
	w.mu.Unlock()

	w.notify(ev)
	return gateway.TurnResult{Success: true, Direction: next, PreviousDirection: prev, NewDirection: next}, nil
}

// Jump makes the agent airborne for the configured duration.
func (w *World) Jump() (gateway.JumpResult, error) {
	w.mu.Lock()
	w.agent.IsJumping = true
	w.lastAction = "jumped"
	if w.jumpTimer != nil {
		w.jumpTimer.Stop()
	}
	if w.jumpDuration > 0 {
		w.jumpTimer = time.AfterFunc(w.jumpDuration, w.land)
	}
	res := gateway.JumpResult{Success: true, Height: 1, Position: w.agent.Position}
	ev := w.eventLocked("jump")
	w.mu.Unlock()

	w.notify(ev)
	return res, nil
}

// CheckWall looks one cell ahead. The grid edge counts as a wall.
func (w *World) CheckWall() (gateway.WallResult, error) {
	w.mu.Lock()
	front := w.agent.Position.Add(w.agent.Direction, 1)
	res := gateway.WallResult{
		WallExists: w.isObstacle(front),
		Position:   w.agent.Position,
		Direction:  w.agent.Direction,
	}
	if res.WallExists {
		res.ObstaclePosition = &front
		w.lastAction = "wall check: wall ahead"
	} else {
		w.lastAction = "wall check: path clear"
	}
	ev := w.eventLocked("check_wall")
	w.mu.Unlock()

	w.notify(ev)
	return res, nil
}

// CheckExit reports whether the agent stands on the exit cell.
func (w *World) CheckExit() (gateway.ExitResult, error) {
	w.mu.Lock()
	res := gateway.ExitResult{
		IsReached:    w.agent.Position == w.level.Exit,
		Position:     w.agent.Position,
		ExitPosition: w.level.Exit,
	}
	if res.IsReached {
		w.lastAction = "exit check: exit reached"
	} else {
		w.lastAction = "exit check: exit not reached"
	}
	ev := w.eventLocked("check_exit")
	w.mu.Unlock()

	w.notify(ev)
	return res, nil
}

// Reset puts the agent back on its start cell. Engine state is unaffected.
func (w *World) Reset() {
	w.mu.Lock()
	if w.jumpTimer != nil {
		w.jumpTimer.Stop()
		w.jumpTimer = nil
	}
	w.agent = w.startState()
	w.lastAction = "position reset"
	ev := w.eventLocked("reset")
	w.mu.Unlock()

	w.notify(ev)
}

// Render draws the grid as text: '#' walls, 'E' the exit and an arrow for the agent.
func (w *World) Render() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var sb strings.Builder
	for y := 0; y < w.level.GridSize; y++ {
		for x := 0; x < w.level.GridSize; x++ {
			p := gateway.Position{X: x, Y: y}
			switch {
			case p == w.agent.Position:
				sb.WriteRune(arrow(w.agent.Direction))
			case w.walls[p]:
				sb.WriteByte('#')
			case p == w.level.Exit:
				sb.WriteByte('E')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (w *World) land() {
	w.mu.Lock()
	if !w.agent.IsJumping {
		w.mu.Unlock()
		return
	}
	w.agent.IsJumping = false
	w.lastAction = "landed"
	ev := w.eventLocked("land")
	w.mu.Unlock()

	w.notify(ev)
}

func (w *World) startState() gateway.AgentState {
	return gateway.AgentState{
		Position:  w.level.Start.Position,
		Direction: w.level.Start.Direction,
	}
}

// isObstacle must be called with mu held.
func (w *World) isObstacle(p gateway.Position) bool {
	return !w.level.inBounds(p) || w.walls[p]
}

func (w *World) eventLocked(action string) Event {
	return Event{Action: action, Message: w.lastAction, Agent: w.agent}
}

func (w *World) notify(ev Event) {
	w.obsMu.Lock()
	ids := make([]int, 0, len(w.observers))
	for id := range w.observers {
		ids = append(ids, id)
	}
	fns := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, w.observers[id])
	}
	w.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func arrow(d gateway.Direction) rune {
	switch d {
	case gateway.North:
		return '^'
	case gateway.South:
		return 'v'
	case gateway.West:
		return '<'
	default:
		return '>'
	}
}
