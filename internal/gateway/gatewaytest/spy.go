// Package gatewaytest provides a call-counting gateway for tests.
package gatewaytest

import (
	"sync"

	"github.com/specialistvlad/flowgrid/internal/gateway"
)

// Method names reported by Spy.Calls.
const (
	Move      = "Move"
	Turn      = "Turn"
	Jump      = "Jump"
	CheckWall = "CheckWall"
	CheckExit = "CheckExit"
)

// Spy forwards every call to a target gateway, counting calls per method and
// optionally failing chosen methods.
type Spy struct {
	target gateway.Gateway

	mu    sync.Mutex
	calls map[string]int
	order []string
	fail  map[string]error
}

var _ gateway.Gateway = (*Spy)(nil)
var _ gateway.AgentReader = (*Spy)(nil)

// NewSpy wraps target.
func NewSpy(target gateway.Gateway) *Spy {
	return &Spy{
		target: target,
		calls:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

// FailOn makes method return err instead of reaching the target.
func (s *Spy) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = err
}

// Calls returns how many times method was invoked.
func (s *Spy) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Order lists every invoked method in call order.
func (s *Spy) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *Spy) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	s.order = append(s.order, method)
	return s.fail[method]
}

func (s *Spy) Move(steps int) (gateway.MoveResult, error) {
	if err := s.record(Move); err != nil {
		return gateway.MoveResult{}, err
	}
	return s.target.Move(steps)
}

func (s *Spy) Turn(side gateway.Side) (gateway.TurnResult, error) {
	if err := s.record(Turn); err != nil {
		return gateway.TurnResult{}, err
	}
	return s.target.Turn(side)
}

func (s *Spy) Jump() (gateway.JumpResult, error) {
	if err := s.record(Jump); err != nil {
		return gateway.JumpResult{}, err
	}
	return s.target.Jump()
}

func (s *Spy) CheckWall() (gateway.WallResult, error) {
	if err := s.record(CheckWall); err != nil {
		return gateway.WallResult{}, err
	}
	return s.target.CheckWall()
}

func (s *Spy) CheckExit() (gateway.ExitResult, error) {
	if err := s.record(CheckExit); err != nil {
		return gateway.ExitResult{}, err
	}
	return s.target.CheckExit()
}

// AgentState forwards to the target when it can report agent state.
func (s *Spy) AgentState() gateway.AgentState {
	if r, ok := s.target.(gateway.AgentReader); ok {
		return r.AgentState()
	}
	return gateway.AgentState{}
}
