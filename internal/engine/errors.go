package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveRun is returned by Step and RunFull when no run is in progress.
	ErrNoActiveRun = errors.New("no active run")
	// ErrStepLimitExceeded is returned by RunFull when the step cap is hit.
	ErrStepLimitExceeded = errors.New("step limit exceeded")
	// ErrRunActive is returned by UpdateGraph while a run is in progress.
	ErrRunActive = errors.New("cannot replace the graph while a run is active")
	// ErrNotExecuted is returned when a consumer pulls a flow node that has
	// not produced outputs yet and cannot be evaluated on demand.
	ErrNotExecuted = errors.New("node has not executed yet")
)

// Validation errors returned by Validate.
var (
	ErrNoEntry         = errors.New("no entry node")
	ErrMultipleEntries = errors.New("multiple entry nodes")
	ErrDataCycle       = errors.New("data edges form a cycle")
	ErrDanglingEdge    = errors.New("edge references a missing node or port")
	ErrPortKind        = errors.New("edge joins a flow port to a data port")
	ErrDuplicateID     = errors.New("duplicate id")
)

// NodeError attributes a runtime failure to the node that caused it.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s': %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// nodeErr wraps err unless it is already attributed to a node.
func nodeErr(id string, err error) error {
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{NodeID: id, Err: err}
}
