package publish

import (
	"encoding/json"
	"slices"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// TransferPayload is one edge animation for the visualizer.
type TransferPayload struct {
	EdgeID     string          `json:"edgeId"`
	Value      json.RawMessage `json:"value,omitempty"`
	IsFlowEdge bool            `json:"isFlowEdge"`
}

// StepPayload is emitted after every step.
type StepPayload struct {
	RunID       string                     `json:"runId"`
	Step        int                        `json:"step"`
	NodeID      string                     `json:"nodeId"`
	NextNodeID  string                     `json:"nextNodeId,omitempty"`
	Outputs     map[string]json.RawMessage `json:"outputs,omitempty"`
	Variables   map[string]json.RawMessage `json:"variables,omitempty"`
	Transfers   []TransferPayload          `json:"transfers"`
	Console     []execctx.ConsoleEntry     `json:"console"`
	IsComplete  bool                       `json:"isComplete"`
	Error       string                     `json:"error,omitempty"`
	ErrorNodeID string                     `json:"errorNodeId,omitempty"`
}

// RunPayload is emitted once a run ends.
type RunPayload struct {
	RunID         string   `json:"runId"`
	ExecutionPath []string `json:"executionPath"`
	Steps         int      `json:"steps"`
	Error         string   `json:"error,omitempty"`
	ErrorNodeID   string   `json:"errorNodeId,omitempty"`
}

// NewStepPayload converts a step result. Console lines are limited to the
// ones added since seen, so a visualizer can append without diffing.
func NewStepPayload(step engine.StepResult, seen int) (StepPayload, error) {
	p := StepPayload{
		RunID:       step.Context.RunID,
		Step:        step.Context.Steps,
		NodeID:      step.PreviousNodeID,
		NextNodeID:  step.CurrentNodeID,
		IsComplete:  step.IsComplete,
		ErrorNodeID: step.ErrorNodeID,
		Transfers:   make([]TransferPayload, 0, len(step.DataTransfers)),
	}
	if step.Err != nil {
		p.Error = step.Err.Error()
	}
	if seen < len(step.Context.Console) {
		p.Console = slices.Clone(step.Context.Console[seen:])
	} else {
		p.Console = []execctx.ConsoleEntry{}
	}

	var err error
	if p.Outputs, err = encodeValues(step.Outputs); err != nil {
		return StepPayload{}, err
	}
	if p.Variables, err = encodeValues(step.Context.Variables); err != nil {
		return StepPayload{}, err
	}
	for _, tr := range step.DataTransfers {
		tp := TransferPayload{EdgeID: tr.EdgeID, IsFlowEdge: tr.IsFlowEdge}
		if !tr.IsFlowEdge {
			if tp.Value, err = value.JSON(tr.Value); err != nil {
				return StepPayload{}, err
			}
		}
		p.Transfers = append(p.Transfers, tp)
	}
	return p, nil
}

// NewRunPayload converts a run result.
func NewRunPayload(run engine.RunResult) RunPayload {
	p := RunPayload{
		RunID:         run.Context.RunID,
		ExecutionPath: slices.Clone(run.ExecutionPath),
		Steps:         run.Steps,
		ErrorNodeID:   run.ErrorNodeID,
	}
	if run.Err != nil {
		p.Error = run.Err.Error()
	}
	return p
}

func encodeValues(in map[string]cty.Value) (map[string]json.RawMessage, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		b, err := value.JSON(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}
