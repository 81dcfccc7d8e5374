package engine

import (
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/behavior"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// evaluation resolves data inputs for a single step. It lives exactly as
// long as the step, so its memo never leaks values across steps.
type evaluation struct {
	plan *plan
	env  behavior.Env

	memo     map[string]map[string]cty.Value
	recorded map[string]bool
}

func newEvaluation(p *plan, env behavior.Env) *evaluation {
	return &evaluation{
		plan:     p,
		env:      env,
		memo:     make(map[string]map[string]cty.Value),
		recorded: make(map[string]bool),
	}
}

// execute resolves the inputs of the node under the cursor and runs it.
func (ev *evaluation) execute(id string) (behavior.Result, error) {
	n := ev.plan.nodes[id]
	in, err := ev.inputs(n)
	if err != nil {
		return behavior.Result{}, err
	}
	res, err := behavior.Run(n, in, ev.env)
	if err != nil {
		return behavior.Result{}, nodeErr(id, err)
	}
	return res, nil
}

// inputs pulls every connected data input of n and coerces it to the port type.
func (ev *evaluation) inputs(n graph.Node) (behavior.Inputs, error) {
	in := behavior.Inputs{}
	for _, port := range ev.plan.schemas[n.ID].Ports {
		if port.Kind != graph.Data || port.Direction != graph.In {
			continue
		}
		edge, ok := ev.plan.dataIn[portKey{n.ID, port.Name}]
		if !ok {
			continue
		}
		v, err := ev.pull(edge.SourceNode, edge.SourcePort)
		if err != nil {
			return nil, err
		}
		v, err = value.Coerce(v, port.Type)
		if err != nil {
			return nil, nodeErr(n.ID, fmt.Errorf("input '%s': %w", port.Name, err))
		}
		if !ev.recorded[edge.ID] {
			ev.recorded[edge.ID] = true
			ev.env.Ctx.RecordTransfer(execctx.Transfer{EdgeID: edge.ID, Value: v})
		}
		in[port.Name] = v
	}
	return in, nil
}

// pull returns the value a node currently exposes on one of its outputs.
func (ev *evaluation) pull(id, port string) (cty.Value, error) {
	outs, err := ev.outputsOf(id)
	if err != nil {
		return cty.NilVal, err
	}
	v, ok := outs[port]
	if !ok {
		return cty.NilVal, nodeErr(id, fmt.Errorf("no value on output '%s'", port))
	}
	return v, nil
}

// outputsOf evaluates a node for a pull. Value and passive nodes are run.
// Flow nodes serve the outputs of their last execution; a world-action node
// that has not executed yet is run on demand without moving the cursor.
func (ev *evaluation) outputsOf(id string) (map[string]cty.Value, error) {
	if outs, ok := ev.memo[id]; ok {
		return outs, nil
	}

	n := ev.plan.nodes[id]
	s := ev.plan.schemas[id]
	var outs map[string]cty.Value
	switch {
	case !s.IsFlowNode():
		res, err := ev.execute(id)
		if err != nil {
			return nil, err
		}
		outs = res.Outputs
	default:
		if stored, ok := ev.env.Ctx.Outputs(id); ok {
			outs = stored
			break
		}
		if !s.WorldAction {
			return nil, nodeErr(id, fmt.Errorf("%w: %s outputs are only available after it runs", ErrNotExecuted, n.Type))
		}
		res, err := ev.execute(id)
		if err != nil {
			return nil, err
		}
		outs = res.Outputs
	}

	ev.memo[id] = outs
	return outs, nil
}
