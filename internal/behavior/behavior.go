package behavior

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/gateway"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoGateway is returned when a world-action node runs without a gateway.
var ErrNoGateway = errors.New("no gateway configured")

// Env is everything a behavior may touch while it runs.
type Env struct {
	Ctx     *execctx.Context
	Gateway gateway.Gateway
}

// Inputs are the resolved Data inputs of a node keyed by port name. Ports
// without an incoming edge are absent.
type Inputs map[string]cty.Value

// Result is what one node execution produced.
type Result struct {
	Outputs map[string]cty.Value
	// Next names the flow output to follow. It is empty for value and passive nodes.
	Next string
}

// Run executes the behavior of n.
func Run(n graph.Node, in Inputs, env Env) (Result, error) {
	switch n.Type {
	case graph.TypeVariable:
		return runVariable(n, env)
	case graph.TypeMath:
		return runMath(n, in)
	case graph.TypeLogical:
		return runLogical(n, in)
	case graph.TypeBooleanLogic:
		return runBooleanLogic(n, in)
	case graph.TypeAssignment:
		return runAssignment(n, in, env)
	case graph.TypePrint:
		return runPrint(n, in, env)
	case graph.TypeMove:
		return runMove(n, in, env)
	case graph.TypeTurn:
		return runTurn(n, in, env)
	case graph.TypeJump:
		return runJump(env)
	case graph.TypeWallAhead:
		return runWallAhead(env)
	case graph.TypeExitReached:
		return runExitReached(env)
	case graph.TypeIf:
		return runIf(n, in, env)
	case graph.TypeLoop:
		return runLoop(n, in, env)
	case graph.TypePlayer:
		return runPlayer(env)
	}
	return Result{}, fmt.Errorf("%w: %s", graph.ErrUnknownNodeType, n.Type)
}

// Declare returns the variable a variable node introduces and its initial
// value. The engine seeds the context with it on initialize.
func Declare(n graph.Node) (string, cty.Value, error) {
	name := VariableName(n)
	initial, ok := n.ConfigValue("initial")
	if !ok {
		initial, ok = n.ConfigValue("value")
	}

	typeName := n.ConfigString("type", "")
	if typeName == "" {
		if !ok {
			return name, cty.NullVal(cty.DynamicPseudoType), nil
		}
		return name, initial, nil
	}

	dt, err := graph.ParseDataType(typeName)
	if err != nil {
		return "", cty.NilVal, err
	}
	if !ok {
		return name, zeroValue(dt), nil
	}
	v, err := value.Coerce(initial, dt)
	if err != nil {
		return "", cty.NilVal, fmt.Errorf("initial value of %q: %w", name, err)
	}
	return name, v, nil
}

// VariableName is the variable a variable node reads, defaulting to the node ID.
func VariableName(n graph.Node) string {
	return n.ConfigString("name", n.ID)
}

// arg resolves a Data input, falling back to the same-named config entry.
func arg(n graph.Node, in Inputs, port string) (cty.Value, bool) {
	if v, ok := in[port]; ok {
		return v, true
	}
	return n.ConfigValue(port)
}

// required is arg with a null placeholder, so coercion reports it as missing.
func required(n graph.Node, in Inputs, port string) cty.Value {
	if v, ok := arg(n, in, port); ok {
		return v
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

func outputs(kv ...any) map[string]cty.Value {
	out := make(map[string]cty.Value, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1].(cty.Value)
	}
	return out
}

func pos(p gateway.Position) cty.Value { return value.Position(p.X, p.Y) }

func zeroValue(dt graph.DataType) cty.Value {
	switch dt {
	case graph.Number:
		return cty.Zero
	case graph.String:
		return cty.StringVal("")
	case graph.Boolean:
		return cty.False
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

func runVariable(n graph.Node, env Env) (Result, error) {
	name := VariableName(n)
	v, ok := env.Ctx.Variable(name)
	if !ok {
		return Result{}, fmt.Errorf("variable %q is not declared", name)
	}
	return Result{Outputs: outputs("value", v)}, nil
}

func runMath(n graph.Node, in Inputs) (Result, error) {
	op := n.ConfigString("operation", "add")
	v, err := value.Arith(op, required(n, in, "a"), required(n, in, "b"))
	if err != nil {
		return Result{}, err
	}
	return Result{Outputs: outputs("result", v)}, nil
}

func runLogical(n graph.Node, in Inputs) (Result, error) {
	op := n.ConfigString("operation", "equal")
	ok, err := value.Compare(op, required(n, in, "left"), required(n, in, "right"))
	if err != nil {
		return Result{}, err
	}
	return Result{Outputs: outputs("result", cty.BoolVal(ok))}, nil
}

func runBooleanLogic(n graph.Node, in Inputs) (Result, error) {
	op := n.ConfigString("operation", "and")
	ok, err := value.Logic(op, required(n, in, "left"), required(n, in, "right"))
	if err != nil {
		return Result{}, err
	}
	return Result{Outputs: outputs("result", cty.BoolVal(ok))}, nil
}

func runAssignment(n graph.Node, in Inputs, env Env) (Result, error) {
	name := n.ConfigString("variable", n.ConfigString("name", ""))
	if name == "" {
		return Result{}, errors.New("assignment target variable is not configured")
	}
	v, ok := arg(n, in, "value")
	if !ok {
		return Result{}, fmt.Errorf("nothing to assign to %q: %w", name, value.ErrMissing)
	}

	target := graph.Any
	if typeName := n.ConfigString("type", ""); typeName != "" {
		dt, err := graph.ParseDataType(typeName)
		if err != nil {
			return Result{}, err
		}
		target = dt
	} else if cur, exists := env.Ctx.Variable(name); exists && !cur.IsNull() {
		target = dataTypeOf(cur.Type())
	}

	v, err := value.Coerce(v, target)
	if err != nil {
		return Result{}, fmt.Errorf("cannot assign to %q: %w", name, err)
	}
	env.Ctx.SetVariable(name, v)
	env.Ctx.Log(execctx.Debug, fmt.Sprintf("%s = %s", name, value.Format(v)))
	return Result{Outputs: outputs("result", v), Next: PortFlow}, nil
}

func dataTypeOf(t cty.Type) graph.DataType {
	switch {
	case t.Equals(cty.Number):
		return graph.Number
	case t.Equals(cty.String):
		return graph.String
	case t.Equals(cty.Bool):
		return graph.Boolean
	}
	return graph.Any
}

func runPrint(n graph.Node, in Inputs, env Env) (Result, error) {
	text := n.ConfigString("message", "")
	if v, ok := arg(n, in, "value"); ok {
		text = value.Format(v)
	}
	env.Ctx.Log(execctx.Output, text)
	return Result{Outputs: outputs(), Next: PortFlow}, nil
}

func runMove(n graph.Node, in Inputs, env Env) (Result, error) {
	if env.Gateway == nil {
		return Result{}, ErrNoGateway
	}
	steps := 1
	if v, ok := arg(n, in, "steps"); ok {
		s, err := value.Int(v)
		if err != nil {
			return Result{}, fmt.Errorf("steps: %w", err)
		}
		steps = s
	}

	res, err := env.Gateway.Move(steps)
	if err != nil {
		return Result{}, fmt.Errorf("move failed: %w", err)
	}
	if res.Success {
		env.Ctx.Log(execctx.Output, fmt.Sprintf("Moved %d step(s) to %s", res.Steps, res.Position))
	} else {
		env.Ctx.Log(execctx.Output, fmt.Sprintf("Path blocked, staying at %s", res.Position))
	}
	return Result{
		Outputs: outputs(
			"success", cty.BoolVal(res.Success),
			"steps", cty.NumberIntVal(int64(res.Steps)),
			"position", pos(res.Position),
			"direction", cty.StringVal(string(res.Direction)),
		),
		Next: PortFlow,
	}, nil
}

func runTurn(n graph.Node, in Inputs, env Env) (Result, error) {
	if env.Gateway == nil {
		return Result{}, ErrNoGateway
	}
	sideName := string(gateway.Right)
	if v, ok := arg(n, in, "direction"); ok {
		s, err := value.Str(v)
		if err != nil {
			return Result{}, fmt.Errorf("direction: %w", err)
		}
		sideName = s
	}
	side, err := gateway.ParseSide(sideName)
	if err != nil {
		return Result{}, err
	}

	res, err := env.Gateway.Turn(side)
	if err != nil {
		return Result{}, fmt.Errorf("turn failed: %w", err)
	}
	env.Ctx.Log(execctx.Output, fmt.Sprintf("Turned %s, now facing %s", side, res.NewDirection))
	return Result{
		Outputs: outputs(
			"success", cty.BoolVal(res.Success),
			"direction", cty.StringVal(string(res.Direction)),
			"previousDirection", cty.StringVal(string(res.PreviousDirection)),
			"newDirection", cty.StringVal(string(res.NewDirection)),
		),
		Next: PortFlow,
	}, nil
}

func runJump(env Env) (Result, error) {
	if env.Gateway == nil {
		return Result{}, ErrNoGateway
	}
	res, err := env.Gateway.Jump()
	if err != nil {
		return Result{}, fmt.Errorf("jump failed: %w", err)
	}
	env.Ctx.Log(execctx.Output, fmt.Sprintf("Jumped at %s", res.Position))
	return Result{
		Outputs: outputs(
			"success", cty.BoolVal(res.Success),
			"height", cty.NumberIntVal(int64(res.Height)),
			"position", pos(res.Position),
		),
		Next: PortFlow,
	}, nil
}

func runWallAhead(env Env) (Result, error) {
	if env.Gateway == nil {
		return Result{}, ErrNoGateway
	}
	res, err := env.Gateway.CheckWall()
	if err != nil {
		return Result{}, fmt.Errorf("wall check failed: %w", err)
	}
	obstacle := value.NoPosition()
	if res.ObstaclePosition != nil {
		obstacle = pos(*res.ObstaclePosition)
		env.Ctx.Log(execctx.Output, fmt.Sprintf("Wall ahead at %s", *res.ObstaclePosition))
	} else {
		env.Ctx.Log(execctx.Output, "Path ahead is clear")
	}
	return Result{
		Outputs: outputs(
			"wallExists", cty.BoolVal(res.WallExists),
			"position", pos(res.Position),
			"direction", cty.StringVal(string(res.Direction)),
			"obstaclePosition", obstacle,
		),
		Next: PortFlow,
	}, nil
}

func runExitReached(env Env) (Result, error) {
	if env.Gateway == nil {
		return Result{}, ErrNoGateway
	}
	res, err := env.Gateway.CheckExit()
	if err != nil {
		return Result{}, fmt.Errorf("exit check failed: %w", err)
	}
	if res.IsReached {
		env.Ctx.Log(execctx.Output, "Exit reached!")
	} else {
		env.Ctx.Log(execctx.Output, fmt.Sprintf("Exit not reached, agent at %s", res.Position))
	}
	return Result{
		Outputs: outputs(
			"isReached", cty.BoolVal(res.IsReached),
			"position", pos(res.Position),
			"exitPosition", pos(res.ExitPosition),
		),
		Next: PortFlow,
	}, nil
}

func runIf(n graph.Node, in Inputs, env Env) (Result, error) {
	cond, err := value.Bool(required(n, in, "condition"))
	if err != nil {
		return Result{}, fmt.Errorf("condition: %w", err)
	}
	next := PortFalse
	if cond {
		next = PortTrue
	}
	env.Ctx.Log(execctx.Debug, fmt.Sprintf("Condition is %t", cond))
	return Result{Outputs: outputs(), Next: next}, nil
}

func runLoop(n graph.Node, in Inputs, env Env) (Result, error) {
	count, err := value.Int(required(n, in, "count"))
	if err != nil {
		return Result{}, fmt.Errorf("count: %w", err)
	}
	count = max(count, 0)

	first, step := 0, 1
	if v, ok := n.ConfigValue("first"); ok {
		if first, err = value.Int(v); err != nil {
			return Result{}, fmt.Errorf("first: %w", err)
		}
	}
	if v, ok := n.ConfigValue("step"); ok {
		if step, err = value.Int(v); err != nil {
			return Result{}, fmt.Errorf("step: %w", err)
		}
	}

	iteration := env.Ctx.LoopIteration(n.ID)
	if iteration < count {
		env.Ctx.SetLoopIteration(n.ID, iteration+1)
		env.Ctx.Log(execctx.Debug, fmt.Sprintf("Loop iteration %d/%d", iteration+1, count))
		return Result{
			Outputs: outputs("index", cty.NumberIntVal(int64(first+iteration*step))),
			Next:    PortBody,
		}, nil
	}

	env.Ctx.SetLoopIteration(n.ID, 0)
	env.Ctx.Log(execctx.Debug, fmt.Sprintf("Loop finished after %d iteration(s)", count))
	return Result{
		Outputs: outputs("index", cty.NumberIntVal(int64(first+count*step))),
		Next:    PortDone,
	}, nil
}

func runPlayer(env Env) (Result, error) {
	reader, ok := env.Gateway.(gateway.AgentReader)
	if !ok {
		return Result{}, errors.New("gateway does not expose agent state")
	}
	s := reader.AgentState()
	return Result{Outputs: outputs(
		"position", pos(s.Position),
		"direction", cty.StringVal(string(s.Direction)),
		"isJumping", cty.BoolVal(s.IsJumping),
	)}, nil
}
