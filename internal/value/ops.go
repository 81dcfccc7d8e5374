package value

import (
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
)

// Arith applies a math operation to two values coerced to numbers.
// Accepted operations: add, subtract, multiply, divide, modulo (and their
// short forms sub, mul, div, mod).
func Arith(op string, a, b cty.Value) (cty.Value, error) {
	x, err := Coerce(a, graph.Number)
	if err != nil {
		return cty.NilVal, fmt.Errorf("operand a: %w", err)
	}
	y, err := Coerce(b, graph.Number)
	if err != nil {
		return cty.NilVal, fmt.Errorf("operand b: %w", err)
	}

	switch op {
	case "add", "+":
		return x.Add(y), nil
	case "subtract", "sub", "-":
		return x.Subtract(y), nil
	case "multiply", "mul", "*":
		return x.Multiply(y), nil
	case "divide", "div", "/":
		if y.AsBigFloat().Sign() == 0 {
			return cty.NilVal, ErrDivisionByZero
		}
		return x.Divide(y), nil
	case "modulo", "mod", "%":
		if y.AsBigFloat().Sign() == 0 {
			return cty.NilVal, ErrDivisionByZero
		}
		return x.Modulo(y), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported math operation %q", op)
}

// Compare evaluates a comparison operation. Loose equality converts the right
// operand to the left operand's type first; strict equality also requires the
// types to match. Ordering compares strings lexically when both sides are
// strings and numerically otherwise.
func Compare(op string, l, r cty.Value) (bool, error) {
	switch op {
	case "equal", "==":
		return looseEqual(l, r), nil
	case "notEqual", "!=":
		return !looseEqual(l, r), nil
	case "strictEqual", "===":
		return strictEqual(l, r), nil
	case "strictNotEqual", "!==":
		return !strictEqual(l, r), nil
	case "greater", ">", "greaterEqual", ">=", "less", "<", "lessEqual", "<=":
		c, err := order(l, r)
		if err != nil {
			return false, err
		}
		switch op {
		case "greater", ">":
			return c > 0, nil
		case "greaterEqual", ">=":
			return c >= 0, nil
		case "less", "<":
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	}
	return false, fmt.Errorf("unsupported comparison %q", op)
}

// Logic applies and/or to two values coerced to booleans.
func Logic(op string, l, r cty.Value) (bool, error) {
	a, err := Bool(l)
	if err != nil {
		return false, fmt.Errorf("left operand: %w", err)
	}
	b, err := Bool(r)
	if err != nil {
		return false, fmt.Errorf("right operand: %w", err)
	}
	switch op {
	case "and", "&&":
		return a && b, nil
	case "or", "||":
		return a || b, nil
	}
	return false, fmt.Errorf("unsupported boolean operation %q", op)
}

func isNull(v cty.Value) bool { return v == cty.NilVal || v.IsNull() }

func strictEqual(l, r cty.Value) bool {
	if isNull(l) || isNull(r) {
		return isNull(l) && isNull(r)
	}
	if !l.Type().Equals(r.Type()) || !l.IsWhollyKnown() || !r.IsWhollyKnown() {
		return false
	}
	return l.Equals(r).True()
}

func looseEqual(l, r cty.Value) bool {
	if isNull(l) || isNull(r) {
		return isNull(l) && isNull(r)
	}
	if strictEqual(l, r) {
		return true
	}
	var target graph.DataType
	switch l.Type() {
	case cty.Number:
		target = graph.Number
	case cty.String:
		target = graph.String
	case cty.Bool:
		target = graph.Boolean
	default:
		return false
	}
	conv, err := Coerce(r, target)
	if err != nil {
		return false
	}
	return strictEqual(l, conv)
}

func order(l, r cty.Value) (int, error) {
	if !isNull(l) && !isNull(r) && l.Type() == cty.String && r.Type() == cty.String {
		a, b := l.AsString(), r.AsString()
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	}
	x, err := Coerce(l, graph.Number)
	if err != nil {
		return 0, fmt.Errorf("left operand: %w", err)
	}
	y, err := Coerce(r, graph.Number)
	if err != nil {
		return 0, fmt.Errorf("right operand: %w", err)
	}
	return x.AsBigFloat().Cmp(y.AsBigFloat()), nil
}
