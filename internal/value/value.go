// Package value is the data plane of the engine. Every value carried on a Data
// edge is a cty.Value; this package maps port types onto cty types, applies
// the coercion table, and implements the arithmetic, comparison and printing
// rules used by the value nodes.
package value

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	// ErrMissing is returned when a typed port receives a null value.
	ErrMissing = errors.New("value is missing")
	// ErrDivisionByZero is returned by divide and modulo with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
)

// CtyType maps a port DataType onto the cty type it carries.
func CtyType(t graph.DataType) cty.Type {
	switch t {
	case graph.Number:
		return cty.Number
	case graph.String:
		return cty.String
	case graph.Boolean:
		return cty.Bool
	default:
		return cty.DynamicPseudoType
	}
}

// Coerce converts v to the type of a port. Beyond the standard cty
// conversions (numeric strings to numbers, "true"/"false" to booleans, any
// primitive to a string) it maps booleans to 1/0 and numbers to "non-zero".
func Coerce(v cty.Value, to graph.DataType) (cty.Value, error) {
	if v == cty.NilVal || v.IsNull() {
		if to == graph.Any {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return cty.NilVal, fmt.Errorf("%w: expected %s", ErrMissing, to)
	}
	if !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("value of type %s is not known", v.Type().FriendlyName())
	}

	switch {
	case to == graph.Any:
		return v, nil
	case to == graph.Number && v.Type() == cty.Bool:
		if v.True() {
			return cty.NumberIntVal(1), nil
		}
		return cty.NumberIntVal(0), nil
	case to == graph.Boolean && v.Type() == cty.Number:
		return cty.BoolVal(v.AsBigFloat().Sign() != 0), nil
	}

	out, err := convert.Convert(v, CtyType(to))
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot use %s as %s: %w", v.Type().FriendlyName(), to, err)
	}
	return out, nil
}

// Int converts a value to a Go int after coercing it to a number. Fractional
// numbers are rejected.
func Int(v cty.Value) (int, error) {
	n, err := Coerce(v, graph.Number)
	if err != nil {
		return 0, err
	}
	var out int
	if err := gocty.FromCtyValue(n, &out); err != nil {
		return 0, fmt.Errorf("expected a whole number: %w", err)
	}
	return out, nil
}

// Bool coerces a value to a Go bool.
func Bool(v cty.Value) (bool, error) {
	b, err := Coerce(v, graph.Boolean)
	if err != nil {
		return false, err
	}
	return b.True(), nil
}

// Str coerces a value to a Go string.
func Str(v cty.Value) (string, error) {
	s, err := Coerce(v, graph.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

// Format renders a value for console output. Strings are printed raw, null
// as "null", and collections or objects as JSON.
func Format(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() {
		return "null"
	}
	if !v.IsKnown() {
		return "(unknown)"
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		return strconv.FormatBool(v.True())
	case cty.Number:
		return formatNumber(v.AsBigFloat())
	}
	raw, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
	if err != nil {
		return v.GoString()
	}
	return string(raw)
}

// JSON renders any value as a JSON document, used by publishers.
func JSON(v cty.Value) ([]byte, error) {
	if v == cty.NilVal {
		return []byte("null"), nil
	}
	return ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
}

func formatNumber(f *big.Float) string {
	if f.IsInt() {
		return f.Text('f', 0)
	}
	fl, _ := f.Float64()
	return strconv.FormatFloat(fl, 'f', -1, 64)
}
