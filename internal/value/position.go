package value

import "github.com/zclconf/go-cty/cty"

// PositionType is the object type of grid coordinates on Data ports.
var PositionType = cty.Object(map[string]cty.Type{
	"x": cty.Number,
	"y": cty.Number,
})

// Position builds a position object.
func Position(x, y int) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"x": cty.NumberIntVal(int64(x)),
		"y": cty.NumberIntVal(int64(y)),
	})
}

// NoPosition is the null position, used when there is no obstacle.
func NoPosition() cty.Value {
	return cty.NullVal(PositionType)
}
