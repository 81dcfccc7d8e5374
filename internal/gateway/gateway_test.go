package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirection_Turn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, South, East.Turn(Right))
	assert.Equal(t, West, South.Turn(Right))
	assert.Equal(t, North, West.Turn(Right))
	assert.Equal(t, East, North.Turn(Right))

	assert.Equal(t, North, East.Turn(Left))
	assert.Equal(t, West, North.Turn(Left))

	d := East
	for range 4 {
		d = d.Turn(Left)
	}
	assert.Equal(t, East, d, "four quarter turns return to the start")
}

func TestPosition_Add(t *testing.T) {
	t.Parallel()

	p := Position{X: 2, Y: 2}
	assert.Equal(t, Position{X: 4, Y: 2}, p.Add(East, 2))
	assert.Equal(t, Position{X: 2, Y: 1}, p.Add(North, 1))
	assert.Equal(t, Position{X: 2, Y: 5}, p.Add(South, 3))
	assert.Equal(t, Position{X: 1, Y: 2}, p.Add(West, 1))
}

func TestParse(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("west")
	require.NoError(t, err)
	assert.Equal(t, West, d)

	_, err = ParseDirection("up")
	assert.ErrorContains(t, err, "invalid direction")

	s, err := ParseSide("left")
	require.NoError(t, err)
	assert.Equal(t, Left, s)

	_, err = ParseSide("back")
	assert.ErrorContains(t, err, "invalid turn direction")
}
