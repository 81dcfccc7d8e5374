package world

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/flowgrid/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T, opts ...Option) *World {
	t.Helper()
	w, err := New(DefaultLevel(), opts...)
	require.NoError(t, err)
	return w
}

func TestWorld_Move(t *testing.T) {
	t.Parallel()

	t.Run("free cell moves the agent", func(t *testing.T) {
		w := newDefault(t)

		res, err := w.Move(1)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, gateway.Position{X: 3, Y: 2}, res.Position)
		assert.Equal(t, gateway.East, res.Direction)
		assert.Equal(t, res.Position, w.AgentState().Position)
	})

	t.Run("wall blocks and leaves position unchanged", func(t *testing.T) {
		w := newDefault(t)
		_, err := w.Turn(gateway.Right) // face south, wall at (2,3)
		require.NoError(t, err)

		res, err := w.Move(1)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, gateway.Position{X: 2, Y: 2}, res.Position)
		assert.Equal(t, gateway.Position{X: 2, Y: 2}, w.AgentState().Position)
	})

	t.Run("grid edge blocks", func(t *testing.T) {
		lvl := DefaultLevel()
		lvl.Walls = nil
		lvl.Start = Start{Position: gateway.Position{X: 9, Y: 0}, Direction: gateway.East}
		w, err := New(lvl)
		require.NoError(t, err)

		res, err := w.Move(1)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, gateway.Position{X: 9, Y: 0}, w.AgentState().Position)
	})

	t.Run("multi-step move cannot pass through walls", func(t *testing.T) {
		w := newDefault(t)
		// (3,2) is free, (5,2) is a wall, so a 4-step move east is blocked.
		res, err := w.Move(4)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, gateway.Position{X: 2, Y: 2}, w.AgentState().Position)
	})

	t.Run("negative steps are rejected", func(t *testing.T) {
		w := newDefault(t)
		_, err := w.Move(-1)
		require.ErrorContains(t, err, "must not be negative")
	})
}

func TestWorld_ChecksAndTurns(t *testing.T) {
	t.Parallel()

	w := newDefault(t)

	wall, err := w.CheckWall()
	require.NoError(t, err)
	assert.False(t, wall.WallExists)
	assert.Nil(t, wall.ObstaclePosition)

	turn, err := w.Turn(gateway.Left)
	require.NoError(t, err)
	assert.Equal(t, gateway.East, turn.PreviousDirection)
	assert.Equal(t, gateway.North, turn.NewDirection)
	assert.Equal(t, turn.NewDirection, turn.Direction)

	_, err = w.Turn(gateway.Left) // west, wall at (1,2)
	require.NoError(t, err)
	wall, err = w.CheckWall()
	require.NoError(t, err)
	assert.True(t, wall.WallExists)
	require.NotNil(t, wall.ObstaclePosition)
	assert.Equal(t, gateway.Position{X: 1, Y: 2}, *wall.ObstaclePosition)

	exit, err := w.CheckExit()
	require.NoError(t, err)
	assert.False(t, exit.IsReached)
	assert.Equal(t, gateway.Position{X: 7, Y: 7}, exit.ExitPosition)

	_, err = w.Turn(gateway.Side("around"))
	require.Error(t, err)
}

func TestWorld_ExitReached(t *testing.T) {
	t.Parallel()

	lvl := DefaultLevel()
	lvl.Exit = gateway.Position{X: 3, Y: 2}
	w, err := New(lvl)
	require.NoError(t, err)

	_, err = w.Move(1)
	require.NoError(t, err)
	exit, err := w.CheckExit()
	require.NoError(t, err)
	assert.True(t, exit.IsReached)
}

func TestWorld_JumpLandsAfterDuration(t *testing.T) {
	t.Parallel()

	w := newDefault(t, WithJumpDuration(10*time.Millisecond))

	res, err := w.Jump()
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Height)
	assert.True(t, w.AgentState().IsJumping)

	assert.Eventually(t, func() bool { return !w.AgentState().IsJumping }, time.Second, 5*time.Millisecond)
}

func TestWorld_ObserversAndReset(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	w := newDefault(t, WithJumpDuration(0))
	other := newDefault(t)

	var mu sync.Mutex
	var actions []string
	unsubscribe := w.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		actions = append(actions, ev.Action)
	})
	other.Subscribe(func(Event) { t.Error("events must not leak between worlds") })

	// --- Act ---
	_, _ = w.Move(1)
	_, _ = w.Jump()
	w.Reset()
	unsubscribe()
	_, _ = w.Move(1)

	// --- Assert ---
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"move", "jump", "reset"}, actions)
	assert.Equal(t, gateway.Position{X: 3, Y: 2}, w.AgentState().Position, "move after unsubscribe still applies")

	w.Reset()
	state := w.AgentState()
	assert.Equal(t, gateway.AgentState{Position: gateway.Position{X: 2, Y: 2}, Direction: gateway.East}, state)
}

func TestWorld_Render(t *testing.T) {
	t.Parallel()

	lvl := Level{
		GridSize: 3,
		Walls:    []gateway.Position{{X: 1, Y: 1}},
		Exit:     gateway.Position{X: 2, Y: 2},
		Start:    Start{Position: gateway.Position{X: 0, Y: 0}, Direction: gateway.South},
	}
	w, err := New(lvl)
	require.NoError(t, err)

	assert.Equal(t, "v..\n.#.\n..E\n", w.Render())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	t.Run("partial documents keep defaults", func(t *testing.T) {
		lvl, err := ParseLevel([]byte("name: corridor\nexit: {x: 9, y: 2}\n"))
		require.NoError(t, err)
		assert.Equal(t, "corridor", lvl.Name)
		assert.Equal(t, gateway.Position{X: 9, Y: 2}, lvl.Exit)
		assert.Equal(t, 10, lvl.GridSize)
		assert.Equal(t, DefaultLevel().Start, lvl.Start)
	})

	t.Run("validation errors are joined", func(t *testing.T) {
		_, err := ParseLevel([]byte(`
grid_size: 4
exit: {x: 7, y: 7}
walls:
  - {x: 2, y: 2}
start:
  direction: up
`))
		require.Error(t, err)
		assert.ErrorContains(t, err, "exit position (7,7) is outside the grid")
		assert.ErrorContains(t, err, "start position (2,2) is inside a wall")
		assert.ErrorContains(t, err, "invalid direction")
	})

	t.Run("sized documents start without walls", func(t *testing.T) {
		lvl, err := ParseLevel([]byte(`
grid_size: 3
exit: {x: 2, y: 2}
start:
  position: {x: 0, y: 0}
`))
		require.NoError(t, err)
		assert.Equal(t, 3, lvl.GridSize)
		assert.Empty(t, lvl.Walls)
	})

	t.Run("sized documents keep their own walls", func(t *testing.T) {
		lvl, err := ParseLevel([]byte(`
grid_size: 3
exit: {x: 2, y: 2}
walls:
  - {x: 1, y: 1}
start:
  position: {x: 0, y: 0}
`))
		require.NoError(t, err)
		assert.Equal(t, []gateway.Position{{X: 1, Y: 1}}, lvl.Walls)
	})

	t.Run("exit inside a wall", func(t *testing.T) {
		_, err := ParseLevel([]byte(`
grid_size: 3
exit: {x: 1, y: 1}
walls:
  - {x: 1, y: 1}
start:
  position: {x: 0, y: 0}
`))
		assert.ErrorContains(t, err, "exit position (1,1) is inside a wall")
	})

	t.Run("load from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "level.yaml")
		require.NoError(t, os.WriteFile(path, []byte("grid_size: 12\n"), 0o600))

		lvl, err := LoadLevel(path)
		require.NoError(t, err)
		assert.Equal(t, 12, lvl.GridSize)

		_, err = LoadLevel(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read level file")
	})
}
