// Package testutil holds helpers shared by tests across packages: a log sink
// and a harness that runs HCL programs against a grid world.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/hcl"
	"github.com/specialistvlad/flowgrid/internal/world"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcome of a program run.
type HarnessResult struct {
	Run       engine.RunResult
	World     *world.World
	Graph     *graph.Graph
	LogOutput string
}

// Output returns the text of every output console line.
func (r *HarnessResult) Output() []string {
	var lines []string
	for _, c := range r.Run.Context.Console {
		if c.Kind == execctx.Output {
			lines = append(lines, c.Text)
		}
	}
	return lines
}

// RunProgram parses src, runs it to the end on a world built from lvl and
// returns the result. The program must be valid.
func RunProgram(t *testing.T, src string, lvl world.Level, opts ...engine.Option) *HarnessResult {
	t.Helper()

	g, err := hcl.Parse([]byte(src), t.Name()+".hcl")
	require.NoError(t, err)
	require.NoError(t, engine.Validate(g))

	w, err := world.New(lvl, world.WithJumpDuration(0))
	require.NoError(t, err)

	logs := &SafeBuffer{}
	DumpOnCleanup(t, logs)
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := engine.New(g, w, append([]engine.Option{engine.WithLogger(logger)}, opts...)...)
	require.True(t, e.Initialize(), "initialize: %v", e.InitError())

	return &HarnessResult{
		Run:       e.RunFull(),
		World:     w,
		Graph:     g,
		LogOutput: logs.String(),
	}
}

// OpenLevel is a level without walls, useful when only the program matters.
func OpenLevel(size int) world.Level {
	lvl := world.DefaultLevel()
	lvl.Name = "open"
	lvl.GridSize = size
	lvl.Walls = nil
	lvl.Exit.X, lvl.Exit.Y = size-1, size-1
	return lvl
}
