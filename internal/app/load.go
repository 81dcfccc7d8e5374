package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/hcl"
	"github.com/specialistvlad/flowgrid/internal/world"
)

// loadProgram reads the program files named in the config.
func (a *App) loadProgram(ctx context.Context) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading program...", "paths", a.config.ProgramPaths)

	g, err := hcl.Load(ctx, a.config.ProgramPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	logger.Info("Program loaded successfully.", "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// loadLevel reads the level file, falling back to the built-in level.
func (a *App) loadLevel(ctx context.Context) (world.Level, error) {
	logger := ctxlog.FromContext(ctx)
	if a.config.LevelPath == "" {
		logger.Debug("No level file given, using the built-in level.")
		return world.DefaultLevel(), nil
	}

	lvl, err := world.LoadLevel(a.config.LevelPath)
	if err != nil {
		return world.Level{}, err
	}
	logger.Debug("Level loaded.", "name", lvl.Name, "grid_size", lvl.GridSize, "walls", len(lvl.Walls))
	return lvl, nil
}
