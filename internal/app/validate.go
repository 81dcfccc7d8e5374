package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/engine"
)

// Validate loads the program and checks that it can run, without executing it.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	g, err := a.loadProgram(ctx)
	if err != nil {
		return err
	}
	if err := engine.Validate(g); err != nil {
		a.logger.Debug("Program rejected.", "error", err)
		return fmt.Errorf("invalid program: %w", err)
	}
	if _, err := a.loadLevel(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.outW, "Program is valid: %d nodes, %d edges.\n", len(g.Nodes), len(g.Edges))
	return nil
}
