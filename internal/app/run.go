package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/driver"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/metrics"
	"github.com/specialistvlad/flowgrid/internal/publish"
	"github.com/specialistvlad/flowgrid/internal/report"
	"github.com/specialistvlad/flowgrid/internal/world"
	"golang.org/x/sync/errgroup"
)

// ErrProgramFailed is returned by Run when the program stopped on an error.
var ErrProgramFailed = errors.New("program failed")

// Run loads the program and the level, plays the program to the end and
// prints a summary of the run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	g, err := a.loadProgram(ctx)
	if err != nil {
		return err
	}
	if err := engine.Validate(g); err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}
	lvl, err := a.loadLevel(ctx)
	if err != nil {
		return err
	}
	w, err := world.New(lvl)
	if err != nil {
		return fmt.Errorf("failed to create world: %w", err)
	}
	mode, _ := report.ParseMode(a.config.ReportFormat)

	e := engine.New(g, w,
		engine.WithLogger(a.logger),
		engine.WithMaxSteps(a.config.MaxSteps),
		engine.WithDebug(a.config.Debug),
	)

	rec := metrics.New(a.registry, g)
	defer w.Subscribe(rec.ObserveWorld)()
	opts := []driver.Option{
		driver.WithMaxSteps(a.config.MaxSteps),
		driver.WithListener(rec),
	}
	if a.config.Play {
		opts = append(opts,
			driver.WithInterval(a.config.PlayInterval),
			driver.WithListener(report.NewLive(a.outW, a.config.Debug, w.Render)),
		)
	}

	if a.config.VisualizerURL != "" {
		pub, err := publish.Dial(ctx, publish.Config{
			URL:                a.config.VisualizerURL,
			Namespace:          a.config.VisualizerNamespace,
			InsecureSkipVerify: a.config.VisualizerInsecure,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to visualizer: %w", err)
		}
		defer pub.Close()
		defer w.Subscribe(pub.ObserveWorld(ctx))()
		opts = append(opts, driver.WithListener(pub))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, gctx := errgroup.WithContext(ctx)
	if err := a.startHealthCheckServer(gctx, grp); err != nil {
		return err
	}

	var run engine.RunResult
	grp.Go(func() error {
		defer cancel()
		a.logger.Info("🚀 Starting program.", "play", a.config.Play, "max_steps", a.config.MaxSteps)
		var err error
		run, err = driver.New(e, opts...).Play(gctx)
		return err
	})
	if err := grp.Wait(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	fmt.Fprint(a.outW, report.Summary(mode, run, g, a.config.Debug))
	if run.Err != nil {
		return fmt.Errorf("%w: %w", ErrProgramFailed, run.Err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
