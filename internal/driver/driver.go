// Package driver plays a program to completion at a fixed pace, fanning every
// step out to listeners such as the console printer, the metrics recorder and
// the visualizer publisher.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"golang.org/x/time/rate"
)

// ErrInvalidProgram is returned by Play when the engine refuses to initialize.
var ErrInvalidProgram = errors.New("program cannot run")

// Listener observes a run. Calls happen on the goroutine running Play, in
// step order, and must not block for long.
type Listener interface {
	StepCompleted(ctx context.Context, step engine.StepResult)
	RunFinished(ctx context.Context, run engine.RunResult)
}

// Driver steps an engine until the run completes.
type Driver struct {
	engine    *engine.Engine
	limiter   *rate.Limiter
	listeners []Listener
	maxSteps  int
}

// Option configures a Driver.
type Option func(*Driver)

// WithInterval waits d between steps. Zero or less plays at full speed.
func WithInterval(d time.Duration) Option {
	return func(dr *Driver) {
		if d <= 0 {
			dr.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		dr.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithListener registers a listener. Listeners are called in registration order.
func WithListener(l Listener) Option {
	return func(dr *Driver) { dr.listeners = append(dr.listeners, l) }
}

// WithMaxSteps bounds a single Play call.
func WithMaxSteps(n int) Option {
	return func(dr *Driver) {
		if n > 0 {
			dr.maxSteps = n
		}
	}
}

// New creates a driver for e.
func New(e *engine.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine:   e,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		maxSteps: engine.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Play starts a fresh run and steps it until it completes, fails, hits the
// step cap or ctx is cancelled. The returned error is only set when the run
// could not start or was cancelled; execution failures are reported on the
// RunResult, exactly as RunFull does.
func (d *Driver) Play(ctx context.Context) (engine.RunResult, error) {
	logger := ctxlog.FromContext(ctx)

	d.engine.Reset()
	if !d.engine.Initialize() {
		return engine.RunResult{}, fmt.Errorf("%w: %w", ErrInvalidProgram, d.engine.InitError())
	}
	snap, _ := d.engine.Context()
	ctx, logger = ctxlog.With(ctx, "run_id", snap.RunID)
	logger.Info("▶️ Playing program.", "max_steps", d.maxSteps)

	var run engine.RunResult
	for {
		if len(run.ExecutionPath) >= d.maxSteps {
			run = d.abort(run, fmt.Errorf("%w: stopped after %d steps", engine.ErrStepLimitExceeded, d.maxSteps))
			break
		}
		if err := d.limiter.Wait(ctx); err != nil {
			logger.Warn("Playback cancelled.", "steps", len(run.ExecutionPath), "error", err)
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			d.engine.Reset()
			return run, err
		}

		step := d.engine.Step()
		run.ExecutionPath = append(run.ExecutionPath, step.PreviousNodeID)
		run.Steps = len(run.ExecutionPath)
		run.Context = step.Context
		logger.Debug("Step completed.", "node_id", step.PreviousNodeID, "next", step.CurrentNodeID)
		for _, l := range d.listeners {
			l.StepCompleted(ctx, step)
		}

		if step.IsComplete {
			run.IsComplete = true
			run.Err = step.Err
			run.ErrorNodeID = step.ErrorNodeID
			break
		}
	}

	for _, l := range d.listeners {
		l.RunFinished(ctx, run)
	}
	if run.Err != nil {
		logger.Error("Program failed.", "steps", run.Steps, "node_id", run.ErrorNodeID, "error", run.Err)
	} else {
		logger.Info("🏁 Program finished.", "steps", run.Steps)
	}
	return run, nil
}

// abort ends a run that hit the step cap the same way RunFull does.
func (d *Driver) abort(run engine.RunResult, err error) engine.RunResult {
	if snap, ok := d.engine.Abort(err); ok {
		run.Context = snap
	}
	run.IsComplete = true
	run.Err = err
	return run
}
