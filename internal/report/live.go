package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
)

// Live prints console lines as a program plays. It implements
// driver.Listener.
type Live struct {
	out   io.Writer
	debug bool
	// render, when set, is printed after every step. The CLI uses it to
	// redraw the grid.
	render func() string

	mu   sync.Mutex
	seen int
}

// NewLive writes to out. render may be nil.
func NewLive(out io.Writer, debug bool, render func() string) *Live {
	return &Live{out: out, debug: debug, render: render}
}

// StepCompleted prints the console lines the step added.
func (l *Live) StepCompleted(_ context.Context, step engine.StepResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	console := step.Context.Console
	if l.seen > len(console) {
		l.seen = 0
	}
	for _, c := range console[l.seen:] {
		switch c.Kind {
		case execctx.Debug:
			if l.debug {
				fmt.Fprintf(l.out, "  · %s\n", c.Text)
			}
		case execctx.Error:
			fmt.Fprintf(l.out, "✗ %s\n", c.Text)
		default:
			fmt.Fprintf(l.out, "> %s\n", c.Text)
		}
	}
	l.seen = len(console)

	if l.render != nil {
		fmt.Fprintln(l.out, l.render())
	}
}

// RunFinished resets the console offset for the next run.
func (l *Live) RunFinished(context.Context, engine.RunResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = 0
}
