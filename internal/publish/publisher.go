// Package publish streams run progress to a socket.io server so that a
// visualizer can animate the graph and the grid while a program plays.
package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/world"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by a Publisher.
const (
	EventStep  = "flowgrid:step"
	EventRun   = "flowgrid:run"
	EventWorld = "flowgrid:world"
)

const connectTimeout = 15 * time.Second

// Emitter is the part of a socket.io client a Publisher needs.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Config locates the visualizer server.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Publisher emits run events. It implements driver.Listener. Emit failures
// are logged and dropped; a missing visualizer never stops a run.
type Publisher struct {
	emitter Emitter
	close   func()

	mu   sync.Mutex
	seen map[string]int
}

// New wraps an existing emitter.
func New(em Emitter) *Publisher {
	return &Publisher{emitter: em, close: func() {}, seen: make(map[string]int)}
}

// Dial connects to a socket.io server and waits for the handshake.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "publisher", "url", cfg.URL)
	logger.Info("Connecting to visualizer...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("visualizer URL %q needs a scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to visualizer.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	p := New(io)
	p.close = func() {
		logger.Debug("Disconnecting from visualizer.", "sid", io.Id())
		io.Disconnect()
	}
	return p, nil
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	p.close()
}

// StepCompleted emits EventStep.
func (p *Publisher) StepCompleted(ctx context.Context, step engine.StepResult) {
	runID := step.Context.RunID

	p.mu.Lock()
	seen := p.seen[runID]
	p.seen[runID] = len(step.Context.Console)
	p.mu.Unlock()

	payload, err := NewStepPayload(step, seen)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to encode step payload.", "node_id", step.PreviousNodeID, "error", err)
		return
	}
	p.emit(ctx, EventStep, payload)
}

// RunFinished emits EventRun.
func (p *Publisher) RunFinished(ctx context.Context, run engine.RunResult) {
	p.mu.Lock()
	delete(p.seen, run.Context.RunID)
	p.mu.Unlock()

	p.emit(ctx, EventRun, NewRunPayload(run))
}

// ObserveWorld returns a world.Observer that emits EventWorld.
func (p *Publisher) ObserveWorld(ctx context.Context) world.Observer {
	return func(ev world.Event) {
		p.emit(ctx, EventWorld, map[string]any{
			"action":  ev.Action,
			"message": ev.Message,
			"agent":   ev.Agent,
		})
	}
}

func (p *Publisher) emit(ctx context.Context, event string, payload any) {
	if err := p.emitter.Emit(event, payload); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish event.", "event", event, "error", err)
	}
}
