// Package metrics exposes Prometheus metrics for program runs.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/world"
)

const namespace = "flowgrid"

// Recorder turns run events into metrics. It implements driver.Listener and
// can observe a world through Recorder.ObserveWorld.
type Recorder struct {
	types map[string]string

	StepsTotal     *prometheus.CounterVec
	StepErrors     *prometheus.CounterVec
	DataTransfers  prometheus.Counter
	RunsTotal      *prometheus.CounterVec
	RunSteps       prometheus.Histogram
	WorldActions   *prometheus.CounterVec
	AgentPositionX prometheus.Gauge
	AgentPositionY prometheus.Gauge
}

// New registers the run metrics with reg. Node types are looked up in g so
// that step metrics are labelled by type rather than by node ID.
func New(reg prometheus.Registerer, g *graph.Graph) *Recorder {
	factory := promauto.With(reg)
	r := &Recorder{
		types: make(map[string]string),

		// StepsTotal counts executed flow nodes.
		StepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "steps_total",
				Help:      "Total number of executed steps by node type",
			},
			[]string{"node_type"},
		),

		// StepErrors counts failed steps by the type of the node at fault.
		StepErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "step_errors_total",
				Help:      "Total number of failed steps by faulty node type",
			},
			[]string{"node_type"},
		),

		DataTransfers: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "data_transfers_total",
				Help:      "Total number of values moved along data edges",
			},
		),

		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "runs_total",
				Help:      "Total number of finished runs by outcome",
			},
			[]string{"outcome"}, // "completed", "failed"
		),

		RunSteps: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "run_steps",
				Help:      "Number of steps per finished run",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),

		WorldActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "world",
				Name:      "actions_total",
				Help:      "Total number of world actions by kind",
			},
			[]string{"action"},
		),

		AgentPositionX: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "world",
			Name:      "agent_x",
			Help:      "Current agent column",
		}),
		AgentPositionY: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "world",
			Name:      "agent_y",
			Help:      "Current agent row",
		}),
	}
	if g != nil {
		for _, n := range g.Nodes {
			r.types[n.ID] = n.Type.String()
		}
	}
	return r
}

func (r *Recorder) nodeType(id string) string {
	if t, ok := r.types[id]; ok {
		return t
	}
	return "unknown"
}

// StepCompleted records one step.
func (r *Recorder) StepCompleted(_ context.Context, step engine.StepResult) {
	if step.PreviousNodeID == "" {
		return
	}
	r.StepsTotal.WithLabelValues(r.nodeType(step.PreviousNodeID)).Inc()
	if step.Err != nil {
		r.StepErrors.WithLabelValues(r.nodeType(step.ErrorNodeID)).Inc()
	}
	for _, tr := range step.DataTransfers {
		if !tr.IsFlowEdge {
			r.DataTransfers.Inc()
		}
	}
}

// RunFinished records the outcome of a run.
func (r *Recorder) RunFinished(_ context.Context, run engine.RunResult) {
	outcome := "completed"
	if run.Err != nil {
		outcome = "failed"
	}
	r.RunsTotal.WithLabelValues(outcome).Inc()
	r.RunSteps.Observe(float64(run.Steps))
}

// ObserveWorld is a world.Observer.
func (r *Recorder) ObserveWorld(ev world.Event) {
	r.WorldActions.WithLabelValues(ev.Action).Inc()
	r.AgentPositionX.Set(float64(ev.Agent.Position.X))
	r.AgentPositionY.Set(float64(ev.Agent.Position.Y))
}
