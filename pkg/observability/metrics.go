package observability

import (
	"context"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	NodeVisits  *prometheus.CounterVec
	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	RunSteps    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// It panics if a collector with the same name is already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_node_visits_total",
				Help: "Total number of node invocations",
			},
			[]string{"node_id"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_runs_total",
				Help: "Total number of finished runs by status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepflow_run_duration_seconds",
				Help:    "Wall time of runs by status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		RunSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepflow_run_steps",
				Help:    "Node invocations per run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
	reg.MustRegister(m.NodeVisits, m.Runs, m.RunDuration, m.RunSteps)
	return m
}

// Hooks returns the lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			m.observeRun(statusSuccess, e)
		},
		OnRunFailed: func(ctx context.Context, e *domain.RunEvent) {
			m.observeRun(statusFailure, e)
		},
	}
}

func (m *Metrics) observeRun(status string, e *domain.RunEvent) {
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.WithLabelValues(status).Observe(e.Duration.Seconds())
	m.RunSteps.Observe(float64(e.Steps))
}
