// Package metrics exposes Prometheus collectors for editor activity.
package metrics

import (
	"context"

	"github.com/aretw0/quizgraph/pkg/diagnostics"
	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors registered by New.
type Metrics struct {
	Mutations *prometheus.CounterVec
	Signals   *prometheus.CounterVec
	Health    prometheus.Histogram
	Generated prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizgraph_mutations_total",
				Help: "Graph mutations applied, by operation and result.",
			},
			[]string{"op", "result"},
		),
		Signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizgraph_socket_signals_total",
				Help: "Socket recompute signals sent, by phase.",
			},
			[]string{"phase"},
		),
		Health: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizgraph_health_score",
			Help:    "Health scores reported by validation runs.",
			Buckets: prometheus.LinearBuckets(0, 20, 6),
		}),
		Generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizgraph_generated_quizzes_total",
			Help: "Quizzes produced from question descriptors.",
		}),
	}
	reg.MustRegister(m.Mutations, m.Signals, m.Health, m.Generated)
	return m
}

// Hooks returns lifecycle callbacks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(_ context.Context, ev *domain.MutationEvent) {
			result := "ok"
			if ev.Err != nil {
				result = "rejected"
			}
			m.Mutations.WithLabelValues(ev.Op, result).Inc()
		},
		OnSignal: func(_ context.Context, ev *domain.ChangeEvent) {
			m.Signals.WithLabelValues(string(ev.Phase)).Inc()
		},
	}
}

// ObserveReport records the health score of a validation run.
func (m *Metrics) ObserveReport(r diagnostics.Report) {
	m.Health.Observe(float64(r.HealthScore))
}
