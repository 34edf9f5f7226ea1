// Package metrics provides Prometheus instrumentation for ticktask components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for ticktask components.
type Registry struct {
	// Scheduling metrics
	TasksScheduled  *prometheus.CounterVec
	TasksFired      *prometheus.CounterVec
	TasksCancelled  *prometheus.CounterVec
	TasksSuperseded *prometheus.CounterVec
	TasksActive     *prometheus.GaugeVec

	// Conditional repetition metrics
	PredicateStops     *prometheus.CounterVec
	GroupCancellations *prometheus.CounterVec

	// Deferred batch engine metrics
	DeferredArms      *prometheus.CounterVec
	DeferredDrains    *prometheus.CounterVec
	DeferredBatchSize *prometheus.HistogramVec
	DeferredPanics    *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by ticktask components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "scheduled_total",
				Help:      "Total number of callbacks scheduled, by category",
			},
			[]string{"scheduler", "category"},
		),

		TasksFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "fired_total",
				Help:      "Total number of firings that reached the callback, by category",
			},
			[]string{"scheduler", "category"},
		),

		TasksCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "cancelled_total",
				Help:      "Total number of callbacks cancelled before completion, by category",
			},
			[]string{"scheduler", "category"},
		),

		TasksSuperseded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "superseded_total",
				Help:      "Total number of callbacks replaced by re-scheduling under the same identifier",
			},
			[]string{"scheduler"},
		),

		TasksActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "active",
				Help:      "Number of currently scheduled callbacks, by category",
			},
			[]string{"scheduler", "category"},
		),

		PredicateStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "predicate_stops_total",
				Help:      "Total number of firings skipped because a repetition predicate returned false",
			},
			[]string{"scheduler", "category"},
		),

		GroupCancellations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "timers",
				Name:      "group_cancellations_total",
				Help:      "Total number of predicate groups cancelled as a unit",
			},
			[]string{"scheduler"},
		),

		DeferredArms: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "deferred",
				Name:      "arms_total",
				Help:      "Total number of deferred drain arm requests, by host strategy",
			},
			[]string{"scheduler", "strategy"},
		),

		DeferredDrains: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "deferred",
				Name:      "drains_total",
				Help:      "Total number of deferred drain cycles executed",
			},
			[]string{"scheduler"},
		),

		DeferredBatchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ticktask",
				Subsystem: "deferred",
				Name:      "batch_size",
				Help:      "Number of callbacks executed per drain cycle",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"scheduler"},
		),

		DeferredPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ticktask",
				Subsystem: "deferred",
				Name:      "panics_total",
				Help:      "Total number of deferred callbacks that panicked during a drain",
			},
			[]string{"scheduler"},
		),
	}
}
