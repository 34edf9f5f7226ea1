/*
Package metrics provides Prometheus instrumentation for ticktask components.

The package defines a Registry of counters, gauges, and histograms covering
scheduler activity: how many callbacks were scheduled, fired, cancelled, or
superseded per category, predicate-driven stops and group cancellations, and
deferred batch engine behavior (arm strategy, drain count, batch size).

Basic Usage:

	import (
		"github.com/prometheus/client_golang/prometheus"

		"github.com/vnykmshr/ticktask/pkg/metrics"
		"github.com/vnykmshr/ticktask/pkg/timers"
	)

	reg := prometheus.NewRegistry()
	s := timers.NewWithConfig(timers.Config{
		Metrics: metrics.Config{Enabled: true, Registry: reg},
	})

Components accept a metrics.Config; when Enabled is false, instrumentation is
skipped entirely and has no overhead. Each metrics-enabled component should be
given its own registry, or distinct instances will conflict on registration.
*/
package metrics
