/*
Package ticktask provides identifier-keyed scheduling of delayed, repeating,
and deferred callbacks for Go applications.

Every unit of scheduled work is addressed by a caller-chosen identifier;
scheduling again under the same identifier atomically replaces the previous
occupant. Callbacks can be made conditionally self-terminating through shared
predicates, so one predicate turning false cancels a whole group at once.

Timers (pkg/timers):
  - After: one-shot delayed callbacks
  - Every / EveryNow: repeating callbacks, optionally with an immediate first firing
  - Defer: as-soon-as-possible callbacks, batched and drained together
  - Cron: cron-expression schedules
  - Shared predicates with group cancellation via While

Metrics (pkg/metrics):
  - Prometheus instrumentation for scheduler activity

Example usage:

	import (
		"time"

		"github.com/vnykmshr/ticktask/pkg/timers"
	)

	s := timers.New()

	s.After("warmup", 5*time.Second, func(r *timers.Ref, args ...any) {
		// runs once, five seconds from now
	})

	s.Every("heartbeat", time.Second, func(r *timers.Ref, args ...any) {
		// runs every second until cancelled
	})

	s.Cancel("heartbeat")
*/
package ticktask
