/*
Package timers provides identifier-keyed scheduling of delayed, repeating,
and deferred callbacks with a single cancellation and identity model.

Every scheduled unit of work is addressed by a caller-chosen identifier that
is unique across all three categories at once: scheduling again under an
occupied identifier silently cancels and replaces the previous occupant,
whatever category it lived in.

Basic Usage:

	s := timers.New()

	// Run once, two seconds from now.
	s.After("greeting", 2*time.Second, func(r *timers.Ref, args ...any) {
		fmt.Println("hello,", args[0])
	}, "world")

	// Run every second until cancelled.
	s.Every("heartbeat", time.Second, func(r *timers.Ref, args ...any) {
		fmt.Println("tick")
	})

	// Run as soon as possible, batched with other deferred work.
	s.Defer("flush", func(r *timers.Ref, args ...any) {
		fmt.Println("flushed")
	})

	s.Cancel("heartbeat")

Scheduling Methods:

  - After: one-shot callback after a delay
  - Every: repeating callback on a fixed interval
  - EveryNow: like Every, plus an immediate first firing through the
    deferred queue
  - Defer: as-soon-as-possible callback, coalesced into batch drains
  - Cron: repeating callback on a cron expression (seconds field included)

Deferred work is drained in first-queued order, one batch per arm cycle.
Work deferred by a callback during a drain waits for the next cycle, and a
panicking deferred callback is logged and isolated so its siblings still
run. Delayed and repeating callbacks run directly on host timer callbacks
and are not isolated.

Conditional Repetition:

A Ref can carry a repetition predicate that is re-evaluated before every
firing. Predicates are wrapped in a Cond so one condition can be shared:

	alive := timers.NewCond(func(r *timers.Ref, args ...any) bool {
		return world.Contains(player)
	})

	s.Every("regen", time.Second, regen).While(alive)
	s.Every("poison", 2*time.Second, poison).While(alive)

When a shared condition returns false before any firing, every Ref attached
to it with While is cancelled in one step. WhileUngrouped limits the effect
to the single Ref. Either way the skipped callback does not run that cycle.

Host Primitives:

The scheduler consumes timing primitives through the Host interface. The
standard host arms real timers; tests substitute deterministic hosts. The
deferred batch engine picks the lowest-latency deferral strategy the host
offers on every arm: NextTicker, then Sooner, then a zero-delay timer.
NextTick arms cannot be revoked, so cancelling the last queued entry leaves
such an arm outstanding and its drain simply finds nothing to do.

Concurrency:

All methods are safe for concurrent use. Callbacks may re-enter the
scheduler freely: they can cancel themselves, re-schedule their own
identifier, defer more work during a drain, or clear whole categories.
Cancellation is synchronous; once Cancel returns true the callback will not
run.
*/
package timers
