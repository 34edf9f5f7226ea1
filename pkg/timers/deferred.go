package timers

import (
	"runtime/debug"
)

// deferTag names the host strategy behind an outstanding arm request.
type deferTag int

const (
	tagNone deferTag = iota
	tagNextTick
	tagSoon
	tagTimer
)

func (t deferTag) String() string {
	switch t {
	case tagNextTick:
		return "next-tick"
	case tagSoon:
		return "soon"
	case tagTimer:
		return "timer"
	}
	return "none"
}

// deferredEntry is one queued unit of deferred work.
type deferredEntry struct {
	id   string
	ref  *Ref
	fn   Func
	args []any
	dead bool
}

// deferredQueue keeps deferred work in insertion order. Removing an entry
// marks it dead and drops it from the index, so a drain snapshot taken
// earlier stays safe to iterate: dead entries are simply skipped.
type deferredQueue struct {
	index map[string]*deferredEntry
	order []*deferredEntry
}

func newDeferredQueue() deferredQueue {
	return deferredQueue{index: make(map[string]*deferredEntry)}
}

func (q *deferredQueue) push(e *deferredEntry) {
	q.index[e.id] = e
	q.order = append(q.order, e)
}

func (q *deferredQueue) remove(id string) bool {
	e, ok := q.index[id]
	if !ok {
		return false
	}
	e.dead = true
	delete(q.index, id)
	return true
}

func (q *deferredQueue) len() int {
	return len(q.index)
}

// snapshot hands the current ordered contents to a drain cycle and resets
// the live order: entries queued afterwards belong to the next cycle.
func (q *deferredQueue) snapshot() []*deferredEntry {
	snap := q.order
	q.order = nil
	return snap
}

// each visits every live entry, including ones a running drain has
// snapshotted but not reached yet.
func (q *deferredQueue) each(fn func(*deferredEntry)) {
	for _, e := range q.index {
		fn(e)
	}
}

// resetAll empties the queue wholesale.
func (q *deferredQueue) resetAll() {
	for _, e := range q.index {
		e.dead = true
	}
	q.index = make(map[string]*deferredEntry)
	q.order = nil
}

// armLocked requests a drain unless one is already outstanding. The host
// strategy is re-evaluated on every arm, highest priority first: NextTick,
// then SoonFunc, then a zero-delay timer.
func (s *Scheduler) armLocked() {
	if s.armed {
		return
	}
	s.armed = true

	switch h := s.host.(type) {
	case NextTicker:
		s.armTag, s.armHandle = tagNextTick, nil
		h.NextTick(s.drain)
	case Sooner:
		s.armTag = tagSoon
		s.armHandle = h.SoonFunc(s.drain)
	default:
		s.armTag = tagTimer
		s.armHandle = s.host.AfterFunc(0, s.drain)
	}

	if s.reg != nil {
		s.reg.DeferredArms.WithLabelValues(s.name, s.armTag.String()).Inc()
	}
	s.log.Trace().Stringer("strategy", s.armTag).Msg("deferred drain armed")
}

// standDownLocked revokes an outstanding arm once the queue is empty.
// NextTick arms cannot be revoked; they stay outstanding, still counted as
// armed, and their eventual drain finds nothing to do.
func (s *Scheduler) standDownLocked() {
	if !s.armed || s.queue.len() > 0 {
		return
	}
	if s.armTag == tagNextTick {
		return
	}
	if s.armHandle != nil {
		s.armHandle.Stop()
	}
	s.armed = false
	s.armTag, s.armHandle = tagNone, nil
	s.log.Trace().Msg("deferred drain stood down")
}

// drain executes one batch cycle. It runs on a host callback goroutine.
func (s *Scheduler) drain() {
	s.mu.Lock()
	// Disarm before touching the queue: a Defer issued by one of the
	// callbacks below must trigger a fresh, independent arm.
	s.armed = false
	s.armTag, s.armHandle = tagNone, nil
	snap := s.queue.snapshot()
	s.mu.Unlock()

	executed := 0
	for _, e := range snap {
		s.mu.Lock()
		if e.dead {
			s.mu.Unlock()
			continue
		}
		// Remove before invoking, so the callback can re-queue its own
		// identifier without the fresh entry being swallowed by this
		// cycle.
		s.queue.remove(e.id)
		if s.refs[e.id] == e.ref {
			delete(s.refs, e.id)
			s.ungroupLocked(e.ref)
		}
		cond, grouped := e.ref.cond, e.ref.grouped
		s.gaugeLocked()
		s.mu.Unlock()

		if cond != nil && !cond.fn(e.ref, e.args...) {
			s.predicateStop(e.ref, cond, grouped)
			continue
		}
		executed++
		s.metricFired(Deferred)
		s.invoke(e)
	}

	if s.reg != nil {
		s.reg.DeferredDrains.WithLabelValues(s.name).Inc()
		s.reg.DeferredBatchSize.WithLabelValues(s.name).Observe(float64(executed))
	}
	s.log.Trace().Int("executed", executed).Msg("deferred drain complete")
}

// invoke runs one deferred callback, isolating panics so a single failure
// cannot abort the rest of the batch.
func (s *Scheduler) invoke(e *deferredEntry) {
	defer func() {
		if rec := recover(); rec != nil {
			if s.reg != nil {
				s.reg.DeferredPanics.WithLabelValues(s.name).Inc()
			}
			s.log.Error().
				Str("id", e.id).
				Any("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("deferred callback panicked")
		}
	}()
	e.fn(e.ref, e.args...)
}
