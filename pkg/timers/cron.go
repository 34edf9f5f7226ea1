package timers

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// chainHandle is the repeating-store handle for a cron schedule, which is
// realized as a chain of one-shot host arms. The inner handle is replaced
// on every re-arm; all access happens under the scheduler lock.
type chainHandle struct {
	inner Handle
}

func (h *chainHandle) Stop() bool {
	if h.inner == nil {
		return false
	}
	return h.inner.Stop()
}

// Cron schedules fn on a cron expression with a seconds field, such as
// "0 30 * * * *" for half past every hour. The schedule lives in the
// Repeating category and replaces any work already scheduled under id.
// Occurrences are computed in the scheduler's configured Location.
func (s *Scheduler) Cron(id, expr string, fn Func, args ...any) (*Ref, error) {
	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked(id)
	r := &Ref{s: s, id: id, cat: Repeating}
	s.refs[id] = r
	h := &chainHandle{}
	s.repeating[id] = h
	s.armCronLocked(r, h, schedule, fn, args)
	s.metricScheduledLocked(Repeating)
	return r, nil
}

func (s *Scheduler) armCronLocked(r *Ref, h *chainHandle, schedule cron.Schedule, fn Func, args []any) {
	now := s.host.Now().In(s.loc)
	h.inner = s.host.AfterFunc(schedule.Next(now).Sub(now), func() {
		s.fireCron(r, h, schedule, fn, args)
	})
}

// fireCron re-arms the next occurrence, then runs the same predicate and
// invocation path as any repeating callback.
func (s *Scheduler) fireCron(r *Ref, h *chainHandle, schedule cron.Schedule, fn Func, args []any) {
	s.mu.Lock()
	if s.refs[r.id] != r {
		s.mu.Unlock()
		return
	}
	s.armCronLocked(r, h, schedule, fn, args)
	cond, grouped := r.cond, r.grouped
	s.mu.Unlock()

	if cond != nil && !cond.fn(r, args...) {
		s.predicateStop(r, cond, grouped)
		return
	}
	s.metricFired(Repeating)
	fn(r, args...)
}
