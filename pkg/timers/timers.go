package timers

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/ticktask/pkg/metrics"
)

// Task describes one currently scheduled unit of work.
type Task struct {
	ID          string
	Category    Category
	Conditional bool // a repetition predicate is attached
}

// Config holds scheduler configuration.
type Config struct {
	// Name labels log output and metrics for this scheduler instance.
	// Defaults to "default".
	Name string

	// Host supplies the timing primitives. If nil, StdHost is used.
	Host Host

	// Logger receives trace and error output. The zero value disables
	// logging.
	Logger zerolog.Logger

	// Metrics configures Prometheus instrumentation.
	Metrics metrics.Config

	// Location is the time zone cron expressions are evaluated in.
	// Defaults to time.Local.
	Location *time.Location

	// reg short-circuits metrics setup with a pre-built registry, so a
	// Registry of schedulers can share one set of metric vectors.
	reg *metrics.Registry
}

// Scheduler schedules delayed, repeating, and deferred callbacks, each
// addressed by a caller-chosen identifier. Scheduling under an identifier
// that is already occupied, in any category, silently replaces the previous
// occupant. All methods are safe for concurrent use, and callbacks may
// re-enter the scheduler freely.
type Scheduler struct {
	name       string
	host       Host
	log        zerolog.Logger
	reg        *metrics.Registry
	loc        *time.Location
	cronParser cron.Parser

	mu        sync.Mutex
	delayed   map[string]Handle
	repeating map[string]Handle
	queue     deferredQueue
	refs      map[string]*Ref
	groups    map[*Cond]map[*Ref]struct{}

	// deferred batch engine state
	armed     bool
	armTag    deferTag
	armHandle Handle
}

// New creates a scheduler with default configuration.
func New() *Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) *Scheduler {
	name := cfg.Name
	if name == "" {
		name = "default"
	}

	host := cfg.Host
	if host == nil {
		host = StdHost()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	reg := cfg.reg
	if reg == nil && cfg.Metrics.Enabled {
		if cfg.Metrics.Registry == nil {
			reg = metrics.DefaultRegistry
		} else {
			reg = metrics.NewRegistry(cfg.Metrics.Registry)
		}
	}

	return &Scheduler{
		name:       name,
		host:       host,
		log:        cfg.Logger.With().Str("scheduler", name).Logger(),
		reg:        reg,
		loc:        loc,
		cronParser: cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		delayed:    make(map[string]Handle),
		repeating:  make(map[string]Handle),
		queue:      newDeferredQueue(),
		refs:       make(map[string]*Ref),
		groups:     make(map[*Cond]map[*Ref]struct{}),
	}
}

// After schedules fn to run once after delay, replacing any work already
// scheduled under id in any category.
func (s *Scheduler) After(id string, delay time.Duration, fn Func, args ...any) *Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked(id)
	r := &Ref{s: s, id: id, cat: Delayed}
	s.refs[id] = r
	s.delayed[id] = s.host.AfterFunc(delay, func() {
		s.fire(r, fn, args)
	})
	s.metricScheduledLocked(Delayed)
	return r
}

// Every schedules fn to run once per interval until cancelled, replacing any
// work already scheduled under id in any category.
func (s *Scheduler) Every(id string, interval time.Duration, fn Func, args ...any) *Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked(id)
	r := &Ref{s: s, id: id, cat: Repeating}
	s.refs[id] = r
	s.repeating[id] = s.host.EveryFunc(interval, func() {
		s.fire(r, fn, args)
	})
	s.metricScheduledLocked(Repeating)
	return r
}

// EveryNow behaves like Every, plus an immediate first firing through the
// deferred queue. Cancelling the returned Ref covers both halves, and a
// condition attached with While reaches the immediate half as long as it
// has not fired yet.
func (s *Scheduler) EveryNow(id string, interval time.Duration, fn Func, args ...any) *Ref {
	now := s.Defer(id+":now:"+uuid.NewString(), fn, args...)
	r := s.Every(id, interval, fn, args...)

	s.mu.Lock()
	r.linked = now
	s.mu.Unlock()
	return r
}

// Defer schedules fn to run as soon as possible on a future turn, batched
// with everything else deferred before the next drain. Any work already
// scheduled under id is replaced.
func (s *Scheduler) Defer(id string, fn Func, args ...any) *Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked(id)
	r := &Ref{s: s, id: id, cat: Deferred}
	s.refs[id] = r
	s.queue.push(&deferredEntry{id: id, ref: r, fn: fn, args: args})
	s.armLocked()
	s.metricScheduledLocked(Deferred)
	return r
}

// Cancel removes the work scheduled under id, whichever category holds it,
// reporting whether anything was cancelled.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refs[id]
	if !ok {
		return false
	}
	s.removeLocked(r)
	s.metricCancelled(r.cat)
	return true
}

// CancelIn removes the work scheduled under id only if it currently lives
// in category c, reporting whether anything was cancelled.
func (s *Scheduler) CancelIn(c Category, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.refs[id]
	if !ok || r.cat != c {
		return false
	}
	s.removeLocked(r)
	s.metricCancelled(c)
	return true
}

// Clear cancels all scheduled work in the given categories, or in all three
// if none are given. Delayed and repeating entries go through full
// per-identifier cancellation; the deferred queue is emptied directly.
func (s *Scheduler) Clear(categories ...Category) {
	if len(categories) == 0 {
		categories = []Category{Delayed, Repeating, Deferred}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range categories {
		switch c {
		case Delayed:
			for id := range s.delayed {
				if s.cancelLocked(id) {
					s.metricCancelled(Delayed)
				}
			}
		case Repeating:
			for id := range s.repeating {
				if s.cancelLocked(id) {
					s.metricCancelled(Repeating)
				}
			}
		case Deferred:
			s.clearDeferredLocked()
		}
	}
}

// Has reports whether every given identifier currently has scheduled work.
func (s *Scheduler) Has(ids ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.refs[id]; !ok {
			return false
		}
	}
	return true
}

// Size returns the number of currently scheduled callbacks across all
// three categories.
func (s *Scheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delayed) + len(s.repeating) + s.queue.len()
}

// Lookup returns the Ref scheduled under id, if any.
func (s *Scheduler) Lookup(id string) (*Ref, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.refs[id]
	return r, ok
}

// List returns a snapshot of all currently scheduled work, sorted by
// identifier.
func (s *Scheduler) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]Task, 0, len(s.refs))
	for _, r := range s.refs {
		tasks = append(tasks, Task{
			ID:          r.id,
			Category:    r.cat,
			Conditional: r.cond != nil,
		})
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// fire is the trampoline for delayed and repeating callbacks. It runs on a
// host callback goroutine.
func (s *Scheduler) fire(r *Ref, fn Func, args []any) {
	s.mu.Lock()
	if s.refs[r.id] != r {
		// Lost a race against Cancel or a superseding schedule.
		s.mu.Unlock()
		return
	}
	cond, grouped := r.cond, r.grouped
	if r.cat == Delayed {
		// One-shot: the entry is gone before the callback runs,
		// whatever the predicate decides.
		s.removeLocked(r)
	}
	s.mu.Unlock()

	if cond != nil && !cond.fn(r, args...) {
		s.predicateStop(r, cond, grouped)
		return
	}
	s.metricFired(r.cat)
	fn(r, args...)
}

// predicateStop handles a repetition predicate returning false: a grouped
// condition cancels every Ref depending on it, an ungrouped one only the
// Ref that was about to fire.
func (s *Scheduler) predicateStop(r *Ref, cond *Cond, grouped bool) {
	s.mu.Lock()
	if grouped {
		s.cancelGroupLocked(cond)
	} else if s.cancelRefLocked(r) {
		s.metricCancelled(r.cat)
	}
	s.mu.Unlock()

	s.metricPredicateStop(r.cat)
	s.log.Debug().Str("id", r.id).Stringer("category", r.cat).Msg("repetition predicate stopped callback")
}

// cancelGroupLocked cancels every Ref depending on cond and prunes the
// registry entry. Members are iterated over a stable snapshot, since each
// cancellation mutates the live set.
func (s *Scheduler) cancelGroupLocked(cond *Cond) {
	members := s.groups[cond]
	if len(members) == 0 {
		delete(s.groups, cond)
		return
	}

	snap := make([]*Ref, 0, len(members))
	for m := range members {
		snap = append(snap, m)
	}
	delete(s.groups, cond)

	for _, m := range snap {
		if s.cancelRefLocked(m) {
			s.metricCancelled(m.cat)
		}
	}
	s.metricGroupCancel()
	s.log.Debug().Int("members", len(snap)).Msg("condition group cancelled")
}

// supersedeLocked cancels any current occupant of id before a new schedule
// takes the identifier over.
func (s *Scheduler) supersedeLocked(id string) {
	if s.cancelLocked(id) {
		s.metricSuperseded()
	}
}

// cancelLocked cancels the work scheduled under id, whichever category
// holds it.
func (s *Scheduler) cancelLocked(id string) bool {
	r, ok := s.refs[id]
	if !ok {
		return false
	}
	s.removeLocked(r)
	return true
}

// cancelRefLocked cancels r if it is still the current occupant of its
// identifier.
func (s *Scheduler) cancelRefLocked(r *Ref) bool {
	if s.refs[r.id] != r {
		return false
	}
	s.removeLocked(r)
	return true
}

// removeLocked unwinds all bookkeeping for r: the identifier index, group
// membership, the category store, and the immediate half of an EveryNow
// composite. Calling it for a Ref that has already been removed is a no-op.
func (s *Scheduler) removeLocked(r *Ref) {
	if s.refs[r.id] != r {
		return
	}
	delete(s.refs, r.id)
	s.ungroupLocked(r)

	switch r.cat {
	case Delayed:
		if h, ok := s.delayed[r.id]; ok {
			h.Stop()
			delete(s.delayed, r.id)
		}
	case Repeating:
		if h, ok := s.repeating[r.id]; ok {
			h.Stop()
			delete(s.repeating, r.id)
		}
	case Deferred:
		s.queue.remove(r.id)
		s.standDownLocked()
	}

	if l := r.linked; l != nil {
		r.linked = nil
		s.removeLocked(l)
	}
	s.gaugeLocked()
}

// clearDeferredLocked empties the deferred queue wholesale and lets the
// batch engine stand down.
func (s *Scheduler) clearDeferredLocked() {
	s.queue.each(func(e *deferredEntry) {
		if s.refs[e.id] == e.ref {
			delete(s.refs, e.id)
			s.ungroupLocked(e.ref)
			s.metricCancelled(Deferred)
		}
	})
	s.queue.resetAll()
	s.standDownLocked()
	s.gaugeLocked()
}

// attachLocked points r at cond, replacing any previous registration. Dead
// Refs (already fired or cancelled) are left alone.
func (s *Scheduler) attachLocked(r *Ref, cond *Cond, grouped bool) {
	if s.refs[r.id] != r {
		return
	}
	s.ungroupLocked(r)
	r.cond, r.grouped = cond, grouped
	if grouped {
		set := s.groups[cond]
		if set == nil {
			set = make(map[*Ref]struct{})
			s.groups[cond] = set
		}
		set[r] = struct{}{}
	}
}

// ungroupLocked drops r from its condition group, pruning the group
// eagerly when the last member leaves so conditions do not leak.
func (s *Scheduler) ungroupLocked(r *Ref) {
	if r.cond == nil || !r.grouped {
		return
	}
	if set, ok := s.groups[r.cond]; ok {
		delete(set, r)
		if len(set) == 0 {
			delete(s.groups, r.cond)
		}
	}
}

func (s *Scheduler) metricScheduledLocked(c Category) {
	if s.reg == nil {
		return
	}
	s.reg.TasksScheduled.WithLabelValues(s.name, c.String()).Inc()
	s.gaugeLocked()
}

func (s *Scheduler) metricFired(c Category) {
	if s.reg == nil {
		return
	}
	s.reg.TasksFired.WithLabelValues(s.name, c.String()).Inc()
}

func (s *Scheduler) metricCancelled(c Category) {
	if s.reg == nil {
		return
	}
	s.reg.TasksCancelled.WithLabelValues(s.name, c.String()).Inc()
}

func (s *Scheduler) metricSuperseded() {
	if s.reg == nil {
		return
	}
	s.reg.TasksSuperseded.WithLabelValues(s.name).Inc()
}

func (s *Scheduler) metricPredicateStop(c Category) {
	if s.reg == nil {
		return
	}
	s.reg.PredicateStops.WithLabelValues(s.name, c.String()).Inc()
}

func (s *Scheduler) metricGroupCancel() {
	if s.reg == nil {
		return
	}
	s.reg.GroupCancellations.WithLabelValues(s.name).Inc()
}

func (s *Scheduler) gaugeLocked() {
	if s.reg == nil {
		return
	}
	s.reg.TasksActive.WithLabelValues(s.name, Delayed.String()).Set(float64(len(s.delayed)))
	s.reg.TasksActive.WithLabelValues(s.name, Repeating.String()).Set(float64(len(s.repeating)))
	s.reg.TasksActive.WithLabelValues(s.name, Deferred.String()).Set(float64(s.queue.len()))
}
