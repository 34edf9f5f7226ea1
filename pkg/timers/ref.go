package timers

// Func is a scheduled callback. It receives the Ref representing its own
// scheduling, then the arguments captured at scheduling time.
type Func func(r *Ref, args ...any)

// Predicate decides, before each firing, whether the callback still runs.
// It receives the Ref about to fire and the originally captured arguments.
type Predicate func(r *Ref, args ...any) bool

// Cond wraps a Predicate with a stable identity so that one predicate can be
// shared across several Refs and cancel them as a group. Two Conds built from
// the same function are still distinct conditions.
type Cond struct {
	fn Predicate
}

// NewCond creates a shareable condition from fn.
func NewCond(fn Predicate) *Cond {
	return &Cond{fn: fn}
}

// Ref represents one scheduled unit of work. Refs are created by the
// Scheduler; callers hold a borrowed view offering cancellation and
// predicate attachment.
type Ref struct {
	s   *Scheduler
	id  string
	cat Category

	// guarded by s.mu
	cond    *Cond
	grouped bool
	linked  *Ref // immediate half of an EveryNow composite
}

// ID returns the identifier this Ref was scheduled under.
func (r *Ref) ID() string {
	return r.id
}

// Category returns the category this Ref was scheduled in.
func (r *Ref) Category() Category {
	return r.cat
}

// Cancel removes the scheduled work, reporting whether anything was still
// scheduled to cancel. It is idempotent: later calls return false.
func (r *Ref) Cancel() bool {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelRefLocked(r) {
		return false
	}
	s.metricCancelled(r.cat)
	return true
}

// While attaches cond to the Ref with grouping enabled: if cond returns
// false before any firing, every Ref sharing cond is cancelled together.
// A Ref holds at most one condition; attaching again replaces it.
// Returns the Ref for chaining.
func (r *Ref) While(cond *Cond) *Ref {
	return r.attach(cond, true)
}

// WhileUngrouped attaches cond to the Ref without grouping: cond returning
// false cancels only this Ref, leaving other Refs sharing cond untouched.
// Returns the Ref for chaining.
func (r *Ref) WhileUngrouped(cond *Cond) *Ref {
	return r.attach(cond, false)
}

func (r *Ref) attach(cond *Cond, grouped bool) *Ref {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachLocked(r, cond, grouped)
	if r.linked != nil {
		// Propagate to the immediate half of an EveryNow composite,
		// unless it has already fired.
		s.attachLocked(r.linked, cond, grouped)
	}
	return r
}
