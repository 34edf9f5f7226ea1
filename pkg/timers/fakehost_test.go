package timers

import (
	"time"

	"github.com/vnykmshr/ticktask/internal/testutil"
)

// fakeHost drives host callbacks manually from the test goroutine. It
// offers no deferral capability, so the batch engine falls back to
// zero-delay timers.
type fakeHost struct {
	clock  *testutil.MockClock
	timers []*fakeTimer
	ticks  []*fakeTicker
}

func newFakeHost() *fakeHost {
	return &fakeHost{clock: testutil.NewMockClock(time.Unix(1700000000, 0).UTC())}
}

func (h *fakeHost) Now() time.Time {
	return h.clock.Now()
}

func (h *fakeHost) AfterFunc(d time.Duration, fn func()) Handle {
	t := &fakeTimer{d: d, fn: fn}
	h.timers = append(h.timers, t)
	return t
}

func (h *fakeHost) EveryFunc(interval time.Duration, fn func()) Handle {
	t := &fakeTicker{interval: interval, fn: fn}
	h.ticks = append(h.ticks, t)
	return t
}

// firePending fires every one-shot timer armed so far that has not been
// stopped. Timers armed while firing are kept for the next call.
func (h *fakeHost) firePending() {
	snap := h.timers
	h.timers = nil
	for _, t := range snap {
		t.fire()
	}
}

// pendingCount counts armed one-shot timers that can still fire.
func (h *fakeHost) pendingCount() int {
	n := 0
	for _, t := range h.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.fn()
}

type fakeTicker struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *fakeTicker) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTicker) tick() {
	if !t.stopped {
		t.fn()
	}
}

// nextTickHost adds the non-revocable NextTick capability on top of
// fakeHost.
type nextTickHost struct {
	*fakeHost
	queued []func()
}

func newNextTickHost() *nextTickHost {
	return &nextTickHost{fakeHost: newFakeHost()}
}

func (h *nextTickHost) NextTick(fn func()) {
	h.queued = append(h.queued, fn)
}

// runNextTicks runs every queued NextTick callback. Callbacks queued while
// running are kept for the next call.
func (h *nextTickHost) runNextTicks() {
	snap := h.queued
	h.queued = nil
	for _, fn := range snap {
		fn()
	}
}

// soonHost adds the revocable SoonFunc capability on top of fakeHost.
type soonHost struct {
	*fakeHost
	soons []*fakeTimer
}

func newSoonHost() *soonHost {
	return &soonHost{fakeHost: newFakeHost()}
}

func (h *soonHost) SoonFunc(fn func()) Handle {
	t := &fakeTimer{fn: fn}
	h.soons = append(h.soons, t)
	return t
}

// runSoons fires every armed soon callback that has not been stopped.
func (h *soonHost) runSoons() {
	snap := h.soons
	h.soons = nil
	for _, t := range snap {
		t.fire()
	}
}
