package timers

import (
	"sync"
	"time"
)

// Handle is an opaque cancellation handle for work armed on the host.
// Stop reports whether the armed callback was prevented from running;
// stopping an already-fired or already-stopped handle returns false.
type Handle interface {
	Stop() bool
}

// Host supplies the timing primitives a Scheduler runs on. The standard
// host is backed by the time package; tests substitute deterministic
// implementations.
//
// Hosts must invoke armed callbacks asynchronously, never from inside
// AfterFunc, EveryFunc, or the optional capability methods: the scheduler
// arms while holding its own lock.
type Host interface {
	// Now returns the host's current time.
	Now() time.Time

	// AfterFunc arms fn to run once after d elapses.
	AfterFunc(d time.Duration, fn func()) Handle

	// EveryFunc arms fn to run every interval until the handle is stopped.
	EveryFunc(interval time.Duration, fn func()) Handle
}

// NextTicker is an optional Host capability: run fn at the earliest
// opportunity, ahead of any armed timers. NextTick requests cannot be
// revoked, so fn must tolerate firing with nothing left to do.
type NextTicker interface {
	NextTick(fn func())
}

// Sooner is an optional Host capability: run fn soon, ahead of any armed
// timers, with a revocable handle. It sits between NextTicker and a
// zero-delay timer in the deferral strategy order.
type Sooner interface {
	SoonFunc(fn func()) Handle
}

// StdHost returns the default Host backed by the time package. It
// implements NextTicker by handing the callback to a fresh goroutine.
func StdHost() Host {
	return stdHost{}
}

type stdHost struct{}

func (stdHost) Now() time.Time {
	return time.Now()
}

func (stdHost) AfterFunc(d time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(d, fn)}
}

func (stdHost) EveryFunc(interval time.Duration, fn func()) Handle {
	h := &tickerHandle{
		t:    time.NewTicker(interval),
		done: make(chan struct{}),
	}
	go h.loop(fn)
	return h
}

func (stdHost) NextTick(fn func()) {
	go fn()
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Stop() bool {
	return h.t.Stop()
}

type tickerHandle struct {
	t    *time.Ticker
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) loop(fn func()) {
	for {
		select {
		case <-h.t.C:
			fn()
		case <-h.done:
			return
		}
	}
}

func (h *tickerHandle) Stop() bool {
	stopped := false
	h.once.Do(func() {
		h.t.Stop()
		close(h.done)
		stopped = true
	})
	return stopped
}
