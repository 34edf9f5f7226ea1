package timers

import "strings"

// Category identifies which of the three stores holds a scheduled callback.
type Category int

const (
	// Delayed holds one-shot callbacks armed with After.
	Delayed Category = iota

	// Repeating holds interval and cron callbacks armed with Every,
	// EveryNow, or Cron.
	Repeating

	// Deferred holds as-soon-as-possible callbacks queued with Defer.
	Deferred
)

// String returns the canonical name of the category.
func (c Category) String() string {
	switch c {
	case Delayed:
		return "delayed"
	case Repeating:
		return "repeating"
	case Deferred:
		return "deferred"
	}
	return "unknown"
}

// ParseCategory maps the accepted spellings of a category name, singular or
// plural, onto the canonical Category. The boolean reports whether the name
// was recognized.
func ParseCategory(name string) (Category, bool) {
	switch strings.ToLower(name) {
	case "delay", "delays", "delayed", "timeout", "timeouts", "after":
		return Delayed, true
	case "repeat", "repeats", "repeating", "interval", "intervals", "every":
		return Repeating, true
	case "defer", "defers", "deferred", "queue", "queued", "soon":
		return Deferred, true
	}
	return 0, false
}
