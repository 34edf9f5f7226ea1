package timers_test

import (
	"fmt"
	"time"

	"github.com/vnykmshr/ticktask/pkg/timers"
)

// ExampleScheduler_After demonstrates one-shot scheduling and the
// supersede-on-reschedule identity model.
func ExampleScheduler_After() {
	s := timers.New()
	defer s.Clear()

	s.After("report", time.Hour, func(r *timers.Ref, args ...any) {
		fmt.Println("running", r.ID())
	})

	// Re-scheduling under the same identifier replaces the first entry.
	s.After("report", 2*time.Hour, func(r *timers.Ref, args ...any) {})

	fmt.Println(s.Has("report"), s.Size())

	// Output:
	// true 1
}

// ExampleScheduler_Cancel demonstrates boolean cancellation semantics.
func ExampleScheduler_Cancel() {
	s := timers.New()
	defer s.Clear()

	s.Every("poll", time.Minute, func(r *timers.Ref, args ...any) {})

	fmt.Println(s.Cancel("poll"))
	fmt.Println(s.Cancel("poll"))
	fmt.Println(s.Has("poll"))

	// Output:
	// true
	// false
	// false
}

// ExampleScheduler_List demonstrates inspecting scheduled work.
func ExampleScheduler_List() {
	s := timers.New()
	defer s.Clear()

	s.After("backup", time.Hour, func(r *timers.Ref, args ...any) {})
	s.Every("poll", time.Minute, func(r *timers.Ref, args ...any) {})

	for _, task := range s.List() {
		fmt.Println(task.ID, task.Category)
	}

	// Output:
	// backup delayed
	// poll repeating
}

// ExampleParseCategory demonstrates the accepted category spellings.
func ExampleParseCategory() {
	for _, name := range []string{"timeout", "intervals", "deferred"} {
		c, _ := timers.ParseCategory(name)
		fmt.Println(name, "->", c)
	}

	_, ok := timers.ParseCategory("bogus")
	fmt.Println("bogus recognized:", ok)

	// Output:
	// timeout -> delayed
	// intervals -> repeating
	// deferred -> deferred
	// bogus recognized: false
}
