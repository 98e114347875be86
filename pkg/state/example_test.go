package state_test

import (
	"fmt"

	"github.com/go-drift/statekit/pkg/state"
	statetest "github.com/go-drift/statekit/pkg/testing"
)

// This example shows the basic lifecycle of a container: subscribe a
// renderer, mutate the state, and pump the render thread.
func ExampleContainer() {
	harness := statetest.NewHarness()
	defer harness.Cleanup()

	counter := state.NewComparable(0)
	view := statetest.NewRecordingRenderer[int]()
	view.OnRender = func(v int) {
		fmt.Printf("rendered %d\n", v)
	}

	// Subscribing delivers the current state once.
	state.Subscribe(counter, view)
	harness.Pump()

	counter.Write(func(s *int) { *s = 5 })
	harness.Pump()

	// An unchanged commit delivers nothing.
	counter.Write(func(s *int) { *s = 5 })
	harness.Pump()

	// Output:
	// rendered 0
	// rendered 5
}

// This example shows Update, which serializes expensive state
// construction separately from the commit.
func ExampleContainer_Update() {
	prices := state.NewComparable(100)

	prices.Update(func(current int) int {
		// Potentially expensive derivation of the next state.
		return current + 10
	})

	fmt.Println(prices.Value())

	// Output:
	// 110
}

// This example shows container-to-container observation. The observing
// container strongly owns the subscription; the observed side only
// tracks it weakly.
func ExampleObserve() {
	session := state.NewComparable("signed-out")
	toolbar := state.NewComparable("")

	state.Observe(toolbar, session, func(v string) {
		fmt.Println("session is now", v)
	})

	session.Write(func(s *string) { *s = "signed-in" })

	state.Unobserve(toolbar, session)
	session.Write(func(s *string) { *s = "expired" })

	// Output:
	// session is now signed-out
	// session is now signed-in
}

// This example shows a container whose state type has no meaningful
// equality: every commit notifies, even when the value is unchanged.
func ExampleNew() {
	refresh := state.New([]string{"a"})

	fires := 0
	watcher := state.NewComparable(0)
	state.Observe(watcher, refresh, func([]string) { fires++ })

	refresh.Write(func(s *[]string) { *s = []string{"a"} })
	refresh.Write(func(s *[]string) { *s = []string{"a"} })

	fmt.Println(fires)

	// Output:
	// 3
}
