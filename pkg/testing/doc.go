// Package testing provides deterministic test doubles for statekit.
//
// # Quick Start
//
// Create a harness, subscribe a recording renderer, mutate, and pump:
//
//	func TestCounter(t *testing.T) {
//	    harness := statetest.NewHarnessWithT(t)
//	    counter := state.NewComparable(0)
//	    view := statetest.NewRecordingRenderer[int]()
//
//	    state.Subscribe(counter, view)
//	    counter.Write(func(s *int) { *s = 5 })
//	    harness.Pump()
//
//	    got := view.States() // [0, 5]
//	}
//
// # Thread affinity
//
// Deliveries scheduled off the render thread stay queued until Pump
// runs them. To exercise the synchronous delivery path, perform the
// mutation inside RunOnMain:
//
//	harness.RunOnMain(func() {
//	    counter.Write(func(s *int) { *s = 6 })
//	})
//
// # Error assertions
//
// CapturingHandler intercepts the global error handler, so misuse
// reports and fatal conditions can be asserted without crashing:
//
//	handler := statetest.NewCapturingHandlerWithT(t)
//	state.Subscribe(counter, view)
//	state.Subscribe(counter, view) // duplicate
//	misuses := handler.ErrorsOfKind(errors.KindMisuse)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import statetest "github.com/go-drift/statekit/pkg/testing"
package testing
