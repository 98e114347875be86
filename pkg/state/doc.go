// Package state provides generic state containers that bind immutable
// state values to rendering subscribers.
//
// A Container holds the current state for one component, serializes
// every mutation to it, and notifies a dynamic set of subscribers when
// the value changes. Rendering subscribers are always driven on the
// render thread; container-to-container observers fire synchronously
// on the mutating goroutine.
//
// # Containers
//
// Containers are created with an initial value and an optional
// equality function:
//
//	counter := state.NewComparable(0)
//	settings := state.NewWithEquality(cfg, func(a, b Config) bool {
//	    return a.Revision == b.Revision
//	})
//
// Without equality (state.New) every commit is treated as a change and
// notifies unconditionally. That is a deliberate conservative default:
// a container must never silently suppress a render it cannot prove
// redundant.
//
// # Mutation
//
// Write runs a transaction with exclusive access to the state slot;
// Update serializes an expensive builder step separately and hands the
// result to Write for the commit:
//
//	counter.Write(func(s *int) { *s = 5 })
//	counter.Update(func(s int) int { return s + 1 })
//
// Mutations on one container never interleave. A transaction that
// re-enters Write on the same container is detected and surfaced as a
// fatal error rather than deadlocking.
//
// # Rendering subscribers
//
// A rendering subscriber implements Renderer and is registered with
// Subscribe, which delivers the current state to it once immediately:
//
//	state.Subscribe(counter, view)
//	state.Unsubscribe(counter, view)
//
// The container holds subscribers weakly: a subscriber that becomes
// unreachable is pruned on the next delivery attempt without error.
// A subscriber that reports it is not prepared to render is a fatal
// condition, because the caller subscribed a surface that cannot yet
// be driven.
//
// # Cross-container observation
//
// Containers compose by observing each other:
//
//	state.Observe(derived, source, func(v Source) {
//	    derived.Write(func(s *Derived) { s.Source = v })
//	})
//	state.Unobserve(derived, source)
//
// The observing container strongly owns its subscription; the observed
// container tracks it only weakly, so disposing the observer side is
// enough to end the subscription.
package state
