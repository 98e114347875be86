package state_test

import (
	"runtime"
	"testing"

	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/state"
	statetest "github.com/go-drift/statekit/pkg/testing"
)

func TestObserveFiresImmediatelyWithCurrentState(t *testing.T) {
	source := state.NewComparable("ready")
	sink := state.NewComparable("")

	var got []string
	state.Observe(sink, source, func(v string) { got = append(got, v) })

	if len(got) != 1 || got[0] != "ready" {
		t.Errorf("initial fire = %v, want [ready]", got)
	}
}

func TestObserveFiresOncePerChange(t *testing.T) {
	source := state.NewComparable("x")
	sink := state.NewComparable("")

	var got []string
	state.Observe(sink, source, func(v string) { got = append(got, v) })

	source.Write(func(s *string) { *s = "y" })

	if len(got) != 2 || got[1] != "y" {
		t.Errorf("fires = %v, want [x y]", got)
	}

	// Unchanged commit fires nothing.
	source.Write(func(s *string) { *s = "y" })
	if len(got) != 2 {
		t.Errorf("fires = %v, want no fire for an unchanged commit", got)
	}
}

func TestUnobserveStopsFiring(t *testing.T) {
	source := state.NewComparable(0)
	sink := state.NewComparable(0)

	fired := 0
	state.Observe(sink, source, func(int) { fired++ })
	state.Unobserve(sink, source)

	source.Write(func(s *int) { *s = 1 })

	if fired != 1 {
		t.Errorf("fired = %d, want only the initial fire", fired)
	}
}

func TestDuplicateObserveIsMisuse(t *testing.T) {
	handler := statetest.NewCapturingHandlerWithT(t)
	source := state.NewComparable(0)
	sink := state.NewComparable(0)

	fired := 0
	state.Observe(sink, source, func(int) { fired++ })
	state.Observe(sink, source, func(int) { fired++ })

	if n := len(handler.ErrorsOfKind(errors.KindMisuse)); n != 1 {
		t.Errorf("misuse reports = %d, want 1", n)
	}

	source.Write(func(s *int) { *s = 1 })
	// Initial fire plus one change fire; the rejected duplicate must
	// contribute nothing.
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
}

func TestUnobserveUnknownIsMisuse(t *testing.T) {
	handler := statetest.NewCapturingHandlerWithT(t)
	source := state.NewComparable(0)
	sink := state.NewComparable(0)

	state.Unobserve(sink, source)

	if n := len(handler.ErrorsOfKind(errors.KindMisuse)); n != 1 {
		t.Errorf("misuse reports = %d, want 1", n)
	}
}

func TestDisposeInvalidatesOutgoingObservers(t *testing.T) {
	source := state.NewComparable(0)
	sink := state.NewComparable(0)

	fired := 0
	state.Observe(sink, source, func(int) { fired++ })
	sink.Dispose()

	source.Write(func(s *int) { *s = 1 })

	if fired != 1 {
		t.Errorf("fired = %d, want no fire after the observing container is disposed", fired)
	}
}

// observeTransient attaches an observer whose owning container becomes
// unreachable as soon as this function returns.
func observeTransient(source *state.Container[int], fired *int) {
	sink := state.NewComparable(0)
	state.Observe(sink, source, func(int) { (*fired)++ })
}

func TestVanishedObservingContainerIsSkipped(t *testing.T) {
	source := state.NewComparable(0)

	fired := 0
	observeTransient(source, &fired)
	if fired != 1 {
		t.Fatalf("fired = %d after initial fire, want 1", fired)
	}

	runtime.GC()
	runtime.GC()

	source.Write(func(s *int) { *s = 1 })
	source.Write(func(s *int) { *s = 2 })

	if fired != 1 {
		t.Errorf("fired = %d, want the collected observer to be skipped", fired)
	}
}

func TestObserveDisposedContainerIsRejected(t *testing.T) {
	handler := statetest.NewCapturingHandlerWithT(t)
	source := state.NewComparable(0)
	sink := state.NewComparable(0)
	source.Dispose()

	fired := 0
	state.Observe(sink, source, func(int) { fired++ })

	if fired != 0 {
		t.Errorf("fired = %d, want no fire from a disposed source", fired)
	}
	if n := len(handler.ErrorsOfKind(errors.KindLifecycle)); n != 1 {
		t.Errorf("lifecycle reports = %d, want 1", n)
	}

	// The failed attempt must not leave a phantom entry behind.
	state.Unobserve(sink, source)
	if n := len(handler.ErrorsOfKind(errors.KindMisuse)); n != 1 {
		t.Errorf("misuse reports = %d, want Unobserve to find nothing", n)
	}
}

func TestObserveChainPropagates(t *testing.T) {
	a := state.NewComparable(0)
	b := state.NewComparable(0)
	c := state.NewComparable(0)

	state.Observe(b, a, func(v int) {
		b.Write(func(s *int) { *s = v + 1 })
	})
	state.Observe(c, b, func(v int) {
		c.Write(func(s *int) { *s = v + 1 })
	})

	a.Write(func(s *int) { *s = 10 })

	if got := b.Value(); got != 11 {
		t.Errorf("b Value = %d, want 11", got)
	}
	if got := c.Value(); got != 12 {
		t.Errorf("c Value = %d, want 12", got)
	}
}
