package testing

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-drift/statekit/internal/goid"
	"github.com/go-drift/statekit/pkg/platform"
)

// Harness is a deterministic stand-in for the host render thread.
// Deliveries scheduled by containers are queued until Pump executes
// them; during Pump (and RunOnMain) the calling goroutine counts as
// the render thread.
type Harness struct {
	mu      sync.Mutex
	queue   []func()
	mainGID atomic.Uint64
}

// NewHarness creates a harness and registers it with the platform
// dispatch registries. Call Cleanup when done, or use NewHarnessWithT.
func NewHarness() *Harness {
	h := &Harness{}
	platform.RegisterDispatch(h.post)
	platform.RegisterMainThreadCheck(h.onMain)
	return h
}

// NewHarnessWithT creates a harness that unregisters itself via
// t.Cleanup. This is the recommended constructor for tests.
func NewHarnessWithT(t *testing.T) *Harness {
	h := NewHarness()
	t.Cleanup(h.Cleanup)
	return h
}

// Cleanup clears the platform registrations. Must be called if not
// using NewHarnessWithT.
func (h *Harness) Cleanup() {
	platform.RegisterDispatch(nil)
	platform.RegisterMainThreadCheck(nil)
}

func (h *Harness) post(fn func()) {
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()
}

func (h *Harness) onMain() bool {
	return goid.ID() == h.mainGID.Load()
}

// Pending returns the number of deliveries waiting for Pump.
func (h *Harness) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Pump runs all queued deliveries, including ones scheduled while
// pumping, and returns how many ran. The calling goroutine is treated
// as the render thread for the duration.
func (h *Harness) Pump() int {
	h.mainGID.Store(goid.ID())
	defer h.mainGID.Store(0)

	total := 0
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return total
		}
		callbacks := h.queue
		h.queue = nil
		h.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
		total += len(callbacks)
	}
}

// RunOnMain executes fn with the calling goroutine treated as the
// render thread, so container mutations inside fn deliver
// synchronously.
func (h *Harness) RunOnMain(fn func()) {
	h.mainGID.Store(goid.ID())
	defer h.mainGID.Store(0)
	fn()
}
