package state

import (
	"sync"
	"sync/atomic"
)

// invalidator is the owning container's type-erased view of an
// outgoing cross-container subscription.
type invalidator interface {
	invalidate()
}

// changeObserver wraps an on-change callback for container-to-container
// subscription. The subscribing container owns it strongly; the
// observed container tracks it only weakly, so its firing loop must
// tolerate observers that have become invalid or unreachable.
type changeObserver[S any] struct {
	mu sync.Mutex
	fn func(S)
	// lastSeq is the newest commit this observer has fired for.
	// Commits on the observed container fire from their mutating
	// goroutines, so a stale fire can arrive after a newer one; the
	// guard drops it, like weakHandle.deliver does for renders.
	lastSeq atomic.Uint64
}

func newChangeObserver[S any](fn func(S)) *changeObserver[S] {
	return &changeObserver[S]{fn: fn}
}

// notify invokes the callback with the new state, unless a newer
// commit has already fired. The callback runs without the observer
// lock held, so it may freely unsubscribe or mutate containers.
func (o *changeObserver[S]) notify(state S, seq uint64) {
	for {
		last := o.lastSeq.Load()
		if seq <= last {
			return
		}
		if o.lastSeq.CompareAndSwap(last, seq) {
			break
		}
	}
	o.mu.Lock()
	fn := o.fn
	o.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

// invalidate clears the callback. Safe to call more than once.
func (o *changeObserver[S]) invalidate() {
	o.mu.Lock()
	o.fn = nil
	o.mu.Unlock()
}
