package state

import (
	"sync/atomic"
	"weak"
)

// renderHandle is the container's type-erased view of one rendering
// subscriber.
type renderHandle[S any] interface {
	// readiness resolves the underlying subscriber and returns its
	// current readiness, or Gone if it no longer exists.
	readiness() Readiness
	// deliver renders state for commit seq on the render thread,
	// unless a newer commit has already been delivered to this
	// subscriber.
	deliver(state S, seq uint64)
}

// handleEntry pairs a handle with its identity key in the subscriber set.
type handleEntry[S any] struct {
	key    any
	handle renderHandle[S]
}

// weakHandle wraps a concrete subscriber without keeping it alive.
// The weak pointer doubles as the handle's identity: weak pointers to
// the same subscriber instance compare equal, so re-wrapping the same
// subscriber is recognized as a duplicate.
type weakHandle[S any, R any, PR interface {
	*R
	Renderer[S]
}] struct {
	ref weak.Pointer[R]
	// lastSeq is the newest commit delivered to this subscriber.
	// Touched only on the render thread; atomic because synchronous
	// and queued deliveries may originate from different goroutines
	// over the handle's lifetime.
	lastSeq atomic.Uint64
}

func newWeakHandle[S any, R any, PR interface {
	*R
	Renderer[S]
}](sub PR) *weakHandle[S, R, PR] {
	return &weakHandle[S, R, PR]{ref: weak.Make((*R)(sub))}
}

// key returns the identity used for set membership and duplicate
// detection.
func (h *weakHandle[S, R, PR]) key() any {
	return h.ref
}

func (h *weakHandle[S, R, PR]) readiness() Readiness {
	sub := h.ref.Value()
	if sub == nil {
		return Gone
	}
	return PR(sub).Readiness()
}

func (h *weakHandle[S, R, PR]) deliver(state S, seq uint64) {
	if seq <= h.lastSeq.Load() {
		// A newer commit was already delivered; drop the stale one so
		// the subscriber never observes states out of commit order.
		return
	}
	sub := h.ref.Value()
	if sub == nil {
		// Vanished between scheduling and execution; the next
		// mutation prunes the handle.
		return
	}
	h.lastSeq.Store(seq)
	PR(sub).Render(state)
}

// subscriberKey computes the identity a subscriber would have in the
// set without constructing a handle.
func subscriberKey[S any, R any, PR interface {
	*R
	Renderer[S]
}](sub PR) any {
	return weak.Make((*R)(sub))
}
