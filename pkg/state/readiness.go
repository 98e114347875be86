package state

// Readiness is a rendering subscriber's report of whether it can
// currently accept a delivery. The container consumes this signal
// as-is; it never computes readiness itself.
type Readiness int

const (
	// Ready means the subscriber can accept a render call now.
	Ready Readiness = iota
	// NotPrepared means the subscriber exists but its rendering
	// surface cannot accept a render yet. Attempting delivery in this
	// condition is a fatal caller error: the subscriber was registered
	// before its surface was preparable.
	NotPrepared
	// Gone means the underlying subscriber no longer exists. The
	// container silently removes its handle on the next delivery
	// attempt.
	Gone
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case NotPrepared:
		return "not-prepared"
	case Gone:
		return "gone"
	default:
		return "unknown"
	}
}

// Renderer is the boundary contract a rendering subscriber supplies.
// Render is only invoked on the render thread, and only after
// Readiness reported Ready.
type Renderer[S any] interface {
	// Render draws the subscriber with the given state.
	Render(state S)
	// Readiness reports whether the subscriber can accept a render.
	Readiness() Readiness
}
