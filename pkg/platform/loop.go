package platform

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-drift/statekit/internal/goid"
)

// Loop is a render-thread implementation for hosts that do not bring
// their own UI event loop. Run pins the calling goroutine as the
// render thread and drains posted callbacks in FIFO order until the
// context is cancelled.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
	gid   atomic.Uint64
}

// NewLoop creates a loop. Call Install to wire it into the dispatch
// registry, then Run from the goroutine that should act as the render
// thread.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Install registers the loop's Post and IsCurrent with the package
// registries. Returns a function restoring the previous registrations
// to nil.
func (l *Loop) Install() func() {
	RegisterDispatch(l.Post)
	RegisterMainThreadCheck(l.IsCurrent)
	return func() {
		RegisterDispatch(nil)
		RegisterMainThreadCheck(nil)
	}
}

// Post enqueues a callback for execution on the loop goroutine.
// Safe to call from any goroutine, including the loop itself.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// IsCurrent reports whether the calling goroutine is the one running Run.
func (l *Loop) IsCurrent() bool {
	return goid.ID() == l.gid.Load()
}

// Run processes posted callbacks until ctx is cancelled. Callbacks
// already queued when cancellation arrives are drained before Run
// returns, so no scheduled delivery is lost.
func (l *Loop) Run(ctx context.Context) {
	l.gid.Store(goid.ID())
	defer l.gid.Store(0)

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		callbacks := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
	}
}
