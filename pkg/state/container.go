package state

import (
	stderrors "errors"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/go-drift/statekit/internal/goid"
	"github.com/go-drift/statekit/pkg/errors"
	"github.com/go-drift/statekit/pkg/platform"
)

var (
	errDuplicateSubscribe = stderrors.New("subscriber already registered")
	errUnknownSubscriber  = stderrors.New("no matching subscription")
	errNilSubscriber      = stderrors.New("nil subscriber")
	errDuplicateObserve   = stderrors.New("already observing container")
	errUnknownObserved    = stderrors.New("no subscription for container")
	errObservedDisposed   = stderrors.New("observed container is disposed")
	errDisposed           = stderrors.New("container disposed")
	errNotPrepared        = stderrors.New("subscriber is not prepared to render")
	errReentrantMutation  = stderrors.New("re-entrant mutation on the same container")
	errNoDispatcher       = stderrors.New("no render-thread dispatcher registered")
)

// Container owns one immutable state value, serializes every mutation
// to it, and notifies registered subscribers when the value changes.
// All methods are safe for concurrent use.
type Container[S any] struct {
	// mu guards the state slot, the subscriber and watcher sets, and
	// the outgoing subscription map. It is released before any
	// notification side effect runs.
	mu sync.Mutex
	// buildMu serializes the builder stage of Update independently of
	// the commit stage.
	buildMu sync.Mutex

	// writeOwner and buildOwner hold the goroutine id currently inside
	// the respective critical section, for re-entrancy detection.
	writeOwner atomic.Uint64
	buildOwner atomic.Uint64

	name     string
	state    S
	equal    func(a, b S) bool
	seq      uint64
	handles  map[any]renderHandle[S]
	watchers map[weak.Pointer[changeObserver[S]]]struct{}
	outgoing map[any]invalidator
	disposed bool
}

// New creates a container with no equality function. Every commit is
// treated as a change and notifies unconditionally, even when the new
// value equals the old one. This conservative default never suppresses
// a render it cannot prove redundant; prefer NewComparable or
// NewWithEquality when the state type has meaningful equality.
func New[S any](initial S) *Container[S] {
	return NewWithEquality(initial, nil)
}

// NewComparable creates a container whose change detection uses ==.
func NewComparable[S comparable](initial S) *Container[S] {
	return NewWithEquality(initial, func(a, b S) bool { return a == b })
}

// NewWithEquality creates a container with a custom equality function.
// A nil equal behaves like New.
func NewWithEquality[S any](initial S, equal func(a, b S) bool) *Container[S] {
	return &Container[S]{
		state:    initial,
		equal:    equal,
		seq:      1,
		handles:  make(map[any]renderHandle[S]),
		watchers: make(map[weak.Pointer[changeObserver[S]]]struct{}),
		outgoing: make(map[any]invalidator),
	}
}

// SetName attaches a display name used in error reports.
func (c *Container[S]) SetName(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

// Name returns the display name set with SetName.
func (c *Container[S]) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Value returns the current state.
func (c *Container[S]) Value() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// commit is the snapshot a mutation hands to the notify pipeline after
// releasing the container lock.
type commit[S any] struct {
	state    S
	seq      uint64
	handles  []handleEntry[S]
	watchers []weak.Pointer[changeObserver[S]]
}

// Write executes tx with exclusive access to the state slot. The
// transaction may read and reassign the slot any number of times; the
// value present when it returns is the new state. If the new state
// differs from the old one per the container's equality, all
// subscribers are notified after the critical section is released.
//
// Calling Write from inside a transaction on the same container is a
// fatal error; without the guard it would deadlock. Calling it from a
// notification callback is fine, because the lock is already released
// when callbacks run.
func (c *Container[S]) Write(tx func(state *S)) {
	if tx == nil {
		return
	}
	id := goid.ID()
	if c.writeOwner.Load() == id {
		// The calling goroutine already holds c.mu, so reading name
		// directly is safe and calling Name() would deadlock.
		fatalReentrant("state.Write", c.name)
		return
	}

	changed, cm, ok := c.applyTx(id, tx)
	if !ok {
		errors.Report(&errors.Error{
			Op:        "state.Write",
			Kind:      errors.KindLifecycle,
			Container: c.Name(),
			Err:       errDisposed,
		})
		return
	}
	if changed {
		c.notify(cm)
	}
}

// applyTx runs tx inside the critical section. The unlock and owner
// reset are deferred so a panicking transaction propagates to the
// caller instead of leaving the container locked.
func (c *Container[S]) applyTx(id uint64, tx func(state *S)) (changed bool, cm commit[S], ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false, commit[S]{}, false
	}
	c.writeOwner.Store(id)
	defer c.writeOwner.Store(0)

	old := c.state
	tx(&c.state)
	next := c.state
	changed = c.equal == nil || !c.equal(old, next)
	if changed {
		c.seq++
		cm = c.snapshotLocked()
	}
	return changed, cm, true
}

func fatalReentrant(op, name string) {
	errors.Fatal(&errors.Error{
		Op:        op,
		Kind:      errors.KindLifecycle,
		Container: name,
		Err:       errReentrantMutation,
	})
}

// Update computes a candidate new state by invoking build with the
// current state, then commits the result through Write. The builder
// stage is serialized on its own lock so expensive state construction
// never holds up readers, while the commit itself remains exclusive.
func (c *Container[S]) Update(build func(state S) S) {
	if build == nil {
		return
	}
	id := goid.ID()
	if c.writeOwner.Load() == id {
		// Called from inside a Write transaction, so the calling
		// goroutine holds c.mu; without the check Value() below would
		// deadlock. Name() would too, hence the direct read.
		fatalReentrant("state.Update", c.name)
		return
	}
	if c.buildOwner.Load() == id {
		fatalReentrant("state.Update", c.Name())
		return
	}

	c.buildMu.Lock()
	c.buildOwner.Store(id)
	defer func() {
		c.buildOwner.Store(0)
		c.buildMu.Unlock()
	}()

	next := build(c.Value())
	c.Write(func(state *S) { *state = next })
}

// Dispose releases the container's subscriptions. Outgoing
// cross-container observers are invalidated, so containers this one
// was observing stop reaching it without any call on their side.
// Subsequent mutations are reported as misuse and ignored.
func (c *Container[S]) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	outgoing := c.outgoing
	c.outgoing = nil
	c.handles = nil
	c.watchers = nil
	c.mu.Unlock()

	for _, obs := range outgoing {
		obs.invalidate()
	}
}

// IsDisposed returns true if Dispose has been called.
func (c *Container[S]) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// snapshotLocked copies the notification targets while c.mu is held.
func (c *Container[S]) snapshotLocked() commit[S] {
	cm := commit[S]{
		state:    c.state,
		seq:      c.seq,
		handles:  make([]handleEntry[S], 0, len(c.handles)),
		watchers: make([]weak.Pointer[changeObserver[S]], 0, len(c.watchers)),
	}
	for key, h := range c.handles {
		cm.handles = append(cm.handles, handleEntry[S]{key: key, handle: h})
	}
	for w := range c.watchers {
		cm.watchers = append(cm.watchers, w)
	}
	return cm
}

// notify drives the post-commit pipeline: rendering subscribers first,
// on the render thread, then change observers synchronously on the
// mutating goroutine. Runs without the container lock held, so
// callbacks may mutate this or other containers.
func (c *Container[S]) notify(cm commit[S]) {
	for _, entry := range cm.handles {
		c.deliverTo(entry, cm.state, cm.seq)
	}
	for _, w := range cm.watchers {
		obs := w.Value()
		if obs == nil {
			// The owning container vanished without unsubscribing.
			c.removeWatcher(w)
			continue
		}
		obs.notify(cm.state, cm.seq)
	}
}

// deliverTo routes one delivery according to the subscriber's
// readiness and the calling goroutine's thread affinity.
func (c *Container[S]) deliverTo(entry handleEntry[S], state S, seq uint64) {
	switch r := entry.handle.readiness(); r {
	case Gone:
		c.removeHandle(entry.key)
	case NotPrepared:
		// The subscriber was registered before its surface could be
		// driven. Dropping the render here would desynchronize the
		// subscriber from real state, so this stops the program.
		errors.Fatal(&errors.Error{
			Op:        "state.deliver",
			Kind:      errors.KindRender,
			Container: c.Name(),
			Err:       errNotPrepared,
		})
	case Ready:
		if platform.OnMainThread() {
			entry.handle.deliver(state, seq)
			return
		}
		scheduled := platform.Dispatch(func() {
			entry.handle.deliver(state, seq)
		})
		if !scheduled {
			errors.Report(&errors.Error{
				Op:        "state.deliver",
				Kind:      errors.KindLifecycle,
				Container: c.Name(),
				Err:       errNoDispatcher,
			})
		}
	}
}

func (c *Container[S]) removeHandle(key any) {
	c.mu.Lock()
	delete(c.handles, key)
	c.mu.Unlock()
}

func (c *Container[S]) removeWatcher(w weak.Pointer[changeObserver[S]]) {
	c.mu.Lock()
	delete(c.watchers, w)
	c.mu.Unlock()
}

// addWatcher registers a weak observer reference and returns the
// current state and commit sequence, atomically with respect to
// commits, so the initial fire and subsequent notifications never miss
// a state between them.
func (c *Container[S]) addWatcher(w weak.Pointer[changeObserver[S]]) (S, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		var zero S
		return zero, 0, false
	}
	c.watchers[w] = struct{}{}
	return c.state, c.seq, true
}

// Subscribe registers a rendering subscriber and immediately delivers
// the current state to it once, under the same readiness rules as any
// other delivery. The container references the subscriber weakly, so
// registration never extends the subscriber's lifetime.
//
// Subscribing an already-registered subscriber is reported as misuse
// and ignored.
func Subscribe[S any, R any, PR interface {
	*R
	Renderer[S]
}](c *Container[S], sub PR) {
	if sub == nil {
		errors.Report(&errors.Error{
			Op:   "state.Subscribe",
			Kind: errors.KindMisuse,
			Err:  errNilSubscriber,
		})
		return
	}
	h := newWeakHandle[S, R, PR](sub)
	key := h.key()

	c.mu.Lock()
	if c.disposed {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Subscribe",
			Kind:      errors.KindLifecycle,
			Container: name,
			Err:       errDisposed,
		})
		return
	}
	if _, exists := c.handles[key]; exists {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Subscribe",
			Kind:      errors.KindMisuse,
			Container: name,
			Err:       errDuplicateSubscribe,
		})
		return
	}
	c.handles[key] = h
	state, seq := c.state, c.seq
	c.mu.Unlock()

	c.deliverTo(handleEntry[S]{key: key, handle: h}, state, seq)
}

// Unsubscribe removes a rendering subscriber. Unsubscribing a
// subscriber that was never registered is reported as misuse and
// ignored.
func Unsubscribe[S any, R any, PR interface {
	*R
	Renderer[S]
}](c *Container[S], sub PR) {
	if sub == nil {
		errors.Report(&errors.Error{
			Op:   "state.Unsubscribe",
			Kind: errors.KindMisuse,
			Err:  errNilSubscriber,
		})
		return
	}
	key := subscriberKey[S, R, PR](sub)

	c.mu.Lock()
	if _, exists := c.handles[key]; !exists {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Unsubscribe",
			Kind:      errors.KindMisuse,
			Container: name,
			Err:       errUnknownSubscriber,
		})
		return
	}
	delete(c.handles, key)
	c.mu.Unlock()
}

// Observe subscribes container c to changes of another container.
// onChange fires once immediately with other's current state, then
// once per change, synchronously on whichever goroutine performed the
// mutation. A fire overtaken by a newer commit is dropped, so the
// callback never settles on a stale state. c strongly owns the subscription; other only tracks it
// weakly, so disposing c ends the subscription without any call on
// other.
//
// Observing a container c already observes is reported as misuse and
// ignored.
func Observe[S any, O any](c *Container[S], other *Container[O], onChange func(O)) {
	if other == nil || onChange == nil {
		errors.Report(&errors.Error{
			Op:   "state.Observe",
			Kind: errors.KindMisuse,
			Err:  errNilSubscriber,
		})
		return
	}
	obs := newChangeObserver(onChange)

	c.mu.Lock()
	if c.disposed {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Observe",
			Kind:      errors.KindLifecycle,
			Container: name,
			Err:       errDisposed,
		})
		return
	}
	if _, exists := c.outgoing[any(other)]; exists {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Observe",
			Kind:      errors.KindMisuse,
			Container: name,
			Err:       errDuplicateObserve,
		})
		return
	}
	c.outgoing[any(other)] = obs
	c.mu.Unlock()

	initial, seq, ok := other.addWatcher(weak.Make(obs))
	if !ok {
		c.mu.Lock()
		if c.outgoing != nil {
			delete(c.outgoing, any(other))
		}
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Observe",
			Kind:      errors.KindLifecycle,
			Container: name,
			Err:       errObservedDisposed,
		})
		return
	}
	obs.notify(initial, seq)
}

// Unobserve removes c's subscription to other. The observer is
// invalidated immediately; the observed side skips it on its next fire
// and prunes the weak entry once it is collected. Unobserving a
// container c does not observe is reported as misuse and ignored.
func Unobserve[S any, O any](c *Container[S], other *Container[O]) {
	if other == nil {
		errors.Report(&errors.Error{
			Op:   "state.Unobserve",
			Kind: errors.KindMisuse,
			Err:  errNilSubscriber,
		})
		return
	}

	c.mu.Lock()
	obs, exists := c.outgoing[any(other)]
	if !exists {
		name := c.name
		c.mu.Unlock()
		errors.Report(&errors.Error{
			Op:        "state.Unobserve",
			Kind:      errors.KindMisuse,
			Container: name,
			Err:       errUnknownObserved,
		})
		return
	}
	delete(c.outgoing, any(other))
	c.mu.Unlock()

	obs.invalidate()
}
