package testing

import (
	"sync"

	"github.com/go-drift/statekit/pkg/state"
)

// RecordingRenderer is a rendering subscriber double that records
// every delivered state. It reports Ready unless SetReadiness says
// otherwise.
type RecordingRenderer[S any] struct {
	// OnRender, if set, is invoked after each delivery is recorded.
	OnRender func(S)

	mu        sync.Mutex
	readiness state.Readiness
	states    []S
}

// NewRecordingRenderer creates a renderer double reporting Ready.
func NewRecordingRenderer[S any]() *RecordingRenderer[S] {
	return &RecordingRenderer[S]{readiness: state.Ready}
}

// Render records the delivered state.
func (r *RecordingRenderer[S]) Render(s S) {
	r.mu.Lock()
	r.states = append(r.states, s)
	fn := r.OnRender
	r.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Readiness returns the configured readiness.
func (r *RecordingRenderer[S]) Readiness() state.Readiness {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readiness
}

// SetReadiness overrides the reported readiness.
func (r *RecordingRenderer[S]) SetReadiness(readiness state.Readiness) {
	r.mu.Lock()
	r.readiness = readiness
	r.mu.Unlock()
}

// States returns a copy of every state delivered so far, in order.
func (r *RecordingRenderer[S]) States() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]S, len(r.states))
	copy(out, r.states)
	return out
}
