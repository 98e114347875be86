package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/statekit/pkg/errors"
)

// CapturingHandler is an errors.Handler double that records reports
// instead of logging. Its HandleFatal returns normally, so fatal paths
// can be asserted without crashing the test binary.
type CapturingHandler struct {
	mu     sync.Mutex
	errs   []*errors.Error
	fatals []*errors.Error
	panics []*errors.PanicError
}

// NewCapturingHandlerWithT installs a capturing handler as the global
// error handler and restores the default via t.Cleanup.
func NewCapturingHandlerWithT(t *testing.T) *CapturingHandler {
	h := &CapturingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func (h *CapturingHandler) HandleError(err *errors.Error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *CapturingHandler) HandleFatal(err *errors.Error) {
	h.mu.Lock()
	h.fatals = append(h.fatals, err)
	h.mu.Unlock()
}

func (h *CapturingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	h.panics = append(h.panics, err)
	h.mu.Unlock()
}

// Errors returns the non-fatal errors captured so far.
func (h *CapturingHandler) Errors() []*errors.Error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*errors.Error, len(h.errs))
	copy(out, h.errs)
	return out
}

// Fatals returns the fatal errors captured so far.
func (h *CapturingHandler) Fatals() []*errors.Error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*errors.Error, len(h.fatals))
	copy(out, h.fatals)
	return out
}

// ErrorsOfKind filters captured non-fatal errors by kind.
func (h *CapturingHandler) ErrorsOfKind(kind errors.ErrorKind) []*errors.Error {
	var out []*errors.Error
	for _, err := range h.Errors() {
		if err.Kind == kind {
			out = append(out, err)
		}
	}
	return out
}
