// Package platform supplies the host-environment plumbing consumed by
// the state containers: a way to schedule a callback on the render
// thread and a way to ask whether the calling goroutine is that
// thread. Hosts either register their own hooks or run a Loop.
package platform

import "sync"

var (
	dispatchMu      sync.RWMutex
	dispatchFunc    func(callback func())
	mainThreadCheck func() bool
)

// RegisterDispatch sets the dispatch function used to schedule callbacks
// on the render thread. This should be called once by the host during
// initialization. Pass nil to clear the registration.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// RegisterMainThreadCheck sets the predicate that reports whether the
// calling goroutine is the render thread. Pass nil to clear the
// registration, after which OnMainThread always returns false.
func RegisterMainThreadCheck(fn func() bool) {
	dispatchMu.Lock()
	mainThreadCheck = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback to run on the render thread.
// Returns true if the callback was successfully scheduled, false if no
// dispatch function is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// OnMainThread reports whether the calling goroutine is the render
// thread. Without a registered check it returns false, which makes
// every delivery take the asynchronous path.
func OnMainThread() bool {
	dispatchMu.RLock()
	fn := mainThreadCheck
	dispatchMu.RUnlock()
	if fn == nil {
		return false
	}
	return fn()
}
