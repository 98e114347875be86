// Package goid exposes the identity of the calling goroutine.
//
// The runtime offers no public API for this, so the id is parsed from
// the header line of runtime.Stack. That line is formatted as
// "goroutine N [state]:" and has been stable across every Go release
// since 1.0. The cost is one small stack capture per call, which is
// acceptable for the thread-affinity checks this module performs.
package goid

import "runtime"

// ID returns the id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Skip "goroutine " and accumulate digits until the space before
	// the state field.
	const prefix = len("goroutine ")
	var id uint64
	for i := prefix; i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
