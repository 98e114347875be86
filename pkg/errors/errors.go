// Package errors provides structured error reporting for statekit.
//
// The container core never returns errors across its API boundary.
// Caller mistakes are reported through the global handler and the
// offending call becomes a no-op; unrecoverable conditions go through
// Fatal and stop the program unless a custom handler intervenes.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindMisuse indicates a non-fatal caller mistake, such as a
	// duplicate subscribe or an unsubscribe with no matching entry.
	KindMisuse
	// KindRender indicates a rendering delivery error.
	KindRender
	// KindLifecycle indicates an operation on a disposed container or
	// a missing host registration.
	KindLifecycle
	// KindConfig indicates a scenario or configuration failure.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindMisuse:
		return "misuse"
	case KindRender:
		return "render"
	case KindLifecycle:
		return "lifecycle"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error represents a structured error in statekit.
type Error struct {
	// Op is the operation that failed (e.g., "state.Subscribe").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Container names the container involved, if known.
	Container string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s [%s] container=%s: %v", e.Op, e.Kind, e.Container, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Handler receives errors reported by statekit.
type Handler interface {
	// HandleError is called for non-fatal reportable conditions.
	HandleError(err *Error)
	// HandleFatal is called for unrecoverable conditions. The default
	// handler panics; a handler that returns normally suppresses the
	// crash, which is intended for tests only.
	HandleFatal(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
