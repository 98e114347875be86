package errors

import (
	"fmt"
	"os"
)

// LogHandler is a Handler that logs errors to stderr.
// Its HandleFatal panics after logging.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs an Error to stderr.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[statekit error] %s [%s]", err.Op, err.Kind)
		if err.Container != "" {
			fmt.Fprintf(os.Stderr, " container=%s", err.Container)
		}
		fmt.Fprintf(os.Stderr, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(os.Stderr, "[statekit error] %s: %v\n", err.Op, err.Err)
	}
}

// HandleFatal logs an Error to stderr and panics.
func (h *LogHandler) HandleFatal(err *Error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[statekit fatal] %s\n", err.Error())
	if err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
	panic(err)
}

// HandlePanic logs a PanicError to stderr.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Op != "" {
		fmt.Fprintf(os.Stderr, "[statekit panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(os.Stderr, "[statekit panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}
