package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"

	"github.com/go-drift/statekit/cmd/statekit/cmd"
	"github.com/go-drift/statekit/pkg/errors"
)

func main() {
	godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("STATEKIT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" {
			level = slog.LevelDebug
		}
	}
	initLogger(level)

	// Route library error reports through the structured logger.
	errors.SetHandler(&slogErrorHandler{fallback: &errors.LogHandler{}})

	if err := cmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func initLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

// slogErrorHandler adapts the library's error reporting to slog.
// Fatal conditions still take the default crash path after logging.
type slogErrorHandler struct {
	fallback *errors.LogHandler
}

func (h *slogErrorHandler) HandleError(err *errors.Error) {
	if err == nil {
		return
	}
	slog.Warn("statekit report", "op", err.Op, "kind", err.Kind.String(), "container", err.Container, "error", err.Err)
}

func (h *slogErrorHandler) HandleFatal(err *errors.Error) {
	if err == nil {
		return
	}
	slog.Error("statekit fatal", "op", err.Op, "kind", err.Kind.String(), "container", err.Container, "error", err.Err)
	h.fallback.HandleFatal(err)
}

func (h *slogErrorHandler) HandlePanic(err *errors.PanicError) {
	if err == nil {
		return
	}
	slog.Error("statekit panic", "op", err.Op, "value", err.Value)
}
