package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/go-drift/statekit/cmd/statekit/internal/frames"
	"github.com/go-drift/statekit/cmd/statekit/internal/scenario"
	"github.com/go-drift/statekit/pkg/platform"
	"github.com/go-drift/statekit/pkg/state"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Run a scenario file",
		Long: `Run a scenario against real state containers.

The scenario's containers are created with the declared change
detection, renderers are subscribed, links are observed, and the step
list is applied from a worker goroutine while the main goroutine acts
as the render loop. Every render delivery is logged; with --frames
each delivery is also captured as a PNG frame.

Usage:
  statekit run <scenario.yaml>                Run a scenario
  statekit run <scenario.yaml> --frames DIR   Run and capture frames`,
		Usage: "statekit run <scenario.yaml> [--frames DIR]",
		Run:   runRun,
	})
}

// consoleRenderer is the rendering subscriber used by the scenario
// runner: it logs each delivery and optionally captures it as a frame.
type consoleRenderer struct {
	name   string
	log    *slog.Logger
	writer *frames.Writer
	count  atomic.Int64
}

func (r *consoleRenderer) Render(s string) {
	n := r.count.Add(1)
	r.log.Info("render", "renderer", r.name, "state", s, "delivery", n)
	if r.writer != nil {
		if _, err := r.writer.Capture(r.name, s); err != nil {
			r.log.Warn("frame capture failed", "renderer", r.name, "error", err)
		}
	}
}

func (r *consoleRenderer) Readiness() state.Readiness {
	return state.Ready
}

func runRun(args []string) error {
	framesDir := os.Getenv("STATEKIT_FRAMES_DIR")
	var path string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--frames":
			if i+1 >= len(args) {
				return fmt.Errorf("--frames requires a directory path")
			}
			framesDir = args[i+1]
			i++
		default:
			if v, ok := trimFlag(arg, "frames"); ok {
				framesDir = v
				continue
			}
			if path != "" {
				return fmt.Errorf("unexpected argument %q", arg)
			}
			path = arg
		}
	}
	if path == "" {
		return fmt.Errorf("scenario file is required\n\nUsage: statekit run <scenario.yaml> [--frames DIR]")
	}

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	log := slog.With("run", runID, "scenario", s.Name)

	var writer *frames.Writer
	if framesDir != "" {
		writer, err = frames.NewWriter(framesDir, runID)
		if err != nil {
			return err
		}
	}

	containers := make(map[string]*state.Container[string], len(s.Containers))
	for _, decl := range s.Containers {
		var c *state.Container[string]
		if decl.Compare == scenario.CompareNone {
			c = state.New(decl.Initial)
		} else {
			c = state.NewComparable(decl.Initial)
		}
		c.SetName(decl.Name)
		containers[decl.Name] = c
	}

	// The runner keeps strong references to its renderers; the
	// containers themselves only hold them weakly.
	renderers := make(map[string]*consoleRenderer, len(s.Renderers))
	rendererTargets := make(map[string]*state.Container[string], len(s.Renderers))
	for _, decl := range s.Renderers {
		r := &consoleRenderer{name: decl.Name, log: log, writer: writer}
		renderers[decl.Name] = r
		rendererTargets[decl.Name] = containers[decl.Container]
	}

	loop := platform.NewLoop()
	restore := loop.Install()
	defer restore()

	for _, decl := range s.Renderers {
		state.Subscribe(rendererTargets[decl.Name], renderers[decl.Name])
	}
	for _, link := range s.Links {
		from := containers[link.From]
		to := containers[link.To]
		state.Observe(from, to, func(v string) {
			from.Write(func(s *string) { *s = v })
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		for i, step := range s.Steps {
			applyStep(log, i, step, containers, renderers, rendererTargets)
		}
	}()

	log.Info("scenario started", "containers", len(containers), "renderers", len(renderers), "steps", len(s.Steps))
	loop.Run(ctx)

	total := int64(0)
	for _, r := range renderers {
		total += r.count.Load()
	}
	log.Info("scenario finished", "deliveries", total, "frames", frameCount(writer))
	return nil
}

func frameCount(w *frames.Writer) int {
	if w == nil {
		return 0
	}
	return w.Count()
}

func applyStep(
	log *slog.Logger,
	i int,
	step scenario.Step,
	containers map[string]*state.Container[string],
	renderers map[string]*consoleRenderer,
	rendererTargets map[string]*state.Container[string],
) {
	switch {
	case step.Write != nil:
		log.Debug("step", "index", i, "action", "write", "container", step.Write.Container, "value", step.Write.Value)
		value := step.Write.Value
		containers[step.Write.Container].Write(func(s *string) { *s = value })
	case step.Update != nil:
		log.Debug("step", "index", i, "action", "update", "container", step.Update.Container, "append", step.Update.Append)
		suffix := step.Update.Append
		containers[step.Update.Container].Update(func(s string) string { return s + suffix })
	case step.Unsubscribe != nil:
		log.Debug("step", "index", i, "action", "unsubscribe", "renderer", step.Unsubscribe.Renderer)
		state.Unsubscribe(rendererTargets[step.Unsubscribe.Renderer], renderers[step.Unsubscribe.Renderer])
	case step.Unlink != nil:
		log.Debug("step", "index", i, "action", "unlink", "from", step.Unlink.From, "to", step.Unlink.To)
		state.Unobserve(containers[step.Unlink.From], containers[step.Unlink.To])
	}
}
