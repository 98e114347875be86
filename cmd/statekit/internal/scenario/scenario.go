// Package scenario loads and validates the declarative scenario files
// consumed by the statekit CLI.
package scenario

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedSchema is the scenario schema major version this build
// understands.
const SupportedSchema = "v1"

// Compare selects a container's change-detection mode.
type Compare string

const (
	// CompareValue gates notification on value equality.
	CompareValue Compare = "value"
	// CompareNone treats every commit as a change.
	CompareNone Compare = "none"
)

// Scenario describes a set of containers, their subscribers, and a
// sequence of mutations to drive through them.
type Scenario struct {
	Schema     string          `yaml:"schema"`
	Name       string          `yaml:"name"`
	Containers []ContainerDecl `yaml:"containers"`
	Renderers  []RendererDecl  `yaml:"renderers"`
	Links      []LinkDecl      `yaml:"links"`
	Steps      []Step          `yaml:"steps"`
}

// ContainerDecl declares one string-state container.
type ContainerDecl struct {
	Name    string  `yaml:"name"`
	Initial string  `yaml:"initial"`
	Compare Compare `yaml:"compare,omitempty"`
}

// RendererDecl attaches a named console renderer to a container.
type RendererDecl struct {
	Name      string `yaml:"name"`
	Container string `yaml:"container"`
}

// LinkDecl declares a cross-container subscription: From observes To
// and mirrors its state.
type LinkDecl struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Step is one scripted action. Exactly one member must be set.
type Step struct {
	Write       *WriteStep       `yaml:"write,omitempty"`
	Update      *UpdateStep      `yaml:"update,omitempty"`
	Unsubscribe *UnsubscribeStep `yaml:"unsubscribe,omitempty"`
	Unlink      *UnlinkStep      `yaml:"unlink,omitempty"`
}

// WriteStep commits a new value through the container's Write path.
type WriteStep struct {
	Container string `yaml:"container"`
	Value     string `yaml:"value"`
}

// UpdateStep appends a suffix to the current value through the
// container's Update path, exercising the builder stage.
type UpdateStep struct {
	Container string `yaml:"container"`
	Append    string `yaml:"append"`
}

// UnsubscribeStep detaches a renderer from its container.
type UnsubscribeStep struct {
	Renderer string `yaml:"renderer"`
}

// UnlinkStep removes a cross-container subscription.
type UnlinkStep struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks schema compatibility and referential integrity.
func (s *Scenario) Validate() error {
	if s.Schema == "" {
		return fmt.Errorf("scenario is missing a schema version")
	}
	if !semver.IsValid(s.Schema) {
		return fmt.Errorf("invalid schema version %q", s.Schema)
	}
	if semver.Major(s.Schema) != SupportedSchema {
		return fmt.Errorf("unsupported schema %s: this build supports %s", s.Schema, SupportedSchema)
	}
	if len(s.Containers) == 0 {
		return fmt.Errorf("scenario declares no containers")
	}

	containers := make(map[string]bool, len(s.Containers))
	for _, c := range s.Containers {
		if c.Name == "" {
			return fmt.Errorf("container with empty name")
		}
		if containers[c.Name] {
			return fmt.Errorf("duplicate container %q", c.Name)
		}
		switch c.Compare {
		case "", CompareValue, CompareNone:
		default:
			return fmt.Errorf("container %q: unknown compare mode %q", c.Name, c.Compare)
		}
		containers[c.Name] = true
	}

	renderers := make(map[string]bool, len(s.Renderers))
	for _, r := range s.Renderers {
		if r.Name == "" {
			return fmt.Errorf("renderer with empty name")
		}
		if renderers[r.Name] {
			return fmt.Errorf("duplicate renderer %q", r.Name)
		}
		if !containers[r.Container] {
			return fmt.Errorf("renderer %q references unknown container %q", r.Name, r.Container)
		}
		renderers[r.Name] = true
	}

	links := make(map[LinkDecl]bool, len(s.Links))
	for _, l := range s.Links {
		if !containers[l.From] {
			return fmt.Errorf("link references unknown container %q", l.From)
		}
		if !containers[l.To] {
			return fmt.Errorf("link references unknown container %q", l.To)
		}
		if l.From == l.To {
			return fmt.Errorf("link from %q to itself", l.From)
		}
		if links[l] {
			return fmt.Errorf("duplicate link %s -> %s", l.From, l.To)
		}
		links[l] = true
	}

	for i, step := range s.Steps {
		if err := step.validate(i, containers, renderers, links); err != nil {
			return err
		}
	}
	return nil
}

func (st *Step) validate(i int, containers, renderers map[string]bool, links map[LinkDecl]bool) error {
	set := 0
	if st.Write != nil {
		set++
		if !containers[st.Write.Container] {
			return fmt.Errorf("step %d: write references unknown container %q", i, st.Write.Container)
		}
	}
	if st.Update != nil {
		set++
		if !containers[st.Update.Container] {
			return fmt.Errorf("step %d: update references unknown container %q", i, st.Update.Container)
		}
	}
	if st.Unsubscribe != nil {
		set++
		if !renderers[st.Unsubscribe.Renderer] {
			return fmt.Errorf("step %d: unsubscribe references unknown renderer %q", i, st.Unsubscribe.Renderer)
		}
	}
	if st.Unlink != nil {
		set++
		if !links[LinkDecl{From: st.Unlink.From, To: st.Unlink.To}] {
			return fmt.Errorf("step %d: unlink references unknown link %s -> %s", i, st.Unlink.From, st.Unlink.To)
		}
	}
	if set != 1 {
		return fmt.Errorf("step %d: exactly one action required, got %d", i, set)
	}
	return nil
}
