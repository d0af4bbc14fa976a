// Package snapshot captures the manager's state as YAML for inspection and
// replay. Entries cannot be restored field by field; a snapshot is restored
// by replaying its command log against a fresh engine with the same seed.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/widgetcore/engine/manager"
)

// Widget is one entry as it appears in a snapshot.
type Widget struct {
	ID             string  `yaml:"id"`
	State          string  `yaml:"state"`
	Category       string  `yaml:"category"`
	Priority       int     `yaml:"priority"`
	Interrupt      string  `yaml:"interrupt"`
	Concurrent     bool    `yaml:"concurrent,omitempty"`
	StateElapsed   float64 `yaml:"state_elapsed"`
	VisibleElapsed float64 `yaml:"visible_elapsed"`
}

// Snapshot is the YAML document written by /state and /dump.
type Snapshot struct {
	Version        string              `yaml:"version,omitempty"`
	Scene          string              `yaml:"scene,omitempty"`
	Clock          float64             `yaml:"clock"`
	Ticks          uint64              `yaml:"ticks"`
	TieBreak       string              `yaml:"tie_break"`
	Seed           int64               `yaml:"seed"`
	RNGPosition    int64               `yaml:"rng_position"`
	Widgets        []Widget            `yaml:"widgets"`
	Queues         map[string][]string `yaml:"queues,omitempty"`
	PendingDestroy []string            `yaml:"pending_destroy,omitempty"`
	CommandLog     []string            `yaml:"command_log,omitempty"`
}

// Take reads every live entry, queue and pending destroy from m. Scene
// metadata and the command log are filled in by the caller.
func Take(m *manager.Manager) *Snapshot {
	s := &Snapshot{
		Clock:    m.Clock(),
		Ticks:    m.Ticks(),
		TieBreak: m.TieBreak().String(),
		Queues:   map[string][]string{},
	}
	for _, e := range m.Entries() {
		s.Widgets = append(s.Widgets, Widget{
			ID:             e.ID,
			State:          e.State.String(),
			Category:       e.Config.Category.String(),
			Priority:       e.Config.Priority,
			Interrupt:      e.Config.Interrupt.String(),
			Concurrent:     e.Config.AllowConcurrent,
			StateElapsed:   e.StateElapsed,
			VisibleElapsed: e.VisibleElapsed,
		})
	}
	for _, cat := range m.QueuedCategories() {
		s.Queues[cat.String()] = m.Queued(cat)
	}
	if pending := m.PendingDestroy(); len(pending) > 0 {
		s.PendingDestroy = pending
	}
	return s
}

// Marshal renders s as YAML.
func Marshal(s *Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}

// Unmarshal parses a YAML snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if s.Queues == nil {
		s.Queues = map[string][]string{}
	}
	return &s, nil
}

// Widget returns the snapshot entry for id.
func (s *Snapshot) Widget(id string) (Widget, bool) {
	for _, w := range s.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// WriteFile writes s to dir/name.yaml, creating dir if needed, and returns
// the path written.
func WriteFile(dir, name string, s *Snapshot) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "snapshot"
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}

	data, err := Marshal(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dump dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// ReadFile loads a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Unmarshal(data)
}
