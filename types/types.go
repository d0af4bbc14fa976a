// Package types defines the shared data structures for widgetcore.
// Apart from the enum string conversions it contains no logic.
package types

import (
	"fmt"
	"strings"

	"github.com/nathoo/widgetcore/engine/label"
)

// WidgetState is the lifecycle state of a managed widget.
type WidgetState int

const (
	Closed WidgetState = iota
	AnimatingIn
	Visible
	Paused
	AnimatingOut
)

var widgetStateNames = [...]string{
	Closed:       "closed",
	AnimatingIn:  "animating_in",
	Visible:      "visible",
	Paused:       "paused",
	AnimatingOut: "animating_out",
}

func (s WidgetState) String() string {
	if s < 0 || int(s) >= len(widgetStateNames) {
		return fmt.Sprintf("WidgetState(%d)", int(s))
	}
	return widgetStateNames[s]
}

// AllStates lists every WidgetState in lifecycle order.
func AllStates() []WidgetState {
	return []WidgetState{Closed, AnimatingIn, Visible, Paused, AnimatingOut}
}

// ParseWidgetState accepts "visible", "Animating-In", "animating_out", ...
func ParseWidgetState(s string) (WidgetState, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, name := range widgetStateNames {
		if name == norm || strings.ReplaceAll(name, "_", "") == norm {
			return WidgetState(i), nil
		}
	}
	return Closed, fmt.Errorf("unknown widget state %q", s)
}

// InterruptMode governs what happens to a widget when it loses a conflict.
type InterruptMode int

const (
	Cancel InterruptMode = iota
	Queue
	Pause
)

var interruptModeNames = [...]string{
	Cancel: "cancel",
	Queue:  "queue",
	Pause:  "pause",
}

func (m InterruptMode) String() string {
	if m < 0 || int(m) >= len(interruptModeNames) {
		return fmt.Sprintf("InterruptMode(%d)", int(m))
	}
	return interruptModeNames[m]
}

// ParseInterruptMode accepts "cancel", "queue" or "pause".
func ParseInterruptMode(s string) (InterruptMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for i, name := range interruptModeNames {
		if name == norm {
			return InterruptMode(i), nil
		}
	}
	return Cancel, fmt.Errorf("unknown interrupt mode %q", s)
}

// Phase identifies which transition a transition-complete event finished.
type Phase int

const (
	PhaseIn Phase = iota
	PhaseOut
)

func (p Phase) String() string {
	if p == PhaseOut {
		return "out"
	}
	return "in"
}

// StateConfig is fixed at registration time. Durations are in seconds.
type StateConfig struct {
	Priority        int
	Interrupt       InterruptMode
	TransitionIn    float64
	TransitionOut   float64
	Category        label.Label
	AutoClose       float64 // 0 disables auto-close
	AllowConcurrent bool
}

// Entry is the per-widget runtime record.
type Entry struct {
	ID             string
	State          WidgetState
	Config         StateConfig
	StateElapsed   float64
	VisibleElapsed float64
}

// EventKind discriminates Event.
type EventKind string

const (
	EventStateChanged       EventKind = "state_changed"
	EventTransitionComplete EventKind = "transition_complete"
)

// Event is emitted by the manager for the host to react to.
// From/To are set for state_changed, Phase for transition_complete.
type Event struct {
	Kind   EventKind
	Widget string
	From   WidgetState
	To     WidgetState
	Phase  Phase
}

func (e Event) String() string {
	if e.Kind == EventTransitionComplete {
		return fmt.Sprintf("%s: transition %s complete", e.Widget, e.Phase)
	}
	return fmt.Sprintf("%s: %s -> %s", e.Widget, e.From, e.To)
}

// Command is the parsed representation of a driver command.
type Command struct {
	Verb   string
	Widget string   // optional
	Args   []string // verb-specific
}

// Result is the output of a single driver step.
type Result struct {
	Commands []Command
	Events   []Event
	Output   []string
}

// SceneDef holds scene metadata from Lua.
type SceneDef struct {
	Title    string
	Author   string
	Version  string
	Intro    string
	TickStep float64 // seconds advanced by a bare "tick"
}

// WidgetDef is the definition of a widget the host can create.
type WidgetDef struct {
	ID          string
	Name        string
	Description string
	Config      StateConfig
	Register    bool // register with the manager at scene start
	SourceOrder int
}

// ReactionDef runs Commands when an event matches. A zero Widget matches
// every widget; Phase is only consulted for transition_complete.
type ReactionDef struct {
	Kind     EventKind
	Widget   string
	To       WidgetState
	AnyState bool
	Phase    Phase
	Commands []Command
}
