// Package transition implements the widget lifecycle transitions as pure
// functions over a single entry. It never looks at other entries; conflict
// handling and queueing are the manager's job.
//
//	Closed -> AnimatingIn -> Visible -> AnimatingOut -> Closed
//	                         Visible <-> Paused
package transition

import (
	"math"

	"github.com/nathoo/widgetcore/types"
)

// Outcome describes what a transition did to an entry.
type Outcome struct {
	Events  []types.Event
	Changed bool // at least one state change happened
	Shown   bool // the entry reached Visible
	Closed  bool // the entry finished AnimatingOut and is now Closed
}

func (o *Outcome) merge(other Outcome) {
	o.Events = append(o.Events, other.Events...)
	o.Changed = o.Changed || other.Changed
	o.Shown = o.Shown || other.Shown
	o.Closed = o.Closed || other.Closed
}

// IsOccupying reports whether a widget in state s holds its category slot.
func IsOccupying(s types.WidgetState) bool {
	return s == types.AnimatingIn || s == types.Visible
}

// Show starts animating the entry in. Entries already AnimatingIn or Visible
// are left alone. A zero TransitionIn lands on Visible immediately.
func Show(e *types.Entry) Outcome {
	var out Outcome
	switch e.State {
	case types.AnimatingIn, types.Visible:
		return out
	}
	setState(e, types.AnimatingIn, &out)
	if e.Config.TransitionIn <= 0 {
		completeIn(e, &out)
	}
	return out
}

// Hide starts animating the entry out. Closed and AnimatingOut entries are
// left alone. A zero TransitionOut lands on Closed immediately.
func Hide(e *types.Entry) Outcome {
	var out Outcome
	switch e.State {
	case types.Closed, types.AnimatingOut:
		return out
	}
	setState(e, types.AnimatingOut, &out)
	if e.Config.TransitionOut <= 0 {
		completeOut(e, &out)
	}
	return out
}

// Pause freezes a Visible or AnimatingIn entry.
func Pause(e *types.Entry) Outcome {
	var out Outcome
	if !IsOccupying(e.State) {
		return out
	}
	setState(e, types.Paused, &out)
	return out
}

// Force sets the state directly, skipping every rule above. Forcing the
// current state only resets StateElapsed.
func Force(e *types.Entry, to types.WidgetState) Outcome {
	var out Outcome
	if e.State == to {
		e.StateElapsed = 0
		return out
	}
	setState(e, to, &out)
	switch to {
	case types.Visible:
		e.VisibleElapsed = 0
		out.Shown = true
	case types.Closed:
		e.VisibleElapsed = 0
	}
	return out
}

// Advance moves the entry's clocks forward by dt and applies at most one
// automatic transition. Closed and Paused entries do not advance, and a
// negative or non-finite dt counts as zero.
func Advance(e *types.Entry, dt float64) Outcome {
	var out Outcome
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	switch e.State {
	case types.Closed, types.Paused:
		return out
	}

	e.StateElapsed += dt
	if e.State == types.Visible {
		e.VisibleElapsed += dt
	}

	switch e.State {
	case types.AnimatingIn:
		if e.StateElapsed >= e.Config.TransitionIn {
			completeIn(e, &out)
		}
	case types.AnimatingOut:
		if e.StateElapsed >= e.Config.TransitionOut {
			completeOut(e, &out)
		}
	case types.Visible:
		if e.Config.AutoClose > 0 && e.VisibleElapsed >= e.Config.AutoClose {
			out.merge(Hide(e))
		}
	}
	return out
}

func setState(e *types.Entry, to types.WidgetState, out *Outcome) {
	from := e.State
	e.State = to
	e.StateElapsed = 0
	out.Changed = true
	out.Events = append(out.Events, types.Event{
		Kind:   types.EventStateChanged,
		Widget: e.ID,
		From:   from,
		To:     to,
	})
}

func completeIn(e *types.Entry, out *Outcome) {
	setState(e, types.Visible, out)
	e.VisibleElapsed = 0
	out.Shown = true
	out.Events = append(out.Events, types.Event{
		Kind:   types.EventTransitionComplete,
		Widget: e.ID,
		Phase:  types.PhaseIn,
	})
}

func completeOut(e *types.Entry, out *Outcome) {
	setState(e, types.Closed, out)
	e.VisibleElapsed = 0
	out.Closed = true
	out.Events = append(out.Events, types.Event{
		Kind:   types.EventTransitionComplete,
		Widget: e.ID,
		Phase:  types.PhaseOut,
	})
}
