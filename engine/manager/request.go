package manager

import (
	"github.com/nathoo/widgetcore/engine/conflict"
	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/engine/transition"
	"github.com/nathoo/widgetcore/types"
)

// RequestShow asks for id to become visible. It returns true when the entry
// is (or already was) animating in or visible. A denied request returns
// false; depending on the widget's interrupt mode it waits in its category
// queue.
func (m *Manager) RequestShow(id string) bool {
	m.begin()
	defer m.end()
	return m.requestShow(id)
}

func (m *Manager) requestShow(id string) bool {
	rec, ok := m.lookup(id)
	if !ok {
		return false
	}
	if transition.IsOccupying(rec.Entry.State) {
		return true
	}

	res := m.resolve(rec)
	if !res.Allowed {
		ev := m.log.Debug().
			Str("widget", id).
			Str("blocker", res.Blocker).
			Str("mode", res.Denial.String())
		if res.Enqueue() {
			m.queues.Enqueue(rec.Entry.Config.Category, id)
			ev.Msg("show denied, queued")
		} else {
			ev.Msg("show denied")
		}
		return false
	}
	m.show(rec, res)
	return true
}

// RequestHide starts animating id out. Hiding a Closed or AnimatingOut
// widget is a no-op that still reports success; a queued request for the
// widget is dropped.
func (m *Manager) RequestHide(id string) bool {
	m.begin()
	defer m.end()

	rec, ok := m.lookup(id)
	if !ok {
		return false
	}
	m.queues.Remove(id)
	m.hide(rec)
	return true
}

// ResumeWidget brings a Paused widget back. The resume goes through the
// same conflict check as a show request; when it loses, the widget stays
// Paused and the category queue is processed instead.
func (m *Manager) ResumeWidget(id string) bool {
	m.begin()
	defer m.end()

	rec, ok := m.lookup(id)
	if !ok || rec.Entry.State != types.Paused {
		return false
	}
	if m.tryResume(rec) {
		return true
	}
	m.processQueue(rec.Entry.Config.Category)
	return false
}

func (m *Manager) tryResume(rec *state.Record) bool {
	res := m.resolve(rec)
	if !res.Allowed {
		m.log.Debug().
			Str("widget", rec.Entry.ID).
			Str("blocker", res.Blocker).
			Msg("resume denied")
		return false
	}
	m.show(rec, res)
	return true
}

// ForceWidgetState sets the state directly, bypassing conflict resolution,
// queue promotion and the pending-destroy set. Returns false for unknown
// widgets and invalid states.
func (m *Manager) ForceWidgetState(id string, s types.WidgetState) bool {
	if s < types.Closed || s > types.AnimatingOut {
		return false
	}

	m.begin()
	defer m.end()

	rec, ok := m.lookup(id)
	if !ok {
		return false
	}
	m.emit(transition.Force(&rec.Entry, s))
	if s != types.Closed {
		m.queues.Remove(id)
	}
	m.log.Debug().Str("widget", id).Str("state", s.String()).Msg("forced")
	return true
}

// ProcessQueue offers the slot of cat to the front of its queue. It runs
// automatically whenever a slot frees up; hosts only need it after
// ForceWidgetState.
func (m *Manager) ProcessQueue(cat label.Label) {
	m.begin()
	defer m.end()
	m.processQueue(cat)
}

func (m *Manager) resolve(rec *state.Record) conflict.Resolution {
	occupants := conflict.Occupants(rec.Entry, m.live())
	return conflict.Resolve(rec.Entry, occupants, m.tieBreak)
}

// show applies the demotions of an allowed resolution and animates rec in.
// Demotions that close a widget only schedule a drain, so the freed slot is
// offered to the queue after rec has taken it.
func (m *Manager) show(rec *state.Record, res conflict.Resolution) {
	id := rec.Entry.ID
	for _, d := range res.Demotions {
		m.demote(d)
	}
	m.queues.Remove(id)
	delete(m.pending, id)
	m.emit(transition.Show(&rec.Entry))
}

func (m *Manager) demote(d conflict.Demotion) {
	rec, ok := m.reg.Get(d.Widget)
	if !ok {
		return
	}
	m.log.Debug().Str("widget", d.Widget).Str("mode", d.Mode.String()).Msg("demoted")

	switch d.Mode {
	case types.Pause:
		m.emit(transition.Pause(&rec.Entry))
	case types.Queue:
		m.hide(rec)
		m.queues.Enqueue(rec.Entry.Config.Category, d.Widget)
	default:
		m.hide(rec)
	}
}

func (m *Manager) hide(rec *state.Record) {
	out := transition.Hide(&rec.Entry)
	m.emit(out)
	if out.Closed {
		m.closed(rec)
	}
}

// closed records that rec finished animating out.
func (m *Manager) closed(rec *state.Record) {
	m.pending[rec.Entry.ID] = struct{}{}
	m.scheduleDrain(rec.Entry.Config.Category)
}
