package manager

import (
	"math"
	"sort"

	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/transition"
	"github.com/nathoo/widgetcore/types"
)

// maxDrainSteps bounds slot hand-offs per operation. Equal-priority widgets
// under the challenger policy can otherwise keep evicting each other.
const maxDrainSteps = 256

// Tick advances every live entry by dt seconds; negative and non-finite dt
// count as zero. Each entry makes at most one automatic transition per call.
// Dead widgets are purged first. Slots freed during the tick are handed to
// paused or queued widgets after all entries have advanced, so a promoted
// widget starts its clock on the next tick.
func (m *Manager) Tick(dt float64) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		m.log.Warn().Float64("dt", dt).Msg("invalid tick clamped to zero")
		dt = 0
	}
	if m.reg.Len() == 0 {
		return
	}

	m.begin()
	defer m.end()

	m.ticks++
	m.clock += dt
	m.purgeDead()

	for _, id := range m.reg.IDs() {
		rec, ok := m.reg.Get(id)
		if !ok {
			continue
		}
		out := transition.Advance(&rec.Entry, dt)
		m.emit(out)
		if out.Closed {
			m.closed(rec)
		}
	}
}

func (m *Manager) scheduleDrain(cat label.Label) {
	if m.drainSet[cat] {
		return
	}
	m.drainSet[cat] = true
	m.drains = append(m.drains, cat)
}

func (m *Manager) runDrains() {
	for steps := 0; len(m.drains) > 0; steps++ {
		cat := m.drains[0]
		m.drains = m.drains[1:]
		delete(m.drainSet, cat)

		if steps >= maxDrainSteps {
			m.log.Warn().Str("category", cat.String()).Msg("slot hand-off limit reached")
			continue
		}
		m.vacate(cat)
	}
	m.drains = nil
}

// vacate hands a freed slot in cat to the best Paused widget there, or
// failing that, to the queue.
func (m *Manager) vacate(cat label.Label) {
	var paused []types.Entry
	for _, e := range m.live() {
		if e.State == types.Paused && e.Config.Category == cat {
			paused = append(paused, e)
		}
	}
	sort.SliceStable(paused, func(i, j int) bool {
		return paused[i].Config.Priority > paused[j].Config.Priority
	})
	for _, p := range paused {
		rec, ok := m.reg.Get(p.ID)
		if !ok {
			continue
		}
		if m.tryResume(rec) {
			m.log.Debug().Str("widget", p.ID).Msg("resumed into freed slot")
			return
		}
	}
	m.processQueue(cat)
}

// processQueue requests a show for the first live Closed widget in cat.
// Widgets still animating out keep their place until they close; dead,
// unregistered and occupying ids are discarded.
func (m *Manager) processQueue(cat label.Label) {
	for _, id := range m.queues.List(cat) {
		rec, ok := m.lookup(id)
		switch {
		case !ok || transition.IsOccupying(rec.Entry.State):
			m.queues.Remove(id)
			m.log.Debug().Str("widget", id).Msg("dropping stale queue entry")
		case rec.Entry.State != types.Closed:
			continue
		default:
			m.queues.Remove(id)
			m.log.Debug().Str("widget", id).Str("category", cat.String()).Msg("promoting from queue")
			m.requestShow(id)
			return
		}
	}
}
