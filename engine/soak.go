package engine

import (
	"fmt"
	"sort"

	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/manager"
	"github.com/nathoo/widgetcore/engine/transition"
	"github.com/nathoo/widgetcore/types"
)

// SoakReport summarizes a Soak run.
type SoakReport struct {
	Steps      int
	Events     int
	Verbs      map[string]int
	Violations []string
}

// soakVerbs are the commands Soak draws from, with their weights. force is
// left out because it deliberately bypasses the invariants being checked.
var soakVerbs = []struct {
	verb   string
	weight int
}{
	{"show", 30},
	{"hide", 15},
	{"tick", 30},
	{"resume", 6},
	{"register", 6},
	{"unregister", 3},
	{"destroy", 2},
	{"drain", 4},
}

// Soak drives steps random commands through Step and checks the manager
// invariants after each one. It stops at the first violation.
func (e *Engine) Soak(steps int) SoakReport {
	report := SoakReport{Verbs: map[string]int{}}

	ids := e.Defs.WidgetIDs()
	if len(ids) == 0 {
		return report
	}
	weights := make([]int, len(soakVerbs))
	for i, v := range soakVerbs {
		weights[i] = v.weight
	}

	for i := 0; i < steps; i++ {
		verb := soakVerbs[e.RNG.WeightedSelect(weights)].verb
		var input string
		switch verb {
		case "tick":
			input = fmt.Sprintf("tick %.2f", float64(e.RNG.Roll(8))*e.TickStep()/2)
		case "drain":
			input = "drain"
		default:
			input = verb + " " + ids[e.RNG.Roll(len(ids))-1]
		}

		res := e.Step(input)
		report.Steps++
		report.Verbs[verb]++
		report.Events += len(res.Events)

		if v := CheckInvariants(e.Manager); len(v) > 0 {
			for _, msg := range v {
				report.Violations = append(report.Violations, fmt.Sprintf("step %d (%s): %s", i+1, input, msg))
			}
			e.log.Error().Int("step", i+1).Str("input", input).Strs("violations", v).Msg("invariant violated")
			break
		}
	}
	return report
}

// CheckInvariants returns a description of every broken manager invariant:
//   - at most one non-concurrent occupant per category
//   - queued widgets are not occupying and sit in exactly one queue
//   - pending-destroy widgets are registered and Closed
//   - Closed entries have zeroed timers
func CheckInvariants(m *manager.Manager) []string {
	var violations []string

	entries := map[string]types.Entry{}
	occupants := map[label.Label][]string{}
	for _, e := range m.Entries() {
		entries[e.ID] = e
		if transition.IsOccupying(e.State) && !e.Config.AllowConcurrent {
			occupants[e.Config.Category] = append(occupants[e.Config.Category], e.ID)
		}
		if e.State == types.Closed && (e.StateElapsed != 0 || e.VisibleElapsed != 0) {
			violations = append(violations, fmt.Sprintf("%s is closed with running timers", e.ID))
		}
	}

	cats := make([]label.Label, 0, len(occupants))
	for cat := range occupants {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	for _, cat := range cats {
		if ids := occupants[cat]; len(ids) > 1 {
			violations = append(violations, fmt.Sprintf("%s has %d exclusive occupants: %v", cat, len(ids), ids))
		}
	}

	seen := map[string]label.Label{}
	for _, cat := range m.QueuedCategories() {
		for _, id := range m.Queued(cat) {
			if prev, ok := seen[id]; ok {
				violations = append(violations, fmt.Sprintf("%s is queued in both %s and %s", id, prev, cat))
			}
			seen[id] = cat
			if where, ok := m.QueuedIn(id); !ok || where != cat {
				violations = append(violations, fmt.Sprintf("%s is listed in %s but indexed under %q", id, cat, where))
			}

			e, ok := entries[id]
			switch {
			case !ok:
				// Dead or unregistered ids are dropped lazily on promotion.
			case transition.IsOccupying(e.State):
				violations = append(violations, fmt.Sprintf("%s is queued while %s", id, e.State))
			case e.Config.Category != cat:
				violations = append(violations, fmt.Sprintf("%s is queued in %s but belongs to %s", id, cat, e.Config.Category))
			}
		}
	}

	for _, id := range m.PendingDestroy() {
		e, ok := entries[id]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s is pending destroy but not registered", id))
			continue
		}
		if e.State != types.Closed {
			violations = append(violations, fmt.Sprintf("%s is pending destroy while %s", id, e.State))
		}
	}

	return violations
}
