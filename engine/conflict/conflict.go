// Package conflict decides what happens when a widget asks to become visible
// in a category that other widgets already occupy. It is stateless: callers
// pass copies of the entries and apply the Resolution themselves.
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/widgetcore/engine/transition"
	"github.com/nathoo/widgetcore/types"
)

// TieBreak selects the winner when requester and occupant share a priority.
type TieBreak int

const (
	// TieIncumbent keeps the occupant and treats the requester as lower.
	TieIncumbent TieBreak = iota
	// TieChallenger demotes the occupant.
	TieChallenger
)

func (t TieBreak) String() string {
	if t == TieChallenger {
		return "challenger"
	}
	return "incumbent"
}

// ParseTieBreak accepts "incumbent" or "challenger".
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incumbent":
		return TieIncumbent, nil
	case "challenger":
		return TieChallenger, nil
	default:
		return TieIncumbent, fmt.Errorf("unknown tie-break policy %q", s)
	}
}

// Demotion tells the caller to apply Mode to Widget.
type Demotion struct {
	Widget string
	Mode   types.InterruptMode
}

// Resolution is the verdict for one show request.
type Resolution struct {
	Allowed bool
	// Blocker is the highest ranked occupant that denied the request.
	Blocker string
	// Denial is the requester's own interrupt mode when Allowed is false:
	// Cancel drops the request, Queue and Pause enqueue it.
	Denial    types.InterruptMode
	Demotions []Demotion
}

// Enqueue reports whether a denied requester should wait in its category
// queue.
func (r Resolution) Enqueue() bool {
	return !r.Allowed && r.Denial != types.Cancel
}

// Occupants returns the entries other than req that share its category and
// currently hold the slot (AnimatingIn or Visible). Input order is kept.
func Occupants(req types.Entry, all []types.Entry) []types.Entry {
	var result []types.Entry
	for _, e := range all {
		if e.ID == req.ID {
			continue
		}
		if e.Config.Category != req.Config.Category {
			continue
		}
		if !transition.IsOccupying(e.State) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Resolve decides whether req may show given the category occupants.
// Concurrent requesters always proceed. Denial is all or nothing: when any
// occupant outranks the requester nobody is demoted.
func Resolve(req types.Entry, occupants []types.Entry, tie TieBreak) Resolution {
	if req.Config.AllowConcurrent || len(occupants) == 0 {
		return Resolution{Allowed: true}
	}

	var blockers []types.Entry
	var demotions []Demotion
	for _, occ := range occupants {
		if outranks(occ, req, tie) {
			blockers = append(blockers, occ)
			continue
		}
		demotions = append(demotions, Demotion{Widget: occ.ID, Mode: occ.Config.Interrupt})
	}

	if len(blockers) > 0 {
		// Rank: priority (desc), then input order.
		sort.SliceStable(blockers, func(i, j int) bool {
			return blockers[i].Config.Priority > blockers[j].Config.Priority
		})
		return Resolution{
			Allowed: false,
			Blocker: blockers[0].ID,
			Denial:  req.Config.Interrupt,
		}
	}

	return Resolution{Allowed: true, Demotions: demotions}
}

// outranks reports whether occupant keeps its slot against req.
func outranks(occupant, req types.Entry, tie TieBreak) bool {
	if occupant.Config.Priority != req.Config.Priority {
		return occupant.Config.Priority > req.Config.Priority
	}
	return tie == TieIncumbent
}
