package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/widgetcore/types"
)

// renderStatusBar produces a full-width inverted status line showing the
// scene, the simulated clock, queue and pending-destroy counts and the
// auto-tick state.
func (m Model) renderStatusBar() string {
	mgr := m.engine.Manager

	queued := 0
	for _, cat := range mgr.QueuedCategories() {
		queued += len(mgr.Queued(cat))
	}

	left := fmt.Sprintf(" %s | t=%.2fs | ticks %d", m.defs.Scene.Title, mgr.Clock(), mgr.Ticks())

	auto := "auto off"
	if m.autoTick {
		auto = "auto " + m.opts.TickRate.String()
	}
	right := fmt.Sprintf("queued %d | pending %d | %s ", queued, len(mgr.PendingDestroy()), auto)
	if m.trace {
		right = "trace | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderWidgetPanel draws one row per managed widget: id, state, category,
// time in state, and a Q marker for widgets waiting in a category queue.
func (m Model) renderWidgetPanel() string {
	mgr := m.engine.Manager
	entries := mgr.Entries()

	queued := map[string]bool{}
	for _, cat := range mgr.QueuedCategories() {
		for _, id := range mgr.Queued(cat) {
			queued[id] = true
		}
	}

	idW, catW := len("WIDGET"), len("CATEGORY")
	for _, e := range entries {
		idW = max(idW, len(e.ID))
		catW = max(catW, len(e.Config.Category))
	}
	stateW := len("animating_out")

	rows := []string{stylePanelHeader.Render(fmt.Sprintf("%-*s  %-*s  %-*s  %7s  %s",
		idW, "WIDGET", stateW, "STATE", catW, "CATEGORY", "ELAPSED", "PRI"))}
	if len(entries) == 0 {
		rows = append(rows, styleSystem.Render("No widgets registered."))
	}
	for _, e := range entries {
		rows = append(rows, renderWidgetRow(e, queued[e.ID], idW, stateW, catW))
	}

	panel := stylePanel
	if m.width > 2 {
		panel = panel.Width(m.width - 2)
	}
	return panel.Render(strings.Join(rows, "\n"))
}

func renderWidgetRow(e types.Entry, isQueued bool, idW, stateW, catW int) string {
	st := styleForState(e.State).Render(fmt.Sprintf("%-*s", stateW, e.State))
	marker := ""
	if isQueued {
		marker = " Q"
	}
	if e.Config.AllowConcurrent {
		marker += " C"
	}
	return fmt.Sprintf("%-*s  %s  %-*s  %6.2fs  %3d%s",
		idW, e.ID, st, catW, e.Config.Category, e.StateElapsed, e.Config.Priority, marker)
}
