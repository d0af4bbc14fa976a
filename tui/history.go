// Package tui provides a Bubble Tea dashboard for widgetcore: a live widget
// panel, an event log and a command line.
package tui

// History keeps recent commands for Up/Down recall. A command that is
// entered again moves to the newest slot instead of being stored twice.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records cmd as the newest entry.
func (h *History) Push(cmd string) {
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, cmd)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}

// Prev steps to the next older entry, stopping at the oldest.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps to the next newer entry. Returns ("", false) when moving past
// the newest entry, which ends navigation.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor ends navigation.
func (h *History) ResetCursor() {
	h.cursor = -1
}
