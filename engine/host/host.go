// Package host simulates the UI toolkit that owns widget objects. The
// manager only ever sees weak handles; destroying a widget here makes its
// handle dead, which is how the driver exercises lazy purging.
package host

import (
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nathoo/widgetcore/engine/handle"
)

// Widget is a host-owned UI object.
type Widget struct {
	ID       string
	Name     string
	Instance uuid.UUID

	destroyed bool
}

// Destroyed reports whether the widget has been torn down.
func (w *Widget) Destroyed() bool {
	return w.destroyed
}

// Host owns every spawned widget.
type Host struct {
	widgets map[string]*Widget
	log     zerolog.Logger
}

// New returns an empty host.
func New(log zerolog.Logger) *Host {
	return &Host{
		widgets: map[string]*Widget{},
		log:     log.With().Str("component", "host").Logger(),
	}
}

// Spawn creates a widget and returns a weak handle to it. Spawning an id that
// is still alive returns a handle to the existing widget.
func (h *Host) Spawn(id, name string) handle.Weak[Widget] {
	if w, ok := h.widgets[id]; ok {
		return handle.NewWeak(id, w)
	}
	w := &Widget{ID: id, Name: name, Instance: uuid.New()}
	h.widgets[id] = w
	h.log.Debug().Str("widget", id).Str("instance", w.Instance.String()).Msg("spawned")
	return handle.NewWeak(id, w)
}

// Get returns the live widget for id.
func (h *Host) Get(id string) (*Widget, bool) {
	w, ok := h.widgets[id]
	return w, ok
}

// Destroy tears the widget down and drops the host's reference.
func (h *Host) Destroy(id string) bool {
	w, ok := h.widgets[id]
	if !ok {
		return false
	}
	w.destroyed = true
	delete(h.widgets, id)
	h.log.Debug().Str("widget", id).Str("instance", w.Instance.String()).Msg("destroyed")
	return true
}

// DestroyAll destroys every listed widget and returns how many existed.
func (h *Host) DestroyAll(ids []string) int {
	n := 0
	for _, id := range ids {
		if h.Destroy(id) {
			n++
		}
	}
	return n
}

// Live returns the ids of live widgets, sorted.
func (h *Host) Live() []string {
	ids := make([]string, 0, len(h.widgets))
	for id := range h.widgets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
