// Package state holds the immutable scene definitions and the mutable,
// insertion-ordered registry of widget entries.
package state

import (
	"sort"

	"github.com/nathoo/widgetcore/engine/handle"
	"github.com/nathoo/widgetcore/types"
)

// Defs holds the immutable scene definitions loaded from Lua.
type Defs struct {
	Scene     types.SceneDef
	Widgets   map[string]types.WidgetDef
	Reactions []types.ReactionDef
}

// WidgetIDs returns widget ids in source order.
func (d *Defs) WidgetIDs() []string {
	ids := make([]string, 0, len(d.Widgets))
	for id := range d.Widgets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, oj := d.Widgets[ids[i]].SourceOrder, d.Widgets[ids[j]].SourceOrder
		if oi != oj {
			return oi < oj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// WidgetName returns the display name of a widget, falling back to its id.
func (d *Defs) WidgetName(id string) string {
	if w, ok := d.Widgets[id]; ok && w.Name != "" {
		return w.Name
	}
	return id
}

// Record pairs a handle with its runtime entry.
type Record struct {
	Handle handle.Handle
	Entry  types.Entry
}

// Registry stores records keyed by id and remembers insertion order.
type Registry struct {
	order   []string
	records map[string]*Record
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: map[string]*Record{}}
}

// Add inserts a Closed entry for h. Returns false if the id is taken.
func (r *Registry) Add(h handle.Handle, cfg types.StateConfig) (*Record, bool) {
	id := h.ID()
	if _, ok := r.records[id]; ok {
		return nil, false
	}
	rec := &Record{
		Handle: h,
		Entry:  types.Entry{ID: id, State: types.Closed, Config: cfg},
	}
	r.records[id] = rec
	r.order = append(r.order, id)
	return rec, true
}

// Get returns the record without checking liveness.
func (r *Registry) Get(id string) (*Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Remove deletes the record for id.
func (r *Registry) Remove(id string) (*Record, bool) {
	rec, ok := r.records[id]
	if !ok {
		return nil, false
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return rec, true
}

// IDs returns the registered ids in insertion order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.order)
}

// Entries returns copies of every entry in insertion order.
func (r *Registry) Entries() []types.Entry {
	out := make([]types.Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id].Entry)
	}
	return out
}
