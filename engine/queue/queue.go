// Package queue keeps the per-category FIFO of widgets waiting for a slot.
// A widget id is in at most one queue at a time.
package queue

import (
	"sort"

	"github.com/nathoo/widgetcore/engine/label"
)

// Queues maps categories to their waiting widget ids.
type Queues struct {
	byCategory map[label.Label][]string
	where      map[string]label.Label
}

// New returns empty queues.
func New() *Queues {
	return &Queues{
		byCategory: map[label.Label][]string{},
		where:      map[string]label.Label{},
	}
}

// Enqueue appends id to the back of cat. An id already waiting in cat keeps
// its place; an id waiting elsewhere is moved. Returns false if id was
// already in cat.
func (q *Queues) Enqueue(cat label.Label, id string) bool {
	if cur, ok := q.where[id]; ok {
		if cur == cat {
			return false
		}
		q.Remove(id)
	}
	q.byCategory[cat] = append(q.byCategory[cat], id)
	q.where[id] = cat
	return true
}

// Remove drops id from whichever queue holds it.
func (q *Queues) Remove(id string) bool {
	cat, ok := q.where[id]
	if !ok {
		return false
	}
	delete(q.where, id)
	ids := q.byCategory[cat]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(q.byCategory, cat)
	} else {
		q.byCategory[cat] = ids
	}
	return true
}

// Contains reports whether id is waiting anywhere, and where.
func (q *Queues) Contains(id string) (label.Label, bool) {
	cat, ok := q.where[id]
	return cat, ok
}

// List returns a copy of cat's queue, front first.
func (q *Queues) List(cat label.Label) []string {
	ids := q.byCategory[cat]
	if len(ids) == 0 {
		return nil
	}
	return append([]string(nil), ids...)
}

// Categories returns the non-empty categories in sorted order.
func (q *Queues) Categories() []label.Label {
	cats := make([]label.Label, 0, len(q.byCategory))
	for c := range q.byCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
