// Package events delivers manager events to observers and turns scene
// reactions into follow-up commands. Reaction dispatch is single pass:
// commands produced by a reaction do not trigger further reactions.
package events

import "github.com/nathoo/widgetcore/types"

// Observer receives every event the manager emits.
type Observer func(types.Event)

type subscription struct {
	id int
	fn Observer
}

// Bus is an ordered observer list.
type Bus struct {
	nextID int
	subs   []subscription
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Observer) func() {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every observer in subscription order. Observers added or
// removed during Publish take effect on the next event.
func (b *Bus) Publish(ev types.Event) {
	subs := b.subs
	for _, s := range subs {
		s.fn(ev)
	}
}

// Matches reports whether reaction r fires for ev.
func Matches(r types.ReactionDef, ev types.Event) bool {
	if r.Kind != ev.Kind {
		return false
	}
	if r.Widget != "" && r.Widget != ev.Widget {
		return false
	}
	switch ev.Kind {
	case types.EventStateChanged:
		return r.AnyState || r.To == ev.To
	case types.EventTransitionComplete:
		return r.Phase == ev.Phase
	}
	return false
}

// Dispatch runs reactions against the emitted events and returns the
// commands of every match, in event order then reaction order.
func Dispatch(evts []types.Event, reactions []types.ReactionDef) []types.Command {
	var result []types.Command

	for _, ev := range evts {
		for _, r := range reactions {
			if !Matches(r, ev) {
				continue
			}
			result = append(result, r.Commands...)
		}
	}

	return result
}
