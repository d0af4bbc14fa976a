// Package handle provides non-owning references to host widgets.
//
// The manager never keeps a widget alive. It asks the handle whether the
// widget still exists and treats a dead handle as if the widget had never
// been registered.
package handle

import "weak"

// Handle identifies a host-owned widget.
type Handle interface {
	// ID is stable for the lifetime of the widget and unique per manager.
	ID() string
	// Alive reports whether the widget can still be resolved.
	Alive() bool
}

// Destroyable is implemented by host objects that can be torn down while
// still referenced elsewhere.
type Destroyable interface {
	Destroyed() bool
}

// Weak is a Handle backed by a weak pointer. It is dead once the object has
// been collected or, for Destroyable objects, once Destroyed reports true.
type Weak[T any] struct {
	id  string
	ptr weak.Pointer[T]
}

// NewWeak returns a weak handle to obj.
func NewWeak[T any](id string, obj *T) Weak[T] {
	return Weak[T]{id: id, ptr: weak.Make(obj)}
}

func (w Weak[T]) ID() string { return w.id }

func (w Weak[T]) Alive() bool {
	_, ok := w.Resolve()
	return ok
}

// Resolve returns the object if it is still alive.
func (w Weak[T]) Resolve() (*T, bool) {
	v := w.ptr.Value()
	if v == nil {
		return nil, false
	}
	if d, ok := any(v).(Destroyable); ok && d.Destroyed() {
		return nil, false
	}
	return v, true
}

// Func adapts an id and a liveness callback into a Handle. A nil callback
// means always alive.
type Func struct {
	Key     string
	IsAlive func() bool
}

func (f Func) ID() string { return f.Key }

func (f Func) Alive() bool {
	return f.IsAlive == nil || f.IsAlive()
}

// Static returns a handle that never dies.
func Static(id string) Handle {
	return Func{Key: id}
}
