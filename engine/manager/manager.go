// Package manager implements the widget state machine manager: the single
// writer that owns every entry, the category queues and the pending-destroy
// set. Transition and conflict decisions are delegated to the stateless
// transition and conflict packages.
//
// The manager is not safe for concurrent use. The host calls it from one
// goroutine (its UI or game loop) and drives time through Tick.
package manager

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/nathoo/widgetcore/engine/conflict"
	"github.com/nathoo/widgetcore/engine/events"
	"github.com/nathoo/widgetcore/engine/handle"
	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/queue"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/engine/transition"
	"github.com/nathoo/widgetcore/types"
)

var (
	// ErrInvalidHandle is returned for nil, anonymous or dead handles.
	ErrInvalidHandle = errors.New("invalid widget handle")
	// ErrDuplicateRegistration is returned when the id is already managed.
	// The original entry is kept.
	ErrDuplicateRegistration = errors.New("widget already registered")
	// ErrInvalidConfig is returned for negative priorities or durations and
	// malformed categories.
	ErrInvalidConfig = errors.New("invalid widget config")
)

// Manager tracks widget lifecycles. Create one per UI session with New.
type Manager struct {
	reg     *state.Registry
	queues  *queue.Queues
	pending map[string]struct{}
	bus     events.Bus
	log     zerolog.Logger

	tieBreak conflict.TieBreak
	strict   bool

	// Events are buffered while an operation runs and published when the
	// outermost operation returns.
	outbox   []types.Event
	depth    int
	flushing bool

	// Categories whose slot was freed, processed before the outermost
	// operation returns.
	drains   []label.Label
	drainSet map[label.Label]bool

	clock float64
	ticks uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = l.With().Str("component", "manager").Logger()
	}
}

// WithTieBreak sets the equal-priority policy. Default TieIncumbent.
func WithTieBreak(t conflict.TieBreak) Option {
	return func(m *Manager) {
		m.tieBreak = t
	}
}

// WithStrictConfig controls whether invalid numeric config is rejected
// (default) or clamped to zero.
func WithStrictConfig(strict bool) Option {
	return func(m *Manager) {
		m.strict = strict
	}
}

// New creates an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		reg:      state.NewRegistry(),
		queues:   queue.New(),
		pending:  map[string]struct{}{},
		log:      zerolog.Nop(),
		tieBreak: conflict.TieIncumbent,
		strict:   true,
		drainSet: map[label.Label]bool{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TieBreak returns the configured equal-priority policy.
func (m *Manager) TieBreak() conflict.TieBreak {
	return m.tieBreak
}

// Register starts tracking h in the Closed state.
func (m *Manager) Register(h handle.Handle, cfg types.StateConfig) error {
	if h == nil || h.ID() == "" {
		return ErrInvalidHandle
	}
	id := h.ID()
	if !h.Alive() {
		return fmt.Errorf("%w: %q is not alive", ErrInvalidHandle, id)
	}
	if _, ok := m.lookup(id); ok {
		m.log.Info().Str("widget", id).Msg("duplicate registration ignored")
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, id)
	}

	cfg, err := m.checkConfig(id, cfg)
	if err != nil {
		m.log.Warn().Str("widget", id).Err(err).Msg("registration rejected")
		return err
	}

	m.reg.Add(h, cfg)
	m.log.Debug().
		Str("widget", id).
		Str("category", cfg.Category.String()).
		Int("priority", cfg.Priority).
		Str("interrupt", cfg.Interrupt.String()).
		Msg("registered")
	return nil
}

func (m *Manager) checkConfig(id string, cfg types.StateConfig) (types.StateConfig, error) {
	if err := cfg.Category.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %q: category: %v", ErrInvalidConfig, id, err)
	}
	if cfg.Interrupt < types.Cancel || cfg.Interrupt > types.Pause {
		return cfg, fmt.Errorf("%w: %q: unknown interrupt mode %d", ErrInvalidConfig, id, int(cfg.Interrupt))
	}

	var problems []string
	fix := func(name string, v *float64) {
		if *v < 0 {
			problems = append(problems, fmt.Sprintf("%s %v < 0", name, *v))
			*v = 0
		}
	}
	if cfg.Priority < 0 {
		problems = append(problems, fmt.Sprintf("priority %d < 0", cfg.Priority))
		cfg.Priority = 0
	}
	fix("transition_in", &cfg.TransitionIn)
	fix("transition_out", &cfg.TransitionOut)
	fix("auto_close", &cfg.AutoClose)

	if len(problems) == 0 {
		return cfg, nil
	}
	if m.strict {
		return cfg, fmt.Errorf("%w: %q: %v", ErrInvalidConfig, id, problems)
	}
	m.log.Warn().Str("widget", id).Strs("clamped", problems).Msg("config clamped")
	return cfg, nil
}

// Unregister removes the entry immediately, whatever its state. No
// animate-out runs and no transition-complete event fires.
func (m *Manager) Unregister(id string) bool {
	m.begin()
	defer m.end()

	rec, ok := m.lookup(id)
	if !ok {
		return false
	}
	old := rec.Entry.State
	m.remove(rec)
	if old != types.Closed {
		m.emit(transition.Outcome{Events: []types.Event{{
			Kind:   types.EventStateChanged,
			Widget: id,
			From:   old,
			To:     types.Closed,
		}}})
	}
	m.log.Debug().Str("widget", id).Str("state", old.String()).Msg("unregistered")
	return true
}

// IsManaged reports whether id has an entry whose widget is still alive.
func (m *Manager) IsManaged(id string) bool {
	_, ok := m.lookup(id)
	return ok
}

// lookup returns the live record for id, purging it if its handle died.
func (m *Manager) lookup(id string) (*state.Record, bool) {
	rec, ok := m.reg.Get(id)
	if !ok {
		return nil, false
	}
	if !rec.Handle.Alive() {
		m.log.Info().Str("widget", id).Msg("purging dead widget")
		m.remove(rec)
		return nil, false
	}
	return rec, true
}

// remove drops rec from every structure. A freed slot is scheduled for
// draining.
func (m *Manager) remove(rec *state.Record) {
	id := rec.Entry.ID
	m.reg.Remove(id)
	m.queues.Remove(id)
	delete(m.pending, id)
	if transition.IsOccupying(rec.Entry.State) {
		m.scheduleDrain(rec.Entry.Config.Category)
	}
}

// live returns copies of every entry whose handle is alive.
func (m *Manager) live() []types.Entry {
	var out []types.Entry
	for _, id := range m.reg.IDs() {
		rec, _ := m.reg.Get(id)
		if rec.Handle.Alive() {
			out = append(out, rec.Entry)
		}
	}
	return out
}

// Subscribe registers an observer for every event. Observers may call back
// into the manager.
func (m *Manager) Subscribe(fn events.Observer) (unsubscribe func()) {
	return m.bus.Subscribe(fn)
}

// OnStateChanged subscribes to state_changed events only.
func (m *Manager) OnStateChanged(fn func(id string, from, to types.WidgetState)) (unsubscribe func()) {
	return m.bus.Subscribe(func(ev types.Event) {
		if ev.Kind == types.EventStateChanged {
			fn(ev.Widget, ev.From, ev.To)
		}
	})
}

// OnTransitionComplete subscribes to transition_complete events only.
func (m *Manager) OnTransitionComplete(fn func(id string, phase types.Phase)) (unsubscribe func()) {
	return m.bus.Subscribe(func(ev types.Event) {
		if ev.Kind == types.EventTransitionComplete {
			fn(ev.Widget, ev.Phase)
		}
	})
}

// GetWidgetState returns the current state of id.
func (m *Manager) GetWidgetState(id string) (types.WidgetState, bool) {
	rec, ok := m.lookup(id)
	if !ok {
		return types.Closed, false
	}
	return rec.Entry.State, true
}

// Entry returns a copy of id's entry.
func (m *Manager) Entry(id string) (types.Entry, bool) {
	rec, ok := m.lookup(id)
	if !ok {
		return types.Entry{}, false
	}
	return rec.Entry, true
}

// Entries returns copies of every live entry in registration order.
func (m *Manager) Entries() []types.Entry {
	m.purgeDead()
	return m.reg.Entries()
}

// GetWidgetsInState returns the ids in state s, in registration order.
func (m *Manager) GetWidgetsInState(s types.WidgetState) []string {
	var ids []string
	for _, e := range m.Entries() {
		if e.State == s {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// WidgetsInCategory returns the ids whose category is filter or below it.
func (m *Manager) WidgetsInCategory(filter label.Label) []string {
	var ids []string
	for _, e := range m.Entries() {
		if e.Config.Category.IsUnderOrEqual(filter) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Categories returns every category with at least one entry, sorted.
func (m *Manager) Categories() []label.Label {
	seen := map[label.Label]bool{}
	var cats []label.Label
	for _, e := range m.Entries() {
		if !seen[e.Config.Category] {
			seen[e.Config.Category] = true
			cats = append(cats, e.Config.Category)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Queued returns the ids waiting in cat, front first.
func (m *Manager) Queued(cat label.Label) []string {
	return m.queues.List(cat)
}

// QueuedIn reports which category queue id is waiting in, if any.
func (m *Manager) QueuedIn(id string) (label.Label, bool) {
	return m.queues.Contains(id)
}

// QueuedCategories returns the categories that have waiting widgets.
func (m *Manager) QueuedCategories() []label.Label {
	return m.queues.Categories()
}

// PendingDestroy returns the ids whose animate-out finished and that the
// host has not drained yet, sorted.
func (m *Manager) PendingDestroy() []string {
	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DrainPendingDestroy returns and clears the pending-destroy set.
func (m *Manager) DrainPendingDestroy() []string {
	ids := m.PendingDestroy()
	m.pending = map[string]struct{}{}
	return ids
}

// Len returns the number of registered entries, dead ones included.
func (m *Manager) Len() int {
	return m.reg.Len()
}

// Clock returns the total time advanced by Tick.
func (m *Manager) Clock() float64 {
	return m.clock
}

// Ticks returns the number of Tick calls that did work.
func (m *Manager) Ticks() uint64 {
	return m.ticks
}

// purgeDead removes every entry whose widget has died.
func (m *Manager) purgeDead() {
	for _, id := range m.reg.IDs() {
		m.lookup(id)
	}
}

func (m *Manager) begin() {
	m.depth++
}

func (m *Manager) end() {
	if m.depth == 1 {
		m.runDrains()
	}
	m.depth--
	if m.depth == 0 {
		m.flush()
	}
}

func (m *Manager) emit(out transition.Outcome) {
	for _, ev := range out.Events {
		if ev.Kind == types.EventStateChanged {
			m.log.Debug().
				Str("widget", ev.Widget).
				Str("from", ev.From.String()).
				Str("to", ev.To.String()).
				Msg("state changed")
		}
	}
	m.outbox = append(m.outbox, out.Events...)
}

// flush publishes buffered events. Events raised by observers are appended
// and delivered by the same loop, so ordering is preserved.
func (m *Manager) flush() {
	if m.flushing {
		return
	}
	m.flushing = true
	defer func() { m.flushing = false }()

	for len(m.outbox) > 0 {
		ev := m.outbox[0]
		m.outbox = m.outbox[1:]
		m.bus.Publish(ev)
	}
	m.outbox = nil
}
