// Package engine provides the Step() driver that wires together parsing,
// name resolution, the widget manager and scene reactions into a single
// command.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/nathoo/widgetcore/engine/events"
	"github.com/nathoo/widgetcore/engine/host"
	"github.com/nathoo/widgetcore/engine/manager"
	"github.com/nathoo/widgetcore/engine/parser"
	"github.com/nathoo/widgetcore/engine/snapshot"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// DefaultTickStep is used by "tick" when the scene does not set one.
const DefaultTickStep = 0.1

// Engine holds the scene definitions, the simulated host and the manager.
type Engine struct {
	Defs    *state.Defs
	Manager *manager.Manager
	Host    *host.Host
	RNG     *RNG

	// CommandLog holds every command given to Step, for replay.
	CommandLog []string

	seed   int64
	log    zerolog.Logger
	buf    []types.Event
	errors []string
}

// Option configures an Engine.
type Option func(*config)

type config struct {
	log     zerolog.Logger
	seed    int64
	manager []manager.Option
}

// WithLogger sets the logger for the engine, host and manager.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithSeed seeds the engine RNG used by Soak.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithManagerOptions passes options through to the manager.
func WithManagerOptions(opts ...manager.Option) Option {
	return func(c *config) { c.manager = append(c.manager, opts...) }
}

// New creates an engine and registers every widget the scene marks for
// registration at start.
func New(defs *state.Defs, opts ...Option) *Engine {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	mopts := append([]manager.Option{manager.WithLogger(cfg.log)}, cfg.manager...)
	e := &Engine{
		Defs:    defs,
		Manager: manager.New(mopts...),
		Host:    host.New(cfg.log),
		RNG:     NewRNG(cfg.seed),
		seed:    cfg.seed,
		log:     cfg.log.With().Str("component", "engine").Logger(),
	}
	e.Manager.Subscribe(func(ev types.Event) {
		e.buf = append(e.buf, ev)
	})

	for _, id := range defs.WidgetIDs() {
		if defs.Widgets[id].Register {
			if err := e.register(id); err != nil {
				e.errors = append(e.errors, err.Error())
			}
		}
	}
	return e
}

// StartupErrors returns registration failures from New.
func (e *Engine) StartupErrors() []string {
	return e.errors
}

// Seed returns the RNG seed the engine was created with.
func (e *Engine) Seed() int64 {
	return e.seed
}

// TickStep returns the step used by "tick" and "wait".
func (e *Engine) TickStep() float64 {
	if e.Defs.Scene.TickStep > 0 {
		return e.Defs.Scene.TickStep
	}
	return DefaultTickStep
}

// Step processes one command and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result

	// 1. Parse input.
	cmd := parser.Parse(input)

	// 2. Empty input.
	if cmd.Verb == "" {
		result.Output = append(result.Output, "Type a command, or help for a list.")
		return result
	}

	// 3. Log the command.
	e.CommandLog = append(e.CommandLog, input)
	e.log.Debug().Str("input", input).Str("verb", cmd.Verb).Msg("step")

	// 4. Execute against the manager, collecting its events.
	e.buf = nil
	result.Commands = append(result.Commands, cmd)
	result.Output = append(result.Output, e.execute(cmd)...)
	evts := e.buf
	result.Events = append(result.Events, evts...)

	// 5. Dispatch reactions (single pass).
	reactions := events.Dispatch(evts, e.Defs.Reactions)

	// 6. Run reaction commands. Their events are reported but not dispatched.
	for _, rc := range reactions {
		e.buf = nil
		result.Commands = append(result.Commands, rc)
		result.Output = append(result.Output, e.execute(rc)...)
		result.Events = append(result.Events, e.buf...)
	}
	e.buf = nil

	return result
}

// Snapshot returns the current state with scene metadata and the command
// log filled in.
func (e *Engine) Snapshot() *snapshot.Snapshot {
	s := snapshot.Take(e.Manager)
	s.Version = e.Defs.Scene.Version
	s.Scene = e.Defs.Scene.Title
	s.Seed = e.seed
	s.RNGPosition = e.RNG.Position()
	s.CommandLog = append([]string(nil), e.CommandLog...)
	return s
}

// Restore builds a fresh engine from defs and replays the snapshot's command
// log. Options are applied as in New; the snapshot's seed and RNG position
// win over WithSeed.
func Restore(defs *state.Defs, snap *snapshot.Snapshot, opts ...Option) *Engine {
	opts = append(opts, WithSeed(snap.Seed))
	e := New(defs, opts...)
	for _, input := range snap.CommandLog {
		e.Step(input)
	}
	e.RNG = RestoreRNG(snap.Seed, snap.RNGPosition)
	return e
}
