package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/manager"
	"github.com/nathoo/widgetcore/engine/resolve"
	"github.com/nathoo/widgetcore/types"
)

// maxWaitSteps caps the ticks run by a single "wait".
const maxWaitSteps = 10000

// execute runs one parsed command against the manager and returns its
// output lines.
func (e *Engine) execute(cmd types.Command) []string {
	switch cmd.Verb {
	case "show":
		return e.withWidget(cmd, e.cmdShow)
	case "hide":
		return e.withWidget(cmd, e.cmdHide)
	case "resume":
		return e.withWidget(cmd, e.cmdResume)
	case "force":
		return e.withWidget(cmd, func(id string) []string { return e.cmdForce(id, cmd.Args) })
	case "unregister":
		return e.withWidget(cmd, e.cmdUnregister)
	case "destroy":
		return e.withWidgetIn(cmd, e.Host.Live(), e.cmdDestroy)
	case "inspect":
		return e.withWidget(cmd, e.cmdInspect)
	case "register":
		return e.cmdRegister(cmd.Widget)
	case "tick":
		return e.cmdTick(cmd.Args)
	case "wait":
		return e.cmdWait(cmd.Args)
	case "drain":
		return e.cmdDrain()
	case "list":
		return e.cmdList(cmd.Args)
	case "queue":
		return e.cmdQueue(cmd.Args)
	case "help":
		return HelpLines()
	default:
		return []string{fmt.Sprintf("I don't know how to %q. Type help for a list.", cmd.Verb)}
	}
}

// withWidget resolves cmd.Widget among the managed widgets and calls fn.
func (e *Engine) withWidget(cmd types.Command, fn func(id string) []string) []string {
	return e.withWidgetIn(cmd, e.managedIDs(), fn)
}

func (e *Engine) withWidgetIn(cmd types.Command, ids []string, fn func(id string) []string) []string {
	if cmd.Widget == "" {
		return []string{fmt.Sprintf("%s which widget?", capitalize(cmd.Verb))}
	}
	id, err := resolve.Resolve(e.Defs, ids, cmd.Widget)
	if err != nil {
		return []string{capitalize(err.Error()) + "."}
	}
	return fn(id)
}

func (e *Engine) managedIDs() []string {
	entries := e.Manager.Entries()
	ids := make([]string, 0, len(entries))
	for _, en := range entries {
		ids = append(ids, en.ID)
	}
	return ids
}

func (e *Engine) name(id string) string {
	return e.Defs.WidgetName(id)
}

func (e *Engine) cmdShow(id string) []string {
	if e.Manager.RequestShow(id) {
		s, _ := e.Manager.GetWidgetState(id)
		return []string{fmt.Sprintf("%s is %s.", e.name(id), describeState(s))}
	}
	entry, ok := e.Manager.Entry(id)
	if !ok {
		return []string{fmt.Sprintf("%s is gone.", e.name(id))}
	}
	for _, q := range e.Manager.Queued(entry.Config.Category) {
		if q == id {
			return []string{fmt.Sprintf("%s has to wait its turn in %s.", e.name(id), entry.Config.Category)}
		}
	}
	return []string{fmt.Sprintf("%s was turned away.", e.name(id))}
}

func (e *Engine) cmdHide(id string) []string {
	before, _ := e.Manager.GetWidgetState(id)
	e.Manager.RequestHide(id)
	after, _ := e.Manager.GetWidgetState(id)
	if before == after {
		return []string{fmt.Sprintf("%s is already %s.", e.name(id), describeState(after))}
	}
	return []string{fmt.Sprintf("%s is %s.", e.name(id), describeState(after))}
}

func (e *Engine) cmdResume(id string) []string {
	if s, _ := e.Manager.GetWidgetState(id); s != types.Paused {
		return []string{fmt.Sprintf("%s is not paused.", e.name(id))}
	}
	if e.Manager.ResumeWidget(id) {
		s, _ := e.Manager.GetWidgetState(id)
		return []string{fmt.Sprintf("%s resumes and is %s.", e.name(id), describeState(s))}
	}
	return []string{fmt.Sprintf("%s stays paused.", e.name(id))}
}

func (e *Engine) cmdForce(id string, args []string) []string {
	if len(args) == 0 {
		return []string{fmt.Sprintf("Force %s into which state?", e.name(id))}
	}
	s, err := types.ParseWidgetState(strings.Join(args, "_"))
	if err != nil {
		return []string{capitalize(err.Error()) + "."}
	}
	e.Manager.ForceWidgetState(id, s)
	return []string{fmt.Sprintf("%s forced to %s.", e.name(id), s)}
}

func (e *Engine) cmdUnregister(id string) []string {
	e.Manager.Unregister(id)
	return []string{fmt.Sprintf("%s is no longer managed.", e.name(id))}
}

func (e *Engine) cmdDestroy(id string) []string {
	if !e.Host.Destroy(id) {
		return []string{fmt.Sprintf("%s has no live widget.", e.name(id))}
	}
	return []string{fmt.Sprintf("%s destroyed.", e.name(id))}
}

func (e *Engine) cmdInspect(id string) []string {
	en, ok := e.Manager.Entry(id)
	if !ok {
		return []string{fmt.Sprintf("%s is gone.", e.name(id))}
	}
	out := []string{fmt.Sprintf("%s (%s)", e.name(id), id)}
	if def, ok := e.Defs.Widgets[id]; ok && def.Description != "" {
		out = append(out, def.Description)
	}
	c := en.Config
	out = append(out,
		fmt.Sprintf("  state: %s (%.2fs, visible %.2fs)", en.State, en.StateElapsed, en.VisibleElapsed),
		fmt.Sprintf("  category: %s  priority: %d  interrupt: %s", c.Category, c.Priority, c.Interrupt),
		fmt.Sprintf("  in: %.2fs  out: %.2fs  auto-close: %s  concurrent: %t",
			c.TransitionIn, c.TransitionOut, formatAutoClose(c.AutoClose), c.AllowConcurrent),
	)
	if cat, ok := e.Manager.QueuedIn(id); ok {
		out = append(out, fmt.Sprintf("  waiting in: %s", cat))
	}
	if w, ok := e.Host.Get(id); ok {
		out = append(out, fmt.Sprintf("  instance: %s", w.Instance))
	}
	return out
}

func (e *Engine) cmdRegister(name string) []string {
	if name == "" {
		return []string{"Register which widget?"}
	}
	id, err := resolve.Resolve(e.Defs, e.Defs.WidgetIDs(), name)
	if err != nil {
		return []string{capitalize(err.Error()) + "."}
	}
	if err := e.register(id); err != nil {
		switch {
		case errors.Is(err, manager.ErrDuplicateRegistration):
			return []string{fmt.Sprintf("%s is already managed.", e.name(id))}
		default:
			return []string{capitalize(err.Error()) + "."}
		}
	}
	return []string{fmt.Sprintf("%s registered in %s.", e.name(id), e.Defs.Widgets[id].Config.Category)}
}

// register spawns the host widget for id and registers it.
func (e *Engine) register(id string) error {
	def, ok := e.Defs.Widgets[id]
	if !ok {
		return fmt.Errorf("unknown widget %q", id)
	}
	h := e.Host.Spawn(id, def.Name)
	return e.Manager.Register(h, def.Config)
}

func (e *Engine) cmdTick(args []string) []string {
	dt := e.TickStep()
	if len(args) > 0 {
		v, err := parseSeconds(args[0])
		if err != nil {
			return []string{capitalize(err.Error()) + "."}
		}
		dt = v
	}
	e.Manager.Tick(dt)
	return []string{fmt.Sprintf("t=%.2fs", e.Manager.Clock())}
}

// cmdWait ticks in TickStep increments until the duration has passed.
func (e *Engine) cmdWait(args []string) []string {
	if len(args) == 0 {
		return []string{"Wait how long?"}
	}
	total, err := parseSeconds(args[0])
	if err != nil {
		return []string{capitalize(err.Error()) + "."}
	}
	if total < 0 {
		return []string{"Wait how long?"}
	}
	step := e.TickStep()
	steps := math.Ceil(total/step - 1e-9)
	if steps > maxWaitSteps {
		return []string{fmt.Sprintf("That is more than %d ticks; use a larger tick step.", maxWaitSteps)}
	}
	n := max(int(steps), 0)
	remaining := total
	for i := 0; i < n; i++ {
		dt := math.Min(step, remaining)
		e.Manager.Tick(dt)
		remaining -= dt
	}
	return []string{fmt.Sprintf("t=%.2fs (%d ticks)", e.Manager.Clock(), n)}
}

func (e *Engine) cmdDrain() []string {
	ids := e.Manager.DrainPendingDestroy()
	if len(ids) == 0 {
		return []string{"Nothing to destroy."}
	}
	n := e.Host.DestroyAll(ids)
	return []string{fmt.Sprintf("Destroyed %d widget(s): %s.", n, strings.Join(ids, ", "))}
}

func (e *Engine) cmdList(args []string) []string {
	filter := label.Label("")
	if len(args) > 0 {
		l, err := label.New(args[0])
		if err != nil {
			return []string{capitalize(err.Error()) + "."}
		}
		filter = l
	}

	var out []string
	for _, en := range e.Manager.Entries() {
		if filter != "" && !en.Config.Category.IsUnderOrEqual(filter) {
			continue
		}
		out = append(out, fmt.Sprintf("  %-16s %-14s %-20s p%d", en.ID, en.State, en.Config.Category, en.Config.Priority))
	}
	if len(out) == 0 {
		return []string{"No widgets."}
	}
	return out
}

func (e *Engine) cmdQueue(args []string) []string {
	cats := e.Manager.QueuedCategories()
	if len(args) > 0 {
		l, err := label.New(args[0])
		if err != nil {
			return []string{capitalize(err.Error()) + "."}
		}
		cats = []label.Label{l}
	}

	var out []string
	for _, cat := range cats {
		ids := e.Manager.Queued(cat)
		if len(ids) == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("  %s: %s", cat, strings.Join(ids, ", ")))
	}
	if len(out) == 0 {
		return []string{"No widgets are waiting."}
	}
	return out
}

// HelpLines lists the driver commands.
func HelpLines() []string {
	return []string{
		"Widget commands:",
		"  show/open <widget>        Request a widget to show",
		"  hide/close <widget>       Request a widget to hide",
		"  resume <widget>           Resume a paused widget",
		"  force <widget> <state>    Set a state directly",
		"  register <widget>         Register a scene widget",
		"  unregister <widget>       Stop managing a widget",
		"  destroy/kill <widget>     Destroy the host widget",
		"  drain                     Destroy widgets that finished closing",
		"  inspect (x) <widget>      Show a widget's entry",
		"Time:",
		"  tick (t) [seconds]        Advance one tick",
		"  wait (z) <seconds>        Tick until the time has passed",
		"Queries:",
		"  list (ls) [category]      List widgets",
		"  queue (q) [category]      List waiting widgets",
	}
}

func describeState(s types.WidgetState) string {
	return strings.ReplaceAll(s.String(), "_", " ")
}

func formatAutoClose(v float64) string {
	if v <= 0 {
		return "off"
	}
	return fmt.Sprintf("%.2fs", v)
}

func parseSeconds(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number of seconds", s)
	}
	return v, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
