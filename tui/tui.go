package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/widgetcore/cli"
	"github.com/nathoo/widgetcore/engine"
	"github.com/nathoo/widgetcore/engine/snapshot"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// Options configures the dashboard.
type Options struct {
	TickRate      time.Duration   // wall-clock interval between auto ticks
	AutoTick      bool            // start with auto-tick running
	DumpDir       string          // where /dump and /load look for snapshots
	EngineOptions []engine.Option // reapplied when /load rebuilds the engine
}

// rawLine stores an unstyled log line with its classification, so it can
// be re-wrapped and re-styled when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // echoed operator input
	isSystem bool // meta-command output
}

// Model is the Bubble Tea model for the widgetcore dashboard.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs
	opts   Options

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	autoTick bool
	quitting bool
	lastCmd  string
	tickGen  int
}

// outputMsg carries output into the Update loop.
type outputMsg struct {
	input    string   // echoed operator input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// tickMsg fires every TickRate while auto-tick is on. Messages from an
// earlier auto-tick run carry a stale gen and are dropped.
type tickMsg struct{ gen int }

// New creates a dashboard model wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs, opts Options) Model {
	if opts.TickRate <= 0 {
		opts.TickRate = 100 * time.Millisecond
	}
	if opts.DumpDir == "" {
		home, _ := os.UserHomeDir()
		opts.DumpDir = filepath.Join(home, ".widgetcore", "dumps")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		defs:     defs,
		opts:     opts,
		input:    ti,
		history:  NewHistory(100),
		autoTick: opts.AutoTick,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, defs *state.Defs, opts Options) error {
	p := tea.NewProgram(New(eng, defs, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init returns the commands that print the intro and start auto-tick.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.initialOutput()}
	if m.autoTick {
		cmds = append(cmds, m.scheduleTick())
	}
	return tea.Batch(cmds...)
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string
		header := m.defs.Scene.Title
		if m.defs.Scene.Version != "" {
			header += " v" + m.defs.Scene.Version
		}
		if m.defs.Scene.Author != "" {
			header += " by " + m.defs.Scene.Author
		}
		lines = append(lines, header)
		if m.defs.Scene.Intro != "" {
			lines = append(lines, "", m.defs.Scene.Intro)
		}
		for _, msg := range m.engine.StartupErrors() {
			lines = append(lines, "Startup: "+msg)
		}
		return outputMsg{lines: lines}
	}
}

func (m Model) scheduleTick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.opts.TickRate, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// Update handles messages (key presses, window resize, output, ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, m.logHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.logHeight()
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case tickMsg:
		if !m.autoTick || msg.gen != m.tickGen {
			return m, nil
		}
		m = m.autoStep()
		return m, m.scheduleTick()

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// autoStep advances the scene by one TickRate. The tick goes through Step
// so that snapshots replay it; only ticks that produced events are logged.
func (m Model) autoStep() Model {
	result := m.engine.Step(fmt.Sprintf("tick %g", m.opts.TickRate.Seconds()))
	if len(result.Events) == 0 {
		return m
	}
	lines := eventLines(result.Events)
	if m.trace {
		lines = append(lines, formatTrace(result)...)
	}
	return m.appendOutput(outputMsg{lines: lines})
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	if strings.HasPrefix(input, "/") {
		wasTicking := m.autoTick
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		if m.autoTick && !wasTicking {
			m.tickGen++
			return m, m.scheduleTick()
		}
		return m, nil
	}

	result := m.engine.Step(input)
	output := append(result.Output, eventLines(result.Events)...)
	if m.trace {
		output = append(output, formatTrace(result)...)
	}
	m = m.appendOutput(outputMsg{input: input, lines: output})
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})

	if m.ready {
		m.viewport.Height = m.logHeight()
	}
	m.refreshViewport()
	return m
}

// logHeight is what remains for the log after the widget panel, the status
// bar and the input line.
func (m Model) logHeight() int {
	h := m.height - lipgloss.Height(m.renderWidgetPanel()) - 2
	if h < 1 {
		h = 1
	}
	return h
}

// refreshViewport re-wraps and re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, styleOperatorInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Multi-line text is wrapped line by line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	if strings.Contains(text, "\n") {
		parts := strings.Split(text, "\n")
		for i, p := range parts {
			parts[i] = wordWrap(p, width)
		}
		return strings.Join(parts, "\n")
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wLen := len(word)
		switch {
		case i == 0:
			lineLen = wLen
		case lineLen+1+wLen > width:
			result.WriteString("\n")
			lineLen = wLen
		default:
			result.WriteString(" ")
			lineLen += 1 + wLen
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the dashboard: widget panel, log, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.renderWidgetPanel() + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/dump", "/save":
		return m.cmdDump(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	case "/auto":
		m.autoTick = !m.autoTick
		if m.autoTick {
			return []string{fmt.Sprintf("Auto-tick every %s.", m.opts.TickRate)}, false
		}
		return []string{"Auto-tick paused."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdDump(name string) []string {
	path, err := snapshot.WriteFile(m.opts.DumpDir, name, m.engine.Snapshot())
	if err != nil {
		return []string{fmt.Sprintf("Dump failed: %v", err)}
	}
	return []string{fmt.Sprintf("Snapshot written to %s.", path)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "snapshot"
	}
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}

	snap, err := snapshot.ReadFile(filepath.Join(m.opts.DumpDir, name))
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if snap.Scene != m.defs.Scene.Title {
		return []string{fmt.Sprintf("Load failed: snapshot is from scene %q.", snap.Scene)}
	}

	m.engine = engine.Restore(m.defs, snap, m.opts.EngineOptions...)
	return []string{fmt.Sprintf("Restored %s (t=%.2fs, %d commands replayed).",
		strings.TrimSuffix(name, ".yaml"), m.engine.Manager.Clock(), len(snap.CommandLog))}
}

func (m *Model) cmdHelp() []string {
	lines := []string{
		"System:",
		"  /dump [name]  Write a YAML snapshot (default: snapshot)",
		"  /load [name]  Rebuild state from a snapshot",
		"  /state        Show the current snapshot",
		"  /auto         Toggle auto-tick",
		"  /trace        Toggle trace output",
		"  /help         Show this help",
		"  /quit         Exit",
		"",
	}
	lines = append(lines, engine.HelpLines()...)
	return append(lines,
		"  again (g)                 Repeat the last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	)
}

func (m *Model) cmdState() []string {
	data, err := snapshot.Marshal(m.engine.Snapshot())
	if err != nil {
		return []string{fmt.Sprintf("State failed: %v", err)}
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// eventLines renders manager events for the log.
func eventLines(evts []types.Event) []string {
	lines := make([]string, 0, len(evts))
	for _, ev := range evts {
		lines = append(lines, "* "+ev.String())
	}
	return lines
}

func formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Commands) > 1 {
		lines = append(lines, fmt.Sprintf("[trace] Reactions: %d", len(result.Commands)-1))
		for _, cmd := range result.Commands[1:] {
			lines = append(lines, "[trace]   "+cli.FormatCommand(cmd))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those drive input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
