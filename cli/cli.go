// Package cli provides the line-oriented driver for widgetcore: a REPL and
// script player with meta-commands for snapshots and tracing.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/widgetcore/engine"
	"github.com/nathoo/widgetcore/engine/snapshot"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// CLI handles terminal interaction with the operator.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	Options   []engine.Option // reapplied when /load rebuilds the engine
	In        io.Reader
	Out       io.Writer
	DumpDir   string
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, defs *state.Defs) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		Defs:    defs,
		In:      os.Stdin,
		Out:     os.Stdout,
		DumpDir: filepath.Join(home, ".widgetcore", "dumps"),
	}
}

// Run shows the scene intro and then loops: prompt, input, dispatch, output.
func (c *CLI) Run() {
	if title := c.Defs.Scene.Title; title != "" {
		c.printLine(title)
	}
	if c.Defs.Scene.Intro != "" {
		c.printLine(c.Defs.Scene.Intro)
	}
	for _, msg := range c.Engine.StartupErrors() {
		c.printSystem("Startup: " + msg)
	}
	c.printLine("")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the driver should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/dump", "/save":
		c.cmdDump(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdDump(name string) {
	path, err := snapshot.WriteFile(c.DumpDir, name, c.Engine.Snapshot())
	if err != nil {
		c.printSystem(fmt.Sprintf("Dump failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Snapshot written to %s.", path))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "snapshot"
	}
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}

	snap, err := snapshot.ReadFile(filepath.Join(c.DumpDir, name))
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if snap.Scene != c.Defs.Scene.Title {
		c.printSystem(fmt.Sprintf("Load failed: snapshot is from scene %q.", snap.Scene))
		return
	}

	c.Engine = engine.Restore(c.Defs, snap, c.Options...)
	c.printSystem(fmt.Sprintf("Restored %s (t=%.2fs, %d commands replayed).",
		strings.TrimSuffix(name, ".yaml"), c.Engine.Manager.Clock(), len(snap.CommandLog)))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /dump [name]  Write a YAML snapshot (default: snapshot)",
		"  /load [name]  Rebuild state from a snapshot",
		"  /state        Print the current snapshot",
		"  /trace        Toggle event trace output",
		"  /help         Show this help",
		"  /quit         Exit",
		"",
	}
	for _, line := range help {
		c.printLine(line)
	}
	for _, line := range engine.HelpLines() {
		c.printLine(line)
	}
	c.printLine("  again (g)                 Repeat the last command")
}

func (c *CLI) cmdState() {
	data, err := snapshot.Marshal(c.Engine.Snapshot())
	if err != nil {
		c.printSystem(fmt.Sprintf("State failed: %v", err))
		return
	}
	c.print(string(data))
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Commands) > 1 {
		c.printLine(fmt.Sprintf("[trace] Reactions: %d", len(result.Commands)-1))
		for _, cmd := range result.Commands[1:] {
			c.printLine("[trace]   " + FormatCommand(cmd))
		}
	}
	if len(result.Events) > 0 {
		c.printLine(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printLine(fmt.Sprintf("[trace]   %s", e))
		}
	}
}

// FormatCommand renders cmd back into driver syntax.
func FormatCommand(cmd types.Command) string {
	parts := []string{cmd.Verb}
	if cmd.Widget != "" {
		parts = append(parts, cmd.Widget)
	}
	return strings.Join(append(parts, cmd.Args...), " ")
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
