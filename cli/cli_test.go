package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/widgetcore/engine"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// testDefs returns a small scene for CLI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Scene: types.SceneDef{
			Title:    "Test Scene",
			Version:  "1.0",
			Intro:    "Welcome to the test.",
			TickStep: 0.25,
		},
		Widgets: map[string]types.WidgetDef{
			"menu": {
				ID:   "menu",
				Name: "Menu",
				Config: types.StateConfig{
					Priority:     5,
					TransitionIn: 0.5,
					Category:     "UI.Layer.Modal",
				},
				Register:    true,
				SourceOrder: 1,
			},
			"hud": {
				ID:          "hud",
				Name:        "HUD",
				Config:      types.StateConfig{Category: "UI.Layer.Hud"},
				Register:    true,
				SourceOrder: 2,
			},
		},
		Reactions: []types.ReactionDef{
			{
				Kind:     types.EventStateChanged,
				Widget:   "menu",
				To:       types.AnimatingIn,
				Commands: []types.Command{{Verb: "hide", Widget: "hud"}},
			},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	defs := testDefs()
	var out bytes.Buffer
	c := &CLI{
		Engine:  engine.New(defs),
		Defs:    defs,
		In:      strings.NewReader(input),
		Out:     &out,
		DumpDir: t.TempDir(),
	}
	return c, &out
}

func TestCLI_Intro(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Test Scene") {
		t.Error("expected scene title in output")
	}
	if !strings.Contains(output, "Welcome to the test.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye on /quit")
	}
}

func TestCLI_ShowAndTick(t *testing.T) {
	c, out := newTestCLI(t, "show menu\ntick 0.5\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "t=0.50s") {
		t.Errorf("expected clock in output, got:\n%s", output)
	}
	if s, _ := c.Engine.Manager.GetWidgetState("menu"); s != types.Visible {
		t.Errorf("menu = %s, want visible", s)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"/dump", "/load", "show/open", "again (g)"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
	if len(c.Engine.CommandLog) != 0 {
		t.Errorf("/help should not reach the command log, got %v", c.Engine.CommandLog)
	}
}

func TestCLI_DumpAndLoad(t *testing.T) {
	c, out := newTestCLI(t, "show menu\ntick 0.25\n/dump mid\ntick 0.25\n/load mid\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Snapshot written to") {
		t.Fatalf("expected dump confirmation, got:\n%s", output)
	}
	if _, err := os.Stat(filepath.Join(c.DumpDir, "mid.yaml")); err != nil {
		t.Fatalf("dump file missing: %v", err)
	}
	if !strings.Contains(output, "Restored mid (t=0.25s, 2 commands replayed).") {
		t.Errorf("expected restore message, got:\n%s", output)
	}
	if s, _ := c.Engine.Manager.GetWidgetState("menu"); s != types.AnimatingIn {
		t.Errorf("after load menu = %s, want animating_in", s)
	}
	if s, _ := c.Engine.Manager.GetWidgetState("hud"); s != types.Closed {
		t.Errorf("after load hud = %s, want closed", s)
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nope\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_DumpRejectsPath(t *testing.T) {
	c, out := newTestCLI(t, "/dump ../escape\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Dump failed") {
		t.Errorf("expected dump failure, got:\n%s", out.String())
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "show hud\n/state\n/quit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"scene: Test Scene", "id: hud", "state: visible"} {
		if !strings.Contains(output, want) {
			t.Errorf("state output missing %q:\n%s", want, output)
		}
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/foobar\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command: /foobar") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nshow hud\nshow menu\n/trace\n/quit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled.") || !strings.Contains(output, "Trace output disabled.") {
		t.Error("expected trace toggle messages")
	}
	if !strings.Contains(output, "[trace]   hud: animating_in -> visible") {
		t.Errorf("expected traced event, got:\n%s", output)
	}
	if !strings.Contains(output, "[trace] Reactions: 1") || !strings.Contains(output, "[trace]   hide hud") {
		t.Errorf("expected traced reaction, got:\n%s", output)
	}
}

func TestCLI_CommentsAndEcho(t *testing.T) {
	c, out := newTestCLI(t, "# setup\nshow hud\n/quit\n")
	c.EchoInput = true
	c.Run()

	output := out.String()
	if strings.Contains(output, "setup") {
		t.Error("comment lines should be skipped")
	}
	if !strings.Contains(output, "> show hud\n") {
		t.Errorf("expected echoed input, got:\n%s", output)
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	c, _ := newTestCLI(t, "\n\n\n/quit\n")
	c.Run()

	if len(c.Engine.CommandLog) != 0 {
		t.Errorf("blank lines should not be logged, got %v", c.Engine.CommandLog)
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, _ := newTestCLI(t, "tick\nagain\ng\n/quit\n")
	c.Run()

	if got := c.Engine.Manager.Clock(); got != 0.75 {
		t.Errorf("clock = %v, want 0.75", got)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat.' message")
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		cmd  types.Command
		want string
	}{
		{types.Command{Verb: "drain"}, "drain"},
		{types.Command{Verb: "hide", Widget: "hud"}, "hide hud"},
		{types.Command{Verb: "force", Widget: "hud", Args: []string{"paused"}}, "force hud paused"},
		{types.Command{Verb: "tick", Args: []string{"0.5"}}, "tick 0.5"},
	}
	for _, tt := range tests {
		if got := FormatCommand(tt.cmd); got != tt.want {
			t.Errorf("FormatCommand(%+v) = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
