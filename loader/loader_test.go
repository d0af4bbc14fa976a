package loader

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/widgetcore/types"
	"github.com/rs/zerolog"
)

func TestLoad_MinimalScene(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Scene.Title != "Minimal Scene" {
		t.Errorf("Title = %q, want %q", defs.Scene.Title, "Minimal Scene")
	}
	hud, ok := defs.Widgets["hud"]
	if !ok {
		t.Fatal("widget 'hud' not found")
	}
	if hud.Config.Category != "UI.Layer.Hud" {
		t.Errorf("hud category = %q", hud.Config.Category)
	}
	if !hud.Register {
		t.Error("widgets should register at start by default")
	}
	if hud.Config.Interrupt != types.Cancel {
		t.Errorf("default interrupt = %s, want cancel", hud.Config.Interrupt)
	}
}

func TestLoad_FullScene(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Scene metadata.
	if defs.Scene.Author != "Tester" {
		t.Errorf("Author = %q", defs.Scene.Author)
	}
	if defs.Scene.TickStep != 0.25 {
		t.Errorf("TickStep = %v, want 0.25", defs.Scene.TickStep)
	}

	// Widgets.
	if len(defs.Widgets) != 5 {
		t.Errorf("expected 5 widgets, got %d", len(defs.Widgets))
	}
	pm := defs.Widgets["pause_menu"]
	want := types.StateConfig{
		Priority:      10,
		Interrupt:     types.Cancel,
		TransitionIn:  0.5,
		TransitionOut: 0.5,
		Category:      "UI.Layer.Modal",
	}
	if pm.Config != want {
		t.Errorf("pause_menu config = %+v, want %+v", pm.Config, want)
	}
	if pm.Name != "Pause Menu" || pm.Description != "The in-game pause menu." {
		t.Errorf("pause_menu name/description = %q / %q", pm.Name, pm.Description)
	}
	if defs.Widgets["settings"].Config.Interrupt != types.Pause {
		t.Error("settings should use pause interrupt")
	}
	toast := defs.Widgets["toast"].Config
	if toast.Interrupt != types.Queue || toast.AutoClose != 1.5 {
		t.Errorf("toast config = %+v", toast)
	}
	tip := defs.Widgets["tooltip"]
	if !tip.Config.AllowConcurrent || tip.Register {
		t.Errorf("tooltip concurrent=%v register=%v", tip.Config.AllowConcurrent, tip.Register)
	}

	// Reactions.
	if len(defs.Reactions) != 4 {
		t.Fatalf("expected 4 reactions, got %d", len(defs.Reactions))
	}

	r := defs.Reactions[0]
	if r.Kind != types.EventStateChanged || r.To != types.AnimatingIn || r.AnyState {
		t.Errorf("reaction 1 = %+v", r)
	}
	if len(r.Commands) != 1 || r.Commands[0] != (types.Command{Verb: "hide", Widget: "hud"}) {
		t.Errorf("reaction 1 commands = %+v", r.Commands)
	}

	r = defs.Reactions[1]
	if r.Kind != types.EventTransitionComplete || r.Phase != types.PhaseOut {
		t.Errorf("reaction 2 = %+v", r)
	}
	if len(r.Commands) != 2 {
		t.Fatalf("reaction 2 has %d commands, want 2", len(r.Commands))
	}
	if r.Commands[0].Verb != "show" || r.Commands[0].Widget != "hud" {
		t.Errorf("reaction 2 first command = %+v", r.Commands[0])
	}
	if r.Commands[1].Verb != "tick" || len(r.Commands[1].Args) != 1 || r.Commands[1].Args[0] != "0.25" {
		t.Errorf("reaction 2 second command = %+v", r.Commands[1])
	}

	r = defs.Reactions[2]
	if r.To != types.Paused || r.AnyState {
		t.Errorf("reaction 3 = %+v", r)
	}
	if got := r.Commands[0]; got.Verb != "force" || got.Widget != "toast" || len(got.Args) != 1 || got.Args[0] != "closed" {
		t.Errorf("reaction 3 command = %+v", got)
	}

	r = defs.Reactions[3]
	if !r.AnyState || r.Widget != "" {
		t.Errorf("reaction 4 = %+v", r)
	}
	if r.Commands[0].Verb != "drain" {
		t.Errorf("reaction 4 command = %+v", r.Commands[0])
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	defs, err := Load("testdata/ordering")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := strings.Join(defs.WidgetIDs(), ",")
	if got != "first,second,third" {
		t.Errorf("WidgetIDs = %s, want first,second,third", got)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/bad_ref")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}

func TestLoad_BadCategory_Fails(t *testing.T) {
	_, err := Load("testdata/bad_category")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{`widget "hud": category`, "transition_in must not be negative", `widget "nameless": category`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestLoad_BadInterrupt_Fails(t *testing.T) {
	_, err := Load("testdata/bad_interrupt")
	if err == nil || !strings.Contains(err.Error(), `unknown interrupt mode "explode"`) {
		t.Errorf("expected interrupt error, got %v", err)
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_syntax")
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestLoad_NoSceneDef_Fails(t *testing.T) {
	_, err := Load("testdata/no_scene")
	if err == nil || !strings.Contains(err.Error(), "Scene{}") {
		t.Errorf("expected missing Scene error, got %v", err)
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	_, err := Load("testdata/sandbox")
	if err == nil {
		t.Fatal("expected dofile to be unavailable")
	}
}

func TestLoad_MissingDir_Fails(t *testing.T) {
	if _, err := Load("testdata/does_not_exist"); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if _, err := Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("expected no .lua files error, got %v", err)
	}
}

func TestLoad_WarningsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	if _, err := Load("testdata/full", WithLogger(log)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected warnings: %s", buf.String())
	}

	buf.Reset()
	_, _ = Load("testdata/bad_ref", WithLogger(log))
	if !strings.Contains(buf.String(), `"component":"loader"`) {
		t.Errorf("warnings should carry the loader component, got %s", buf.String())
	}
}

func TestLoad_DemoScene(t *testing.T) {
	defs, err := Load("../scenes/demo")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(defs.Widgets) == 0 || len(defs.Reactions) == 0 {
		t.Errorf("demo scene loaded %d widgets and %d reactions", len(defs.Widgets), len(defs.Reactions))
	}
}
