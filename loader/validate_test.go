package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	return &state.Defs{
		Scene: types.SceneDef{Title: "Test"},
		Widgets: map[string]types.WidgetDef{
			"hud": {
				ID:       "hud",
				Config:   types.StateConfig{Category: "UI.Layer.Hud"},
				Register: true,
			},
			"menu": {
				ID:          "menu",
				Config:      types.StateConfig{Category: "UI.Layer.Modal", Priority: 3},
				Register:    true,
				SourceOrder: 1,
			},
		},
	}
}

func expectErrors(t *testing.T, defs *state.Defs, want ...string) {
	t.Helper()
	_, err := validate(defs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve := err.(*ValidationError)
	if len(ve.Errors) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(ve.Errors), len(want), ve.Errors)
	}
	for i, w := range want {
		if !strings.Contains(ve.Errors[i], w) {
			t.Errorf("error %d = %q, want it to contain %q", i, ve.Errors[i], w)
		}
	}
}

func TestValidate_ValidDefs(t *testing.T) {
	warnings, err := validate(validDefs())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestValidate_EmptyTitle(t *testing.T) {
	defs := validDefs()
	defs.Scene.Title = ""
	expectErrors(t, defs, "Scene.title is required")
}

func TestValidate_NegativeTickStep(t *testing.T) {
	defs := validDefs()
	defs.Scene.TickStep = -0.1
	expectErrors(t, defs, "tick_step must not be negative")
}

func TestValidate_NegativeDurations(t *testing.T) {
	defs := validDefs()
	w := defs.Widgets["menu"]
	w.Config.TransitionOut = -1
	w.Config.AutoClose = -2
	defs.Widgets["menu"] = w
	expectErrors(t, defs, "transition_out must not be negative", "auto_close must not be negative")
}

func TestValidate_ReactionReferences(t *testing.T) {
	defs := validDefs()
	defs.Reactions = []types.ReactionDef{
		{
			Kind:   types.EventStateChanged,
			Widget: "ghost",
			To:     types.Visible,
			Commands: []types.Command{
				{Verb: "hide", Widget: "hud"},
				{Verb: "show", Widget: "nobody"},
				{Verb: "dance"},
				{Verb: "force", Widget: "hud"},
				{Verb: "tick", Args: []string{"-1"}},
			},
		},
	}
	expectErrors(t, defs,
		`watches undefined widget "ghost"`,
		`show references undefined widget "nobody"`,
		`unknown command "dance"`,
		"force needs exactly one state",
		"tick needs a non-negative number",
	)
}

func TestValidate_Warnings(t *testing.T) {
	defs := validDefs()
	for id, w := range defs.Widgets {
		w.Register = false
		defs.Widgets[id] = w
	}
	hud := defs.Widgets["hud"]
	hud.Config.AllowConcurrent = true
	hud.Config.Interrupt = types.Queue
	defs.Widgets["hud"] = hud
	defs.Reactions = []types.ReactionDef{
		{Kind: types.EventStateChanged, Widget: "menu", AnyState: true,
			Commands: []types.Command{{Verb: "hide", Widget: "menu"}}},
		{Kind: types.EventTransitionComplete, Widget: "hud"},
	}

	warnings, err := validate(defs)
	if err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	joined := strings.Join(warnings, "\n")
	for _, want := range []string{
		"never applies",
		"no widget is registered at scene start",
		"on every state change of itself",
		"reaction 2 has no commands",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q:\n%s", want, joined)
		}
	}
}

func TestValidate_NoWidgetsWarning(t *testing.T) {
	defs := &state.Defs{Scene: types.SceneDef{Title: "Empty"}, Widgets: map[string]types.WidgetDef{}}
	warnings, err := validate(defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 || warnings[0] != "scene defines no widgets" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	want := "validation failed with 2 error(s):\n  a\n  b"
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}
}
