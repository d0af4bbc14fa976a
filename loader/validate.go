package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Verbs a reaction may issue, and whether they need a widget.
var reactionVerbs = map[string]bool{
	"show":       true,
	"hide":       true,
	"resume":     true,
	"force":      true,
	"register":   true,
	"unregister": true,
	"destroy":    true,
	"tick":       false,
	"wait":       false,
	"drain":      false,
}

// validate checks the compiled defs for consistency and referential
// integrity. Warnings are returned even when validation fails.
func validate(defs *state.Defs) ([]string, error) {
	ve := &ValidationError{}

	if defs.Scene.Title == "" {
		ve.Errors = append(ve.Errors, "Scene.title is required")
	}
	if defs.Scene.TickStep < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"Scene.tick_step must not be negative, got %g", defs.Scene.TickStep))
	}

	registered := 0
	for _, id := range defs.WidgetIDs() {
		w := defs.Widgets[id]
		validateWidget(w, ve)
		if w.Register {
			registered++
		}
	}
	if len(defs.Widgets) == 0 {
		ve.Warnings = append(ve.Warnings, "scene defines no widgets")
	} else if registered == 0 {
		ve.Warnings = append(ve.Warnings, "no widget is registered at scene start")
	}

	for i, r := range defs.Reactions {
		validateReaction(i+1, r, defs, ve)
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateWidget(w types.WidgetDef, ve *ValidationError) {
	cfg := w.Config
	if err := cfg.Category.Validate(); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("widget %q: category: %v", w.ID, err))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"transition_in", cfg.TransitionIn},
		{"transition_out", cfg.TransitionOut},
		{"auto_close", cfg.AutoClose},
	} {
		if f.v < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"widget %q: %s must not be negative, got %g", w.ID, f.name, f.v))
		}
	}
	if strings.TrimSpace(w.ID) == "" {
		ve.Errors = append(ve.Errors, "widget with empty id")
	}
	if cfg.AllowConcurrent && cfg.Interrupt != types.Cancel {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"widget %q is concurrent, interrupt mode %s never applies", w.ID, cfg.Interrupt))
	}
}

func validateReaction(n int, r types.ReactionDef, defs *state.Defs, ve *ValidationError) {
	if r.Widget != "" {
		if _, ok := defs.Widgets[r.Widget]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"reaction %d watches undefined widget %q", n, r.Widget))
		}
	}
	if len(r.Commands) == 0 {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf("reaction %d has no commands", n))
	}

	for _, cmd := range r.Commands {
		needsWidget, known := reactionVerbs[cmd.Verb]
		if !known {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"reaction %d: unknown command %q", n, cmd.Verb))
			continue
		}
		if needsWidget {
			if _, ok := defs.Widgets[cmd.Widget]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"reaction %d: %s references undefined widget %q", n, cmd.Verb, cmd.Widget))
			}
		}

		switch cmd.Verb {
		case "force":
			if len(cmd.Args) != 1 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"reaction %d: force needs exactly one state", n))
			} else if _, err := types.ParseWidgetState(cmd.Args[0]); err != nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf("reaction %d: %v", n, err))
			}
		case "tick", "wait":
			for _, a := range cmd.Args {
				if v, err := strconv.ParseFloat(a, 64); err != nil || v < 0 {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"reaction %d: %s needs a non-negative number, got %q", n, cmd.Verb, a))
				}
			}
		}

		if r.Widget != "" && cmd.Widget == r.Widget && r.Kind == types.EventStateChanged && r.AnyState {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"reaction %d acts on %q on every state change of itself", n, cmd.Widget))
		}
	}
}
