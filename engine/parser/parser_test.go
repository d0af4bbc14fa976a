package parser

import (
	"reflect"
	"testing"

	"github.com/nathoo/widgetcore/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Command
	}{
		// Empty / whitespace
		{
			name:  "empty string",
			input: "",
			want:  types.Command{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  types.Command{},
		},

		// Basic verbs
		{
			name:  "show",
			input: "show pause_menu",
			want:  types.Command{Verb: "show", Widget: "pause_menu"},
		},
		{
			name:  "multi-word widget name",
			input: "show Pause Menu",
			want:  types.Command{Verb: "show", Widget: "Pause Menu"},
		},
		{
			name:  "verb case folded, widget kept",
			input: "SHOW PauseMenu",
			want:  types.Command{Verb: "show", Widget: "PauseMenu"},
		},
		{
			name:  "list",
			input: "list",
			want:  types.Command{Verb: "list"},
		},
		{
			name:  "drain",
			input: "drain",
			want:  types.Command{Verb: "drain"},
		},

		// Aliases
		{
			name:  "open → show",
			input: "open inventory",
			want:  types.Command{Verb: "show", Widget: "inventory"},
		},
		{
			name:  "close → hide",
			input: "close inventory",
			want:  types.Command{Verb: "hide", Widget: "inventory"},
		},
		{
			name:  "kill → destroy",
			input: "kill toast",
			want:  types.Command{Verb: "destroy", Widget: "toast"},
		},
		{
			name:  "ls → list",
			input: "ls",
			want:  types.Command{Verb: "list"},
		},
		{
			name:  "t → tick",
			input: "t 0.5",
			want:  types.Command{Verb: "tick", Args: []string{"0.5"}},
		},
		{
			name:  "z → wait",
			input: "z 2",
			want:  types.Command{Verb: "wait", Args: []string{"2"}},
		},

		// Multi-word verbs
		{
			name:  "pop up → show",
			input: "pop up the tooltip",
			want:  types.Command{Verb: "show", Widget: "tooltip"},
		},
		{
			name:  "put away → hide",
			input: "put away hud",
			want:  types.Command{Verb: "hide", Widget: "hud"},
		},
		{
			name:  "wait for",
			input: "wait for 1.5",
			want:  types.Command{Verb: "wait", Args: []string{"1.5"}},
		},
		{
			name:  "set state → force",
			input: "set state hud visible",
			want:  types.Command{Verb: "force", Widget: "hud", Args: []string{"visible"}},
		},

		// Fillers
		{
			name:  "force with filler",
			input: "force the hud to paused",
			want:  types.Command{Verb: "force", Widget: "hud", Args: []string{"paused"}},
		},
		{
			name:  "queue with category",
			input: "queue UI.Layer.Modal",
			want:  types.Command{Verb: "queue", Args: []string{"UI.Layer.Modal"}},
		},

		// Unknown verbs pass through
		{
			name:  "unknown verb",
			input: "dance hud",
			want:  types.Command{Verb: "dance", Args: []string{"hud"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}
