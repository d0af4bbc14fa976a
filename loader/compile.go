// Package loader loads Lua scene files into Go structs at startup.
// The Lua VM is discarded after loading, no Lua runs while the scene plays.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/widgetcore/engine/label"
	"github.com/nathoo/widgetcore/engine/state"
	"github.com/nathoo/widgetcore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawWidget holds a widget table before compilation.
type rawWidget struct {
	id    string
	table *lua.LTable
	order int
}

// rawReaction holds an On() handler before compilation.
type rawReaction struct {
	event string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toArg renders a scalar Lua value as a command argument.
func toArg(v lua.LValue) (string, bool) {
	switch val := v.(type) {
	case lua.LString:
		return string(val), true
	case lua.LNumber:
		return val.String(), true
	case lua.LBool:
		if val {
			return "true", true
		}
		return "false", true
	}
	return "", false
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.scene == nil {
		return nil, fmt.Errorf("no Scene{} definition found")
	}
	defs := &state.Defs{
		Scene:   compileScene(coll.scene),
		Widgets: map[string]types.WidgetDef{},
	}

	for _, raw := range coll.widgets {
		if _, dup := defs.Widgets[raw.id]; dup {
			return nil, fmt.Errorf("widget %s defined twice", raw.id)
		}
		w, err := compileWidget(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling widget %s: %w", raw.id, err)
		}
		defs.Widgets[w.ID] = w
	}

	for i, raw := range coll.reactions {
		r, err := compileReaction(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling reaction %d (%s): %w", i+1, raw.event, err)
		}
		defs.Reactions = append(defs.Reactions, r)
	}

	return defs, nil
}

func compileScene(tbl *lua.LTable) types.SceneDef {
	return types.SceneDef{
		Title:    getString(tbl, "title"),
		Author:   getString(tbl, "author"),
		Version:  getString(tbl, "version"),
		Intro:    getString(tbl, "intro"),
		TickStep: getNumber(tbl, "tick_step"),
	}
}

func compileWidget(raw rawWidget) (types.WidgetDef, error) {
	tbl := raw.table
	cfg := types.StateConfig{
		Priority:        getInt(tbl, "priority"),
		TransitionIn:    getNumber(tbl, "transition_in"),
		TransitionOut:   getNumber(tbl, "transition_out"),
		Category:        label.Label(getString(tbl, "category")),
		AutoClose:       getNumber(tbl, "auto_close"),
		AllowConcurrent: getBool(tbl, "concurrent", false),
	}
	if s := getString(tbl, "interrupt"); s != "" {
		mode, err := types.ParseInterruptMode(s)
		if err != nil {
			return types.WidgetDef{}, err
		}
		cfg.Interrupt = mode
	}

	return types.WidgetDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Config:      cfg,
		Register:    getBool(tbl, "register", true),
		SourceOrder: raw.order,
	}, nil
}

// compileReaction maps the event name onto a ReactionDef. The name is either
// "state_changed" (optionally narrowed by state = "..."), a state name such
// as "visible", or "transition_complete" with phase = "in" | "out".
func compileReaction(raw rawReaction) (types.ReactionDef, error) {
	tbl := raw.table
	r := types.ReactionDef{Widget: getString(tbl, "widget")}

	switch ev := strings.ToLower(raw.event); ev {
	case string(types.EventStateChanged):
		r.Kind = types.EventStateChanged
		if s := getString(tbl, "state"); s != "" {
			st, err := types.ParseWidgetState(s)
			if err != nil {
				return r, err
			}
			r.To = st
		} else {
			r.AnyState = true
		}
	case string(types.EventTransitionComplete):
		r.Kind = types.EventTransitionComplete
		switch p := strings.ToLower(getString(tbl, "phase")); p {
		case "", "in":
			r.Phase = types.PhaseIn
		case "out":
			r.Phase = types.PhaseOut
		default:
			return r, fmt.Errorf("unknown phase %q", p)
		}
	default:
		st, err := types.ParseWidgetState(ev)
		if err != nil {
			return r, fmt.Errorf("unknown event %q", raw.event)
		}
		r.Kind = types.EventStateChanged
		r.To = st
	}

	if cmds := getTable(tbl, "commands"); cmds != nil {
		r.Commands = compileCommands(cmds)
	}
	return r, nil
}

func compileCommands(tbl *lua.LTable) []types.Command {
	var cmds []types.Command
	for i := 1; i <= tbl.MaxN(); i++ {
		t, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		cmd := types.Command{
			Verb:   getString(t, "verb"),
			Widget: getString(t, "widget"),
		}
		if args := getTable(t, "args"); args != nil {
			for j := 1; j <= args.MaxN(); j++ {
				if s, ok := toArg(args.RawGetInt(j)); ok {
					cmd.Args = append(cmd.Args, s)
				}
			}
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// sortedLuaFiles returns .lua files with scene.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var sceneFile string
	var others []string
	for _, f := range files {
		if f == "scene.lua" {
			sceneFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if sceneFile != "" {
		return append([]string{sceneFile}, others...)
	}
	return others
}
