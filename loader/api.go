package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and command helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerCommandHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Scene { title = "...", tick_step = 0.1, ... }
	L.SetGlobal("Scene", L.NewFunction(func(L *lua.LState) int {
		coll.scene = L.CheckTable(1)
		return 0
	}))

	// Widget "id" { ... } is curried: Widget("id") returns a function that
	// takes the definition table.
	L.SetGlobal("Widget", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.widgets = append(coll.widgets, rawWidget{
				id:    id,
				table: tbl,
				order: coll.nextSourceOrder(),
			})
			return 0
		}))
		return 1
	}))

	// On("visible", { widget = "...", commands = { Hide("hud") } })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.reactions = append(coll.reactions, rawReaction{event: event, table: tbl})
		return 0
	}))
}

// registerCommandHelpers exposes one constructor per driver verb. Each
// returns a table { verb = ..., widget = ..., args = {...} }.
func registerCommandHelpers(L *lua.LState) {
	for _, verb := range []string{"show", "hide", "resume", "register", "unregister", "destroy"} {
		L.SetGlobal(helperName(verb), widgetHelper(L, verb))
	}

	// Force("hud", "visible")
	L.SetGlobal("Force", L.NewFunction(func(L *lua.LState) int {
		widget := L.CheckString(1)
		st := L.CheckString(2)
		tbl := commandTable(L, "force", widget)
		args := L.NewTable()
		args.Append(lua.LString(st))
		tbl.RawSetString("args", args)
		L.Push(tbl)
		return 1
	}))

	// Tick(0.5), Wait(2)
	for _, verb := range []string{"tick", "wait"} {
		v := verb
		L.SetGlobal(helperName(v), L.NewFunction(func(L *lua.LState) int {
			tbl := commandTable(L, v, "")
			if L.GetTop() >= 1 {
				args := L.NewTable()
				args.Append(lua.LString(L.CheckNumber(1).String()))
				tbl.RawSetString("args", args)
			}
			L.Push(tbl)
			return 1
		}))
	}

	// Drain()
	L.SetGlobal("Drain", L.NewFunction(func(L *lua.LState) int {
		L.Push(commandTable(L, "drain", ""))
		return 1
	}))
}

func widgetHelper(L *lua.LState, verb string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		L.Push(commandTable(L, verb, L.CheckString(1)))
		return 1
	})
}

func commandTable(L *lua.LState, verb, widget string) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("verb", lua.LString(verb))
	if widget != "" {
		tbl.RawSetString("widget", lua.LString(widget))
	}
	return tbl
}

// helperName turns "unregister" into "Unregister".
func helperName(verb string) string {
	return string(verb[0]-'a'+'A') + verb[1:]
}
