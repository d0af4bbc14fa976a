package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/widgetcore/engine/state"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	scene     *lua.LTable
	widgets   []rawWidget
	reactions []rawReaction
	order     int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Option configures Load.
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger reports validation warnings through log.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log.With().Str("component", "loader").Logger() }
}

// Load reads all .lua files from dir, compiles them into scene definitions,
// validates references, and returns the immutable Defs. The Lua VM is
// discarded after loading.
func Load(dir string, opts ...Option) (*state.Defs, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scene directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// scene.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling scene data: %w", err)
	}

	warnings, err := validate(defs)
	for _, w := range warnings {
		o.log.Warn().Str("dir", dir).Msg(w)
	}
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}
