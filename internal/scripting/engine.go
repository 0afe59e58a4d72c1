package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for difficulty tuning.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "difficulty"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Scale multiplies a hostile template's stats.
type Scale struct {
	HP     float64
	Speed  float64
	Damage float64
}

// Identity is the scale applied when no script overrides it.
var Identity = Scale{HP: 1, Speed: 1, Damage: 1}

// SpawnInterval calls the Lua spawn_interval(level, base_ms) function and
// returns the spawn cadence for a clock level. Falls back to base.
func (e *Engine) SpawnInterval(level int, base time.Duration) time.Duration {
	fn := e.vm.GetGlobal("spawn_interval")
	if fn == lua.LNil {
		return base
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(level), lua.LNumber(base.Milliseconds())); err != nil {
		e.log.Error("lua spawn_interval error", zap.Error(err))
		return base
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	ms, ok := result.(lua.LNumber)
	if !ok || ms <= 0 {
		e.log.Error("lua spawn_interval returned non-positive or non-number",
			zap.String("value", result.String()))
		return base
	}
	return time.Duration(float64(ms) * float64(time.Millisecond))
}

// HostileScale calls the Lua hostile_scale(level) function.
func (e *Engine) HostileScale(level int) Scale {
	fn := e.vm.GetGlobal("hostile_scale")
	if fn == lua.LNil {
		return Identity
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(level)); err != nil {
		e.log.Error("lua hostile_scale error", zap.Error(err))
		return Identity
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua hostile_scale returned non-table")
		return Identity
	}

	return Scale{
		HP:     numberOr(rt.RawGetString("hp"), 1),
		Speed:  numberOr(rt.RawGetString("speed"), 1),
		Damage: numberOr(rt.RawGetString("damage"), 1),
	}
}

func numberOr(v lua.LValue, def float64) float64 {
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
