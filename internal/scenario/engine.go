// Package scenario loads bench workload definitions from Lua scripts.
//
// A scenario file sets a global `scenario` table and may define an
// optional `place(i)` function returning the initial x, y of entity i:
//
//	scenario = {
//	    name = "uniform-10k",
//	    cell_size = 16,
//	    area = { w = 1024, h = 1024 },
//	    entities = 10000,
//	    ticks = 200,
//	    queries_per_tick = 64,
//	    radius = 48,
//	    speed = 20,
//	    distinct = true,
//	    exact = true,
//	    seed = 42,
//	}
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/gridworks/broadphase/internal/geom"
)

// Scenario is one decoded workload definition.
type Scenario struct {
	Name           string
	CellSize       float64
	Area           geom.Rect
	Entities       int
	Ticks          int
	QueriesPerTick int
	Radius         float64
	Speed          float64
	Distinct       bool
	Exact          bool
	Seed           int64

	eng   *Engine
	place *lua.LFunction
}

// Engine wraps a single gopher-lua VM. Single-goroutine access only.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log}
}

func (e *Engine) Close() {
	e.vm.Close()
}

// LoadDir loads every .lua file in dir, sorted by name. A missing
// directory is not an error; it just yields no scenarios.
func (e *Engine) LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var out []*Scenario
	for _, name := range names {
		path := filepath.Join(dir, name)
		sc, err := e.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded scenario", zap.String("file", path), zap.String("name", sc.Name))
		out = append(out, sc)
	}
	return out, nil
}

// LoadFile runs one scenario script and decodes the globals it set.
func (e *Engine) LoadFile(path string) (*Scenario, error) {
	e.resetGlobals()
	if err := e.vm.DoFile(path); err != nil {
		return nil, err
	}
	return e.decode(filepath.Base(path))
}

// LoadString is LoadFile for an in-memory script.
func (e *Engine) LoadString(src string) (*Scenario, error) {
	e.resetGlobals()
	if err := e.vm.DoString(src); err != nil {
		return nil, err
	}
	return e.decode("<string>")
}

// resetGlobals clears the per-script globals so one file cannot leak
// its place function into the next.
func (e *Engine) resetGlobals() {
	e.vm.SetGlobal("scenario", lua.LNil)
	e.vm.SetGlobal("place", lua.LNil)
}

func (e *Engine) decode(origin string) (*Scenario, error) {
	tbl, ok := e.vm.GetGlobal("scenario").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s: script did not set a scenario table", origin)
	}

	sc := &Scenario{
		Name:           tblString(tbl, "name", origin),
		CellSize:       tblFloat(tbl, "cell_size", 0),
		Entities:       int(tblFloat(tbl, "entities", 0)),
		Ticks:          int(tblFloat(tbl, "ticks", 100)),
		QueriesPerTick: int(tblFloat(tbl, "queries_per_tick", 32)),
		Radius:         tblFloat(tbl, "radius", 0),
		Speed:          tblFloat(tbl, "speed", 10),
		Distinct:       tblBool(tbl, "distinct", true),
		Exact:          tblBool(tbl, "exact", true),
		Seed:           int64(tblFloat(tbl, "seed", 1)),
		eng:            e,
	}

	if area, ok := tbl.RawGetString("area").(*lua.LTable); ok {
		w := tblFloat(area, "w", 0)
		h := tblFloat(area, "h", 0)
		sc.Area = geom.NewRect(geom.V(0, 0), geom.V(w, h))
	}

	if fn, ok := e.vm.GetGlobal("place").(*lua.LFunction); ok {
		sc.place = fn
	}

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return sc, nil
}

func (sc *Scenario) validate() error {
	switch {
	case sc.CellSize <= 0:
		return fmt.Errorf("cell_size must be positive, got %v", sc.CellSize)
	case sc.Entities <= 0:
		return fmt.Errorf("entities must be positive, got %d", sc.Entities)
	case sc.Ticks <= 0:
		return fmt.Errorf("ticks must be positive, got %d", sc.Ticks)
	case sc.QueriesPerTick < 0:
		return fmt.Errorf("queries_per_tick must not be negative, got %d", sc.QueriesPerTick)
	case sc.Radius <= 0:
		return fmt.Errorf("radius must be positive, got %v", sc.Radius)
	case sc.Area.Width() <= 0 || sc.Area.Height() <= 0:
		return fmt.Errorf("area.w and area.h must be positive")
	}
	return nil
}

// HasPlacement reports whether the script defined a place function.
func (sc *Scenario) HasPlacement() bool { return sc.place != nil }

// Place calls the script's place(i) function and returns the position
// for entity i. Must only be called when HasPlacement is true.
func (sc *Scenario) Place(i int) (geom.Vec2, error) {
	vm := sc.eng.vm
	if err := vm.CallByParam(lua.P{
		Fn:      sc.place,
		NRet:    2,
		Protect: true,
	}, lua.LNumber(i)); err != nil {
		return geom.Vec2{}, fmt.Errorf("place(%d): %w", i, err)
	}
	y := vm.Get(-1)
	x := vm.Get(-2)
	vm.Pop(2)

	xn, okX := x.(lua.LNumber)
	yn, okY := y.(lua.LNumber)
	if !okX || !okY {
		return geom.Vec2{}, fmt.Errorf("place(%d): expected two numbers, got (%s, %s)", i, x.Type(), y.Type())
	}
	return geom.V(float64(xn), float64(yn)), nil
}

func tblString(t *lua.LTable, key, def string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return def
}

func tblFloat(t *lua.LTable, key string, def float64) float64 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return def
}

func tblBool(t *lua.LTable, key string, def bool) bool {
	if v := t.RawGetString(key); v != lua.LNil {
		return lua.LVAsBool(v)
	}
	return def
}
