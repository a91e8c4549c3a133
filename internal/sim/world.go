// Package sim runs a tick-driven entity world on top of the spatial
// grid: random-walk movement inside a bounded area plus per-entity
// area-of-interest tracking. It is the workload the bench harness
// drives; all access happens on one goroutine, like a game loop.
package sim

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/gridworks/broadphase/internal/geom"
	"github.com/gridworks/broadphase/internal/spatial"
)

// Entity is one moving point in the world.
type Entity struct {
	ID  uint64
	Pos geom.Vec2
	Vel geom.Vec2

	// known holds the IDs currently inside this entity's view radius,
	// diffed every tick to produce enter/leave events.
	known map[uint64]struct{}
}

// Config sizes the world.
type Config struct {
	CellSize   float64
	Bounds     geom.Rect
	ViewRadius float64
	Seed       int64
}

// World owns the grid, the entity registry, and a reusable query
// buffer. Single-goroutine access only.
type World struct {
	grid     *spatial.Grid[uint64]
	entities map[uint64]*Entity
	bounds   geom.Rect
	view     float64
	nextID   uint64
	rng      *rand.Rand
	log      *zap.Logger

	// aoiBuf is reused across every visibility query so steady-state
	// ticks allocate nothing.
	aoiBuf []uint64

	enterEvents uint64
	leaveEvents uint64
}

func NewWorld(cfg Config, log *zap.Logger) (*World, error) {
	grid, err := spatial.New[uint64](cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("create grid: %w", err)
	}
	if cfg.ViewRadius <= 0 {
		grid.Close()
		return nil, fmt.Errorf("view radius must be positive, got %v", cfg.ViewRadius)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		grid:     grid,
		entities: make(map[uint64]*Entity),
		bounds:   cfg.Bounds,
		view:     cfg.ViewRadius,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		log:      log,
		aoiBuf:   make([]uint64, 0, 64),
	}, nil
}

// Spawn adds an entity at pos with the given velocity and returns its ID.
func (w *World) Spawn(pos geom.Vec2, vel geom.Vec2) uint64 {
	w.nextID++
	id := w.nextID
	w.entities[id] = &Entity{
		ID:    id,
		Pos:   pos,
		Vel:   vel,
		known: make(map[uint64]struct{}),
	}
	w.grid.Insert(pos, id)
	return id
}

// SpawnRandom adds n entities at uniform random positions inside the
// world bounds with small random velocities.
func (w *World) SpawnRandom(n int, speed float64) {
	for i := 0; i < n; i++ {
		pos := geom.V(
			w.bounds.Min.X+w.rng.Float64()*w.bounds.Width(),
			w.bounds.Min.Y+w.rng.Float64()*w.bounds.Height(),
		)
		vel := geom.V(
			(w.rng.Float64()*2-1)*speed,
			(w.rng.Float64()*2-1)*speed,
		)
		w.Spawn(pos, vel)
	}
}

// Despawn removes an entity and reports whether it existed.
func (w *World) Despawn(id uint64) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	removed := w.grid.Remove(e.Pos, id)
	if !removed {
		w.log.Warn("entity missing from grid on despawn", zap.Uint64("id", id))
	}
	delete(w.entities, id)
	return true
}

// Step advances every entity by dt, bouncing off the world bounds, and
// re-indexes moved entities. Visibility diffing runs after movement so
// enter/leave events reflect the post-move state.
func (w *World) Step(dt float64) {
	for id, e := range w.entities {
		next := e.Pos.Add(geom.V(e.Vel.X*dt, e.Vel.Y*dt))
		if next.X < w.bounds.Min.X || next.X > w.bounds.Max.X {
			e.Vel.X = -e.Vel.X
			next.X = e.Pos.X
		}
		if next.Y < w.bounds.Min.Y || next.Y > w.bounds.Max.Y {
			e.Vel.Y = -e.Vel.Y
			next.Y = e.Pos.Y
		}
		if next == e.Pos {
			continue
		}
		if !w.grid.Remove(e.Pos, id) {
			w.log.Warn("entity missing from grid on move", zap.Uint64("id", id))
		}
		w.grid.Insert(next, id)
		e.Pos = next
	}
	w.updateVisibility()
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return len(w.entities) }

// Grid exposes the underlying index for the bench harness's timed
// queries. Callers must stay on the world's goroutine.
func (w *World) Grid() *spatial.Grid[uint64] { return w.grid }

// EnterEvents returns the cumulative count of view-enter events.
func (w *World) EnterEvents() uint64 { return w.enterEvents }

// LeaveEvents returns the cumulative count of view-leave events.
func (w *World) LeaveEvents() uint64 { return w.leaveEvents }

// Close releases the underlying grid. The world must not be used after.
func (w *World) Close() {
	w.grid.Close()
	w.entities = nil
}
