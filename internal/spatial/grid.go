// Package spatial implements a uniform-grid broad-phase index over 2D
// point-located items.
//
// Positions hash to integer cells by floor division of the fixed cell
// size, so lookup is O(1) amortized under roughly uniform density.
// Queries scan only the cells that can intersect the requested region and
// fill a caller-owned result buffer; no operation allocates on the hot
// path once bucket and dedup-set capacity has warmed up. Accessed from a
// single goroutine — no locks.
package spatial

import (
	"errors"
	"math"

	"github.com/gridworks/broadphase/internal/geom"
	"github.com/gridworks/broadphase/internal/pool"
)

var (
	// ErrCellSize is returned by New when the cell size is not positive.
	ErrCellSize = errors.New("spatial: cell size must be positive")
	// ErrNilResults is returned by Query and QueryRect when the caller
	// passes a nil results buffer.
	ErrNilResults = errors.New("spatial: results buffer is nil")
)

// EqualFunc is a custom item equality used for removal matching and
// result deduplication. It is never used to place items into cells.
type EqualFunc[T any] func(a, b T) bool

type cellKey struct {
	cx, cy int32
}

// entry pins the position an item was inserted at. Cell placement is
// derived from this stored position, never re-derived from the item.
type entry[T comparable] struct {
	pos  geom.Vec2
	item T
}

// Grid is the spatial index. The zero value is not usable; construct
// with New. Insert, Remove, Query, QueryRect, Clear and the accessors
// may be called freely until Close, after which any use panics.
type Grid[T comparable] struct {
	cellSize    float64
	invCellSize float64
	eq          EqualFunc[T] // nil means ==
	cells       map[cellKey]*[]entry[T]
	count       int

	// Pools are owned by this instance so Close on one grid cannot
	// retire buffers another grid is still leasing.
	buckets    *pool.ListPool[entry[T]]
	dedupSets  *pool.SetPool[T]
	dedupLists *pool.ListPool[T]

	closed bool
}

// Option configures a Grid at construction.
type Option[T comparable] func(*Grid[T])

// WithEqualFunc overrides the natural == equality for removal matching
// and distinct-mode deduplication. With a custom equality the transient
// dedup set degrades to a linear scan, since there is no user hash.
func WithEqualFunc[T comparable](eq EqualFunc[T]) Option[T] {
	return func(g *Grid[T]) { g.eq = eq }
}

// New creates a grid with the given cell side length.
func New[T comparable](cellSize float64, opts ...Option[T]) (*Grid[T], error) {
	if cellSize <= 0 {
		return nil, ErrCellSize
	}
	g := &Grid[T]{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey]*[]entry[T]),
		buckets:     pool.NewListPool[entry[T]](),
		dedupSets:   pool.NewSetPool[T](),
		dedupLists:  pool.NewListPool[T](),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// cellOf floors, not truncates, so negative coordinates hash
// consistently with positive ones: (-0.1,-0.1) at cellSize 1 is (-1,-1).
func (g *Grid[T]) cellOf(p geom.Vec2) cellKey {
	return cellKey{
		cx: int32(math.Floor(p.X * g.invCellSize)),
		cy: int32(math.Floor(p.Y * g.invCellSize)),
	}
}

func (g *Grid[T]) itemsEqual(a, b T) bool {
	if g.eq != nil {
		return g.eq(a, b)
	}
	return a == b
}

func (g *Grid[T]) mustOpen() {
	if g.closed {
		panic("spatial: use of closed Grid")
	}
}

// CellSize returns the fixed cell side length.
func (g *Grid[T]) CellSize() float64 { return g.cellSize }

// CellCount returns the number of occupied cells. Empty buckets are
// released eagerly, so this never counts a cell with no entries.
func (g *Grid[T]) CellCount() int { return len(g.cells) }

// Len returns the total number of stored entries.
func (g *Grid[T]) Len() int { return g.count }

// Insert adds item at pos. Duplicate (pos, item) pairs are allowed; each
// insertion stores its own entry.
func (g *Grid[T]) Insert(pos geom.Vec2, item T) {
	g.mustOpen()
	k := g.cellOf(pos)
	b := g.cells[k]
	if b == nil {
		b = g.buckets.Lease()
		g.cells[k] = b
	}
	*b = append(*b, entry[T]{pos: pos, item: item})
	g.count++
}

// Remove deletes one entry matching pos exactly and item under the
// configured equality, and reports whether a match was found. With
// duplicate pairs present, which single entry goes is unspecified.
// An emptied bucket is released and its cell key deleted.
func (g *Grid[T]) Remove(pos geom.Vec2, item T) bool {
	g.mustOpen()
	k := g.cellOf(pos)
	b := g.cells[k]
	if b == nil {
		return false
	}
	es := *b
	// Reverse scan so swap-remove near the tail is O(1).
	for i := len(es) - 1; i >= 0; i-- {
		if es[i].pos != pos || !g.itemsEqual(es[i].item, item) {
			continue
		}
		last := len(es) - 1
		es[i] = es[last]
		var zero entry[T]
		es[last] = zero
		*b = es[:last]
		g.count--
		if last == 0 {
			delete(g.cells, k)
			g.buckets.Release(b)
		}
		return true
	}
	return false
}

// Clear releases every bucket back to the pool and empties the cell
// mapping. Idempotent. The dedup-set pool stays usable; only Close
// retires it.
func (g *Grid[T]) Clear() {
	g.mustOpen()
	for _, b := range g.cells {
		g.buckets.Release(b)
	}
	clear(g.cells)
	g.count = 0
}

// Close clears the grid and permanently retires its pools. Idempotent;
// any other operation after Close panics.
func (g *Grid[T]) Close() {
	if g.closed {
		return
	}
	g.Clear()
	g.buckets.Close()
	g.dedupSets.Close()
	g.dedupLists.Close()
	g.closed = true
}
