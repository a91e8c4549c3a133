package spatial

import (
	"math"

	"github.com/gridworks/broadphase/internal/geom"
)

type queryConfig struct {
	distinct bool
	exact    bool
}

// QueryOption adjusts query filtering. Defaults: distinct results,
// exact distance test.
type QueryOption func(*queryConfig)

// AllowDuplicates disables deduplication: every admitted entry is
// appended even when several entries carry the same item.
func AllowDuplicates() QueryOption {
	return func(c *queryConfig) { c.distinct = false }
}

// Approximate skips the per-entry distance test on radius queries and
// admits every entry in any scanned cell. The result is a superset of
// the exact result at the same center and radius. QueryRect ignores it:
// the rectangle containment test is always exact.
func Approximate() QueryOption {
	return func(c *queryConfig) { c.exact = false }
}

// seen tracks items already appended during one query. Leased at query
// entry, released before return; never shared between calls.
type seen[T comparable] struct {
	set  map[T]struct{}
	list *[]T
	eq   EqualFunc[T]
}

func (g *Grid[T]) leaseSeen() seen[T] {
	if g.eq == nil {
		return seen[T]{set: g.dedupSets.Lease()}
	}
	return seen[T]{list: g.dedupLists.Lease(), eq: g.eq}
}

func (g *Grid[T]) releaseSeen(s seen[T]) {
	if s.set != nil {
		g.dedupSets.Release(s.set)
	}
	if s.list != nil {
		g.dedupLists.Release(s.list)
	}
}

// tryAdd inserts item and reports whether it was not already present.
func (s seen[T]) tryAdd(item T) bool {
	if s.set != nil {
		if _, dup := s.set[item]; dup {
			return false
		}
		s.set[item] = struct{}{}
		return true
	}
	for _, v := range *s.list {
		if s.eq(v, item) {
			return false
		}
	}
	*s.list = append(*s.list, item)
	return true
}

// Query appends every item within radius of center to *results and
// returns the refilled buffer. The buffer is caller-owned and reusable:
// it is truncated to zero length first and the same backing pointer is
// returned, so callers can chain and reuse across calls without
// allocation. A nil results pointer is ErrNilResults.
func (g *Grid[T]) Query(center geom.Vec2, radius float64, results *[]T, opts ...QueryOption) ([]T, error) {
	if results == nil {
		return nil, ErrNilResults
	}
	g.mustOpen()
	cfg := queryConfig{distinct: true, exact: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	*results = (*results)[:0]

	// A square superset of the circle: cheap to enumerate, over-covers
	// the corners. The exact test below trims them.
	cellRadius := int32(math.Ceil(radius / g.cellSize))
	centerCell := g.cellOf(center)
	radiusSq := radius * radius

	var dedup seen[T]
	if cfg.distinct {
		dedup = g.leaseSeen()
	}
	for cy := centerCell.cy - cellRadius; cy <= centerCell.cy+cellRadius; cy++ {
		for cx := centerCell.cx - cellRadius; cx <= centerCell.cx+cellRadius; cx++ {
			b := g.cells[cellKey{cx: cx, cy: cy}]
			if b == nil {
				continue
			}
			for i := range *b {
				e := &(*b)[i]
				if cfg.exact && e.pos.DistSq(center) > radiusSq {
					continue
				}
				if cfg.distinct && !dedup.tryAdd(e.item) {
					continue
				}
				*results = append(*results, e.item)
			}
		}
	}
	if cfg.distinct {
		g.releaseSeen(dedup)
	}
	return *results, nil
}

// QueryRect appends every item whose stored position lies inside rect
// (inclusive on all four bounds) to *results and returns the refilled
// buffer. Same buffer contract as Query.
func (g *Grid[T]) QueryRect(rect geom.Rect, results *[]T, opts ...QueryOption) ([]T, error) {
	if results == nil {
		return nil, ErrNilResults
	}
	g.mustOpen()
	cfg := queryConfig{distinct: true, exact: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	*results = (*results)[:0]

	minCell := g.cellOf(rect.Min)
	maxCell := g.cellOf(rect.Max)

	var dedup seen[T]
	if cfg.distinct {
		dedup = g.leaseSeen()
	}
	for cy := minCell.cy; cy <= maxCell.cy; cy++ {
		for cx := minCell.cx; cx <= maxCell.cx; cx++ {
			b := g.cells[cellKey{cx: cx, cy: cy}]
			if b == nil {
				continue
			}
			for i := range *b {
				e := &(*b)[i]
				if !rect.Contains(e.pos) {
					continue
				}
				if cfg.distinct && !dedup.tryAdd(e.item) {
					continue
				}
				*results = append(*results, e.item)
			}
		}
	}
	if cfg.distinct {
		g.releaseSeen(dedup)
	}
	return *results, nil
}
