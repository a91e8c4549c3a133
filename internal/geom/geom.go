// Package geom provides the small 2D value types used by the spatial index.
package geom

// Vec2 is a 2D point or displacement.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// LenSq returns the squared length. Queries compare squared distances
// against radius² so no square root is ever taken on the hot path.
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// DistSq returns the squared distance between two points.
func (v Vec2) DistSq(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle. Min must not exceed Max on either
// axis; NewRect normalizes arbitrary corner pairs.
type Rect struct {
	Min, Max Vec2
}

// NewRect builds a rectangle from two opposite corners in any order.
func NewRect(a, b Vec2) Rect {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	return Rect{Min: a, Max: b}
}

// Contains reports whether p lies inside r, inclusive on all four bounds.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
