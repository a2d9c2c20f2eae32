// Package geom holds the small amount of 2D geometry the interaction engine
// needs: points, axis-aligned rectangles and polygon key outlines.
package geom

import (
	"errors"
	"math"
)

// Point is a canvas coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive so that adjacent keys never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Inflate grows r by k on every side.
func (r Rect) Inflate(k float64) Rect {
	return Rect{X: r.X - k, Y: r.Y - k, W: r.W + 2*k, H: r.H + 2*k}
}

// Deflate shrinks r by k on every side.
func (r Rect) Deflate(k float64) Rect {
	return r.Inflate(-k)
}

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// MinSide returns the shorter side length.
func (r Rect) MinSide() float64 {
	return math.Min(r.W, r.H)
}

// Union returns the smallest rectangle containing r and o. An empty operand
// is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.W, o.X+o.W)
	y1 := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ErrDegenerateShape is returned by Polygon.Contains for outlines that have
// no area or carry non-finite coordinates.
var ErrDegenerateShape = errors.New("degenerate polygon shape")

// Polygon is a closed key outline.
type Polygon []Point

// Bounds returns the bounding rectangle.
func (pg Polygon) Bounds() Rect {
	if len(pg) == 0 {
		return Rect{}
	}
	minX, minY := pg[0].X, pg[0].Y
	maxX, maxY := minX, minY
	for _, p := range pg[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains tests p against the outline with the even-odd rule. Callers treat
// ErrDegenerateShape as outside.
func (pg Polygon) Contains(p Point) (bool, error) {
	if len(pg) < 3 {
		return false, nil
	}
	for _, v := range pg {
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			return false, ErrDegenerateShape
		}
	}
	if b := pg.Bounds(); b.W == 0 || b.H == 0 {
		return false, ErrDegenerateShape
	}
	within := false
	j := len(pg) - 1
	for i := range pg {
		a, b := pg[j], pg[i]
		j = i
		if (a.Y <= p.Y && p.Y < b.Y) || (b.Y <= p.Y && p.Y < a.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				within = !within
			}
		}
	}
	return within, nil
}
