package raster

import (
	"image"
	"math"

	"golang.org/x/exp/constraints"
)

// Fround rounds v to the nearest single-precision value, exactly like
// JavaScript's Math.fround. All drawing arguments pass through it before
// any geometry is computed.
func Fround(v float64) float32 {
	return float32(v)
}

// Rect is a drawing rectangle in surface-local coordinates.
type Rect struct {
	X, Y, W, H float32
}

// NewRect builds a Rect from boundary arguments, applying Fround to each.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: Fround(x), Y: Fround(y), W: Fround(w), H: Fround(h)}
}

// Finite reports whether all four components are finite.
func (r Rect) Finite() bool {
	for _, v := range [...]float32{r.X, r.Y, r.W, r.H} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Pixels returns the pixels covered by r, clipped to bounds. A pixel is
// covered when its centre lies in the half-open span [x, x+w). Negative
// extents are normalized first. Non-finite rectangles cover nothing.
func (r Rect) Pixels(bounds image.Rectangle) image.Rectangle {
	if !r.Finite() {
		return image.Rectangle{}
	}
	x0, x1 := span(r.X, r.W)
	y0, y1 := span(r.Y, r.H)

	px := image.Rect(
		snap(x0, bounds.Min.X, bounds.Max.X),
		snap(y0, bounds.Min.Y, bounds.Max.Y),
		snap(x1, bounds.Min.X, bounds.Max.X),
		snap(y1, bounds.Min.Y, bounds.Max.Y),
	)
	return px.Intersect(bounds)
}

// span returns the ordered edges of one axis, summed in single precision.
func span(origin, extent float32) (float64, float64) {
	end := origin + extent
	if extent < 0 {
		origin, end = end, origin
	}
	return float64(origin), float64(end)
}

// snap converts an edge to the index of the first pixel whose centre lies
// at or beyond it. Edges beyond lo-1/hi+1 are clamped so the conversion to
// int cannot overflow.
func snap(edge float64, lo, hi int) int {
	e := Clamp(float64(lo-1), edge, float64(hi+1))
	return int(math.Ceil(e - 0.5))
}

// Clamp returns min(max(v, lo), hi).
func Clamp[T constraints.Ordered](lo, v, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
