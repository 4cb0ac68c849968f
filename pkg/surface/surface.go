// Package surface owns canvas pixel memory. A Surface is a fixed-size
// straight-alpha RGBA buffer; a Registry hands out integer handles that are
// the only way to reach a Surface from across the operation boundary.
package surface

import (
	"image"
	"image/color"
	"sync"
)

// DefaultFill is the fill color of a new surface and the fallback for
// unparseable fill styles.
var DefaultFill = color.NRGBA{0, 0, 0, 255}

// Surface is the pixel buffer backing one canvas. Pixels are row-major
// with a top-left origin; len(Image().Pix) == Width()*Height()*4 always.
type Surface struct {
	mu   sync.Mutex
	img  *image.NRGBA
	fill color.NRGBA
}

func newSurface(width, height int) *Surface {
	return &Surface{
		img:  image.NewNRGBA(image.Rect(0, 0, width, height)),
		fill: DefaultFill,
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Bounds returns the surface rectangle, always anchored at (0, 0).
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Image exposes the backing buffer. Callers must hold the surface through
// Registry.Borrow and must not retain the pointer after the call returns.
func (s *Surface) Image() *image.NRGBA { return s.img }

// FillColor returns the current fill color.
func (s *Surface) FillColor() color.NRGBA { return s.fill }

// SetFillColor replaces the current fill color.
func (s *Surface) SetFillColor(c color.NRGBA) { s.fill = c }
