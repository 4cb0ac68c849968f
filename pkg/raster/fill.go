// Package raster implements the pixel operations of the 2D context: solid
// rectangle fills and fill-style parsing. Every function borrows a surface
// for the duration of one call and keeps no reference to it.
package raster

import (
	"image"
	"image/color"

	"canvashost/pkg/surface"
)

// Transparent is the color written by ClearRect.
var Transparent = color.NRGBA{}

// FillRect writes c into every pixel of r that lies inside the surface,
// replacing what was there. A rectangle entirely outside the surface is a
// no-op. The clipped region is computed before any write, so the fill
// either fully applies or does nothing.
func FillRect(s *surface.Surface, r Rect, c color.NRGBA) image.Rectangle {
	img := s.Image()
	area := r.Pixels(img.Rect)
	if area.Empty() {
		return area
	}

	// Fill the first row, then replicate it.
	first := img.PixOffset(area.Min.X, area.Min.Y)
	rowLen := area.Dx() * 4
	row := img.Pix[first : first+rowLen]
	for i := 0; i < rowLen; i += 4 {
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
	for y := area.Min.Y + 1; y < area.Max.Y; y++ {
		off := img.PixOffset(area.Min.X, y)
		copy(img.Pix[off:off+rowLen], row)
	}
	return area
}

// FillRectStyle fills r with the surface's current fill color.
func FillRectStyle(s *surface.Surface, r Rect) image.Rectangle {
	return FillRect(s, r, s.FillColor())
}

// ClearRect resets the pixels of r to transparent black.
func ClearRect(s *surface.Surface, r Rect) image.Rectangle {
	return FillRect(s, r, Transparent)
}

// SetFillStyle parses style and makes it the surface's fill color. An
// unparseable style falls back to opaque black; it is never an error.
// The return value reports whether style was understood.
func SetFillStyle(s *surface.Surface, style string) bool {
	c, ok := ParseColor(style)
	if !ok {
		c = surface.DefaultFill
	}
	s.SetFillColor(c)
	return ok
}
