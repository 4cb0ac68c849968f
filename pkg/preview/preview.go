// Package preview renders canvas surfaces for people: transparent pixels
// are shown over a checkerboard and small canvases are upscaled without
// smoothing so individual pixels stay visible.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"canvashost/pkg/codec"
	"canvashost/pkg/ops"
	"canvashost/pkg/surface"
)

// Options controls preview rendering.
type Options struct {
	// Scale is the integer magnification applied to each surface pixel.
	Scale int
	// Cell is the checkerboard square size in output pixels.
	Cell int
	// Light and Dark are the checkerboard colors.
	Light, Dark color.Color
}

// DefaultOptions returns a 1:1 preview over an 8px grey checkerboard.
func DefaultOptions() Options {
	return Options{
		Scale: 1,
		Cell:  8,
		Light: color.NRGBA{0xee, 0xee, 0xee, 0xff},
		Dark:  color.NRGBA{0xcc, 0xcc, 0xcc, 0xff},
	}
}

// FitScale returns the largest integer scale at which a w x h surface fits
// in maxW x maxH, never less than 1.
func FitScale(w, h, maxW, maxH int) int {
	if w <= 0 || h <= 0 {
		return 1
	}
	s := min(maxW/w, maxH/h)
	return max(s, 1)
}

// Render composites src over a checkerboard at opts.Scale.
func Render(src image.Image, opts Options) image.Image {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Cell < 1 {
		opts.Cell = 8
	}
	b := src.Bounds()
	w, h := b.Dx()*opts.Scale, b.Dy()*opts.Scale

	dc := gg.NewContext(w, h)
	drawCheckerboard(dc, w, h, opts)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)
	dc.DrawImage(scaled, 0, 0)

	return dc.Image()
}

func drawCheckerboard(dc *gg.Context, w, h int, opts Options) {
	dc.SetColor(opts.Light)
	dc.Clear()
	dc.SetColor(opts.Dark)
	for y := 0; y < h; y += opts.Cell {
		for x := 0; x < w; x += opts.Cell {
			if (x/opts.Cell+y/opts.Cell)%2 == 1 {
				dc.DrawRectangle(float64(x), float64(y), float64(opts.Cell), float64(opts.Cell))
			}
		}
	}
	dc.Fill()
}

// FromImageData wraps read-back pixels as an image without copying.
func FromImageData(d codec.ImageData) *image.NRGBA {
	return &image.NRGBA{
		Pix:    d.Data,
		Stride: d.Width * 4,
		Rect:   image.Rect(0, 0, d.Width, d.Height),
	}
}

// Snapshot reads the full contents of surface id through the dispatcher.
func Snapshot(d *ops.Dispatcher, id surface.Handle) (*image.NRGBA, error) {
	w, h, err := d.Size(id)
	if err != nil {
		return nil, err
	}
	data, err := d.GetImageData(id, 0, 0, w, h)
	if err != nil {
		return nil, fmt.Errorf("reading surface %d: %w", id, err)
	}
	return FromImageData(data), nil
}

// Surface renders a preview of surface id.
func Surface(d *ops.Dispatcher, id surface.Handle, opts Options) (image.Image, error) {
	img, err := Snapshot(d, id)
	if err != nil {
		return nil, err
	}
	return Render(img, opts), nil
}

// SavePNG writes a preview of surface id to path.
func SavePNG(d *ops.Dispatcher, id surface.Handle, path string, opts Options) error {
	img, err := Surface(d, id, opts)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
