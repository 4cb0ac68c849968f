package ops

import (
	"canvashost/pkg/canvaserr"
	"canvashost/pkg/codec"
	"canvashost/pkg/raster"
	"canvashost/pkg/surface"
)

// The typed methods below are the Go-side form of each operation. Call
// parses loosely typed arguments and lands here.

// Create allocates a width×height surface.
func (d *Dispatcher) Create(width, height int) (surface.Handle, error) {
	return d.reg.Create(width, height)
}

// CreateDefault allocates a surface of the configured default size.
func (d *Dispatcher) CreateDefault() (surface.Handle, error) {
	return d.reg.Create(d.defaultWidth, d.defaultHeight)
}

// Destroy releases a surface.
func (d *Dispatcher) Destroy(id surface.Handle) error {
	return d.reg.Destroy(id)
}

// Size returns the surface dimensions.
func (d *Dispatcher) Size(id surface.Handle) (width, height int, err error) {
	err = d.reg.Borrow(id, func(s *surface.Surface) error {
		width, height = s.Width(), s.Height()
		return nil
	})
	return width, height, err
}

// FillRect fills a rectangle with the current fill style.
func (d *Dispatcher) FillRect(id surface.Handle, x, y, w, h float64) error {
	r := raster.NewRect(x, y, w, h)
	return d.reg.Borrow(id, func(s *surface.Surface) error {
		raster.FillRectStyle(s, r)
		return nil
	})
}

// FillRectColor fills a rectangle with style without changing the current
// fill style. An unparseable style fills with opaque black.
func (d *Dispatcher) FillRectColor(id surface.Handle, x, y, w, h float64, style string) error {
	r := raster.NewRect(x, y, w, h)
	c, ok := raster.ParseColor(style)
	if !ok {
		c = surface.DefaultFill
	}
	return d.reg.Borrow(id, func(s *surface.Surface) error {
		raster.FillRect(s, r, c)
		return nil
	})
}

// ClearRect resets a rectangle to transparent black.
func (d *Dispatcher) ClearRect(id surface.Handle, x, y, w, h float64) error {
	r := raster.NewRect(x, y, w, h)
	return d.reg.Borrow(id, func(s *surface.Surface) error {
		raster.ClearRect(s, r)
		return nil
	})
}

// SetFillStyle parses and stores the fill color.
func (d *Dispatcher) SetFillStyle(id surface.Handle, style string) error {
	return d.reg.Borrow(id, func(s *surface.Surface) error {
		raster.SetFillStyle(s, style)
		return nil
	})
}

// FillStyle returns the serialized current fill color.
func (d *Dispatcher) FillStyle(id surface.Handle) (string, error) {
	var out string
	err := d.reg.Borrow(id, func(s *surface.Surface) error {
		out = raster.FormatColor(s.FillColor())
		return nil
	})
	return out, err
}

// GetImageData reads back a block of pixels.
func (d *Dispatcher) GetImageData(id surface.Handle, x, y, w, h int) (codec.ImageData, error) {
	var out codec.ImageData
	err := d.reg.Borrow(id, func(s *surface.Surface) error {
		var err error
		out, err = d.codec.GetImageData(s, x, y, w, h)
		return err
	})
	return out, withHandle(id, err)
}

// ToDataURL returns the surface as a PNG data URL.
func (d *Dispatcher) ToDataURL(id surface.Handle) (string, error) {
	var out string
	err := d.reg.Borrow(id, func(s *surface.Surface) error {
		var err error
		out, err = d.codec.DataURL(s)
		return err
	})
	return out, withHandle(id, err)
}

// EncodePNG returns the surface as PNG bytes.
func (d *Dispatcher) EncodePNG(id surface.Handle) ([]byte, error) {
	var out []byte
	err := d.reg.Borrow(id, func(s *surface.Surface) error {
		var err error
		out, err = d.codec.PNG(s)
		return err
	})
	return out, withHandle(id, err)
}

// GetContext checks that the surface can provide a context of the given
// type. Only "2d" is supported.
func (d *Dispatcher) GetContext(id surface.Handle, kind string) error {
	if _, err := d.reg.Resolve(id); err != nil {
		return err
	}
	if kind != Context2D {
		return canvaserr.WithHandle(uint32(id),
			canvaserr.New(canvaserr.KindUnsupported, "context type %q is not supported", kind))
	}
	return nil
}

func withHandle(id surface.Handle, err error) error {
	return canvaserr.WithHandle(uint32(id), err)
}
