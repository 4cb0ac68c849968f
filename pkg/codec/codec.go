// Package codec reads pixels back out of a surface and serializes surfaces
// to PNG. Read-back buffers are freshly allocated straight-alpha RGBA bytes,
// suitable for wrapping in a Uint8ClampedArray on the receiving side.
package codec

import (
	"image"
	"image/png"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/surface"
)

// ColorSpaceSRGB is the only color space the engine reports.
const ColorSpaceSRGB = "srgb"

// ImageData is the result of a read-back. It is a value object; the
// surface keeps no reference to Data.
type ImageData struct {
	Data       []byte `json:"data"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ColorSpace string `json:"colorSpace"`
}

// Options configures a Codec.
type Options struct {
	// Compression is the zlib effort used for PNG IDAT data.
	Compression png.CompressionLevel
	// MaxArea bounds the pixel count of a single read-back.
	MaxArea int64
}

// Codec encodes and reads back surfaces.
type Codec struct {
	opts Options
}

// New creates a codec.
func New(opts Options) *Codec {
	return &Codec{opts: opts}
}

// GetImageData copies the w×h block at (x, y) out of s. Negative extents
// are normalized the way the 2D context does; the parts of the block that
// fall outside the surface read as transparent black.
func (c *Codec) GetImageData(s *surface.Surface, x, y, w, h int) (ImageData, error) {
	if w == 0 || h == 0 {
		return ImageData{}, canvaserr.New(canvaserr.KindInvalidArgument,
			"source width and height must be non-zero, got %dx%d", w, h)
	}
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	if c.opts.MaxArea > 0 && int64(w)*int64(h) > c.opts.MaxArea {
		return ImageData{}, canvaserr.New(canvaserr.KindAllocation,
			"image data %dx%d exceeds max area %d", w, h, c.opts.MaxArea)
	}

	data := make([]byte, w*h*4)
	img := s.Image()
	src := image.Rect(x, y, x+w, y+h).Intersect(img.Rect)
	if !src.Empty() {
		rowLen := src.Dx() * 4
		for sy := src.Min.Y; sy < src.Max.Y; sy++ {
			srcOff := img.PixOffset(src.Min.X, sy)
			dstOff := ((sy-y)*w + (src.Min.X - x)) * 4
			copy(data[dstOff:dstOff+rowLen], img.Pix[srcOff:srcOff+rowLen])
		}
	}

	return ImageData{
		Data:       data,
		Width:      w,
		Height:     h,
		ColorSpace: ColorSpaceSRGB,
	}, nil
}
