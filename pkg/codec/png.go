package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/surface"
)

// DataURLPrefix starts every string returned by DataURL.
const DataURLPrefix = "data:image/png;base64,"

const (
	colorTypeRGBA = 6
	maxIDATChunk  = 1 << 20
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// EncodePNG writes the whole surface to w as an 8-bit RGBA, non-interlaced
// PNG. The output depends only on the pixels and the compression level, so
// encoding the same buffer twice yields identical bytes.
func (c *Codec) EncodePNG(s *surface.Surface, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = canvaserr.New(canvaserr.KindEncode, "png encoder panic: %v", r)
		}
	}()

	img := s.Image()
	idat, err := c.compress(img)
	if err != nil {
		return canvaserr.New(canvaserr.KindEncode, "compressing image data: %w", err)
	}

	e := &chunkWriter{w: w}
	e.write(pngSignature)
	e.chunk("IHDR", ihdr(img.Rect.Dx(), img.Rect.Dy()))
	for len(idat) > 0 {
		n := min(len(idat), maxIDATChunk)
		e.chunk("IDAT", idat[:n])
		idat = idat[n:]
	}
	e.chunk("IEND", nil)
	if e.err != nil {
		return canvaserr.New(canvaserr.KindEncode, "writing png: %w", e.err)
	}
	return nil
}

// PNG returns the encoded surface.
func (c *Codec) PNG(s *surface.Surface) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL returns the surface as a data:image/png;base64 URL. This is the
// fixed toDataURL contract: PNG only, whatever type or quality is asked for.
func (c *Codec) DataURL(s *surface.Surface) (string, error) {
	b, err := c.PNG(s)
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(b), nil
}

func ihdr(width, height int) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], uint32(width))
	binary.BigEndian.PutUint32(b[4:8], uint32(height))
	b[8] = 8 // bit depth
	b[9] = colorTypeRGBA
	// compression, filter and interlace methods are all 0
	return b
}

type chunkWriter struct {
	w   io.Writer
	err error
}

func (e *chunkWriter) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *chunkWriter) chunk(name string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], name)

	crc := crc32.NewIEEE()
	crc.Write(header[4:8])
	crc.Write(data)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	e.write(header[:])
	e.write(data)
	e.write(footer[:])
}

func zlibLevel(l png.CompressionLevel) int {
	switch l {
	case png.NoCompression:
		return zlib.NoCompression
	case png.BestSpeed:
		return zlib.BestSpeed
	case png.BestCompression:
		return zlib.BestCompression
	default:
		return zlib.DefaultCompression
	}
}

// compress filters every scanline and deflates the result.
func (c *Codec) compress(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlibLevel(c.opts.Compression))
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}

	adaptive := c.opts.Compression != png.NoCompression
	width, height := img.Rect.Dx(), img.Rect.Dy()
	rowLen := width * 4
	prev := make([]byte, rowLen)
	var f rowFilter
	f.init(rowLen)

	for y := 0; y < height; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		cur := img.Pix[off : off+rowLen]
		line := f.apply(cur, prev, adaptive)
		if _, err := zw.Write(line); err != nil {
			return nil, err
		}
		prev = cur
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
