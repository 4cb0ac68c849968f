package visualtest

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"canvashost/pkg/images"
)

// CompareResult contains the results of an image comparison.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest channel difference found
}

// CompareOptions configures the image comparison.
type CompareOptions struct {
	// Tolerance is the largest accepted difference per channel (0-255).
	// Canvas output is exact, so 0 is the usual setting.
	Tolerance int

	// MaxDifferentPercent, if > 0, passes comparisons where at most this
	// percentage of pixels differ.
	MaxDifferentPercent float64

	// DiffImagePath, if set, receives an image marking differing pixels in
	// red when the comparison fails.
	DiffImagePath string
}

// DefaultOptions requires an exact match.
func DefaultOptions() CompareOptions {
	return CompareOptions{}
}

// CompareImages compares two images channel by channel in straight
// (non-premultiplied) alpha, so fully transparent pixels with different
// color bytes count as different.
func CompareImages(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab.Size() != eb.Size() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", ab.Size(), eb.Size())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: ab.Dx() * ab.Dy(),
	}

	var diff *image.NRGBA
	if opts.DiffImagePath != "" {
		diff = image.NewNRGBA(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	}

	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			a := nrgbaAt(actual, ab.Min.X+x, ab.Min.Y+y)
			e := nrgbaAt(expected, eb.Min.X+x, eb.Min.Y+y)

			d := channelDiff(a, e)
			result.MaxDifference = max(result.MaxDifference, d)

			if d > opts.Tolerance {
				result.Match = false
				result.DifferentPixels++
				if diff != nil {
					diff.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
				}
			} else if diff != nil {
				// Faded copy of the actual pixel.
				diff.SetNRGBA(x, y, color.NRGBA{a.R, a.G, a.B, a.A / 4})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 && result.TotalPixels > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if diff != nil && !result.Match {
		if err := gg.SavePNG(opts.DiffImagePath, diff); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}

	return result, nil
}

// CompareFiles compares two PNG files. The actual file is always re-read;
// the expected file is served from the image cache after the first load.
func CompareFiles(actualPath, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	images.ForgetImage(actualPath)
	actual, err := images.LoadImage(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual image: %w", err)
	}
	expected, err := images.LoadImage(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected image: %w", err)
	}
	return CompareImages(actual, expected, opts)
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n.NRGBAAt(x, y)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func channelDiff(a, b color.NRGBA) int {
	return max(
		absInt(int(a.R)-int(b.R)),
		absInt(int(a.G)-int(b.G)),
		absInt(int(a.B)-int(b.B)),
		absInt(int(a.A)-int(b.A)),
	)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
