package raster

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// namedColors holds the CSS named colors plus "transparent". colornames
// covers the SVG 1.1 set; rebeccapurple was added in CSS Color 4. All
// colornames values are opaque, so the RGBA to NRGBA conversion is exact.
var namedColors = func() map[string]color.NRGBA {
	m := make(map[string]color.NRGBA, len(colornames.Map)+1)
	for name, c := range colornames.Map {
		m[name] = color.NRGBA{c.R, c.G, c.B, c.A}
	}
	m["rebeccapurple"] = color.NRGBA{102, 51, 153, 255}
	m["transparent"] = color.NRGBA{}
	return m
}()

// ParseColor parses a CSS color string. Supported forms are named colors,
// #rgb, #rgba, #rrggbb, #rrggbbaa, and rgb()/rgba() with comma or space
// separated channels. Channels outside [0, 255] are clamped. The second
// result is false when the string is not understood.
func ParseColor(style string) (color.NRGBA, bool) {
	s := strings.ToLower(strings.TrimSpace(style))
	if s == "" {
		return color.NRGBA{}, false
	}

	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb") {
		return parseRGBFunc(s)
	}
	return color.NRGBA{}, false
}

func parseHex(hex string) (color.NRGBA, bool) {
	digits := make([]uint8, len(hex))
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return color.NRGBA{}, false
		}
		digits[i] = d
	}

	switch len(hex) {
	case 3, 4:
		c := color.NRGBA{digits[0] * 17, digits[1] * 17, digits[2] * 17, 255}
		if len(hex) == 4 {
			c.A = digits[3] * 17
		}
		return c, true
	case 6, 8:
		c := color.NRGBA{
			digits[0]<<4 | digits[1],
			digits[2]<<4 | digits[3],
			digits[4]<<4 | digits[5],
			255,
		}
		if len(hex) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
		return c, true
	}
	return color.NRGBA{}, false
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// parseRGBFunc handles rgb(r, g, b), rgba(r, g, b, a) and the space form
// rgb(r g b / a).
func parseRGBFunc(s string) (color.NRGBA, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return color.NRGBA{}, false
	}
	if name := s[:open]; name != "rgb" && name != "rgba" {
		return color.NRGBA{}, false
	}
	body := s[open+1 : len(s)-1]

	var parts []string
	if strings.Contains(body, ",") {
		for _, p := range strings.Split(body, ",") {
			parts = append(parts, strings.TrimSpace(p))
		}
	} else {
		channels, alpha, hasAlpha := strings.Cut(body, "/")
		parts = strings.Fields(channels)
		if hasAlpha {
			parts = append(parts, strings.TrimSpace(alpha))
		}
	}
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}

	var c color.NRGBA
	ch := [3]*uint8{&c.R, &c.G, &c.B}
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i])
		if !ok {
			return color.NRGBA{}, false
		}
		*ch[i] = v
	}
	c.A = 255
	if len(parts) == 4 {
		a, ok := parseAlpha(parts[3])
		if !ok {
			return color.NRGBA{}, false
		}
		c.A = a
	}
	return c, true
}

func parseChannel(p string) (uint8, bool) {
	if pct, ok := strings.CutSuffix(p, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return toByte(f / 100 * 255), true
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return toByte(f), true
}

func parseAlpha(p string) (uint8, bool) {
	scale := 255.0
	if pct, ok := strings.CutSuffix(p, "%"); ok {
		p, scale = pct, 255.0/100
	}
	f, err := strconv.ParseFloat(p, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return toByte(f * scale), true
}

func toByte(f float64) uint8 {
	return uint8(math.Round(Clamp(0, f, 255)))
}

// FormatColor serializes c the way a browser reports fillStyle: #rrggbb
// for opaque colors, rgba(r, g, b, a) otherwise.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		const hex = "0123456789abcdef"
		return string([]byte{'#',
			hex[c.R>>4], hex[c.R&0xf],
			hex[c.G>>4], hex[c.G&0xf],
			hex[c.B>>4], hex[c.B&0xf],
		})
	}
	alpha := formatAlpha(c.A)
	return "rgba(" + strconv.Itoa(int(c.R)) + ", " + strconv.Itoa(int(c.G)) + ", " +
		strconv.Itoa(int(c.B)) + ", " + alpha + ")"
}

// formatAlpha returns the shortest decimal (up to three places) that parses
// back to a.
func formatAlpha(a uint8) string {
	f := float64(a) / 255
	for prec := 1; prec < 3; prec++ {
		s := strconv.FormatFloat(f, 'f', prec, 64)
		if v, _ := strconv.ParseFloat(s, 64); toByte(v*255) == a {
			return strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
	}
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}
