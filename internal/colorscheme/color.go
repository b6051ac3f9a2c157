// Package colorscheme decides whether a rendered page is perceived as dark or light.
//
// Signals are evaluated cheapest first: explicit author hints (color-scheme
// metadata, marker classes, theme attributes) always override the computed
// background fallback.
package colorscheme

import (
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BT.709 luma weights.
const (
	lumaR = 0.2126
	lumaG = 0.7152
	lumaB = 0.0722
)

// RGBA is a parsed CSS color. Channels are 0-255, A is 0-1.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Opaque reports whether the color fully covers what is beneath it.
func (c RGBA) Opaque() bool {
	return c.A >= 1
}

// Transparent reports whether the color is fully see-through.
func (c RGBA) Transparent() bool {
	return c.A <= 0
}

// RelativeLuminance returns the perceptual luminance of an sRGB color in [0,1].
// Each channel is linearised with the sRGB transfer inverse (v/12.92 at or
// below 0.04045, ((v+0.055)/1.055)^2.4 above) before weighting.
func RelativeLuminance(r, g, b uint8) float64 {
	lr, lg, lb := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}.LinearRgb()
	return lumaR*lr + lumaG*lg + lumaB*lb
}

// SRGBLightness is the gamma-free weighted lightness used by the grid detector.
func SRGBLightness(r, g, b uint8) float64 {
	return (lumaR*float64(r) + lumaG*float64(g) + lumaB*float64(b)) / 255
}

// ParseColor parses rgb()/rgba(), hsl()/hsla(), 3/4/6/8-digit hex and
// "transparent". Named colors are not resolved.
func ParseColor(s string) (RGBA, bool) {
	color := strings.ToLower(strings.TrimSpace(s))
	switch {
	case color == "":
		return RGBA{}, false
	case color == "transparent":
		return RGBA{}, true
	case strings.HasPrefix(color, "#"):
		return parseHex(color[1:])
	case strings.HasPrefix(color, "rgb"):
		return parseRGBFunc(color)
	case strings.HasPrefix(color, "hsl"):
		return parseHSLFunc(color)
	}
	return RGBA{}, false
}

func parseHex(h string) (RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, c := range h {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		h = b.String()
	case 6, 8:
	default:
		return RGBA{}, false
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	if len(h) == 6 {
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
	}
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: float64(uint8(v)) / 255,
	}, true
}

// functionArgs splits "name(a, b c / d)" into its numeric arguments.
func functionArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	inner := s[open+1 : len(s)-1]
	args := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t' || r == '\n'
	})
	return args, len(args) >= 3
}

func parseRGBFunc(s string) (RGBA, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return RGBA{}, false
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseComponent(args[i], 255)
		if !ok {
			return RGBA{}, false
		}
		ch[i] = clampByte(v)
	}

	alpha := 1.0
	if len(args) > 3 {
		a, ok := parseComponent(args[3], 1)
		if !ok {
			return RGBA{}, false
		}
		alpha = clampUnit(a)
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

func parseHSLFunc(s string) (RGBA, bool) {
	args, ok := functionArgs(s)
	if !ok {
		return RGBA{}, false
	}

	h, ok := parseHue(args[0])
	if !ok {
		return RGBA{}, false
	}
	sat, ok := parseComponent(args[1], 1)
	if !ok {
		return RGBA{}, false
	}
	light, ok := parseComponent(args[2], 1)
	if !ok {
		return RGBA{}, false
	}

	alpha := 1.0
	if len(args) > 3 {
		a, ok := parseComponent(args[3], 1)
		if !ok {
			return RGBA{}, false
		}
		alpha = clampUnit(a)
	}

	r, g, b := colorful.Hsl(h, clampUnit(sat), clampUnit(light)).Clamped().RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, true
}

// parseComponent reads a number or percentage; percentages are relative to scale.
func parseComponent(s string, scale float64) (float64, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return v / 100 * scale, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseHue(s string) (float64, bool) {
	units := []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 360.0 / 400},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			v, err := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return normalizeHue(v * u.scale), true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return normalizeHue(v), true
}

func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
