package textmode

import (
	"image/color"
	"math"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{0, 0, 0, 0}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// NRGBA converts the color to the standard non-premultiplied form used
// by pixel buffers and font drawing.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// WithAlpha returns the color scaled to the given alpha.
func (c RGBA) WithAlpha(a float64) RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Scale multiplies the RGB components by f, clamped to [0, 1]. Alpha is
// preserved. Used to modulate glyph brightness by cell age.
func (c RGBA) Scale(f float64) RGBA {
	return RGBA{
		R: math.Min(1, math.Max(0, c.R*f)),
		G: math.Min(1, math.Max(0, c.G*f)),
		B: math.Min(1, math.Max(0, c.B*f)),
		A: c.A,
	}
}

// Lerp linearly interpolates between c and other by t in [0, 1].
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Theme is a named color ramp. Patterns index into the ramp by relative
// intensity (cell age, trail position) via Color.
type Theme struct {
	Name       string
	Background RGBA
	Ramp       []RGBA // dimmest to brightest
}

// Color returns the ramp color for intensity t in [0, 1].
func (th Theme) Color(t float64) RGBA {
	if len(th.Ramp) == 0 {
		return White
	}
	if t <= 0 {
		return th.Ramp[0]
	}
	if t >= 1 {
		return th.Ramp[len(th.Ramp)-1]
	}
	pos := t * float64(len(th.Ramp)-1)
	i := int(pos)
	return th.Ramp[i].Lerp(th.Ramp[i+1], pos-float64(i))
}

// themes holds the built-in color ramps keyed by name.
var themes = map[string]Theme{
	"matrix": {
		Name:       "matrix",
		Background: Black,
		Ramp: []RGBA{
			RGB(0, 0.25, 0),
			RGB(0, 0.55, 0.1),
			RGB(0.2, 0.9, 0.3),
			RGB(0.8, 1, 0.85),
		},
	},
	"terminal": {
		Name:       "terminal",
		Background: Black,
		Ramp: []RGBA{
			RGB(0.1, 0.3, 0.1),
			RGB(0.2, 0.8, 0.2),
		},
	},
	"retro": {
		Name:       "retro",
		Background: RGB(0.05, 0.03, 0),
		Ramp: []RGBA{
			RGB(0.4, 0.2, 0),
			RGB(0.9, 0.6, 0.1),
			RGB(1, 0.85, 0.4),
		},
	},
	"blue": {
		Name:       "blue",
		Background: RGB(0, 0.02, 0.08),
		Ramp: []RGBA{
			RGB(0, 0.2, 0.5),
			RGB(0.1, 0.5, 0.9),
			RGB(0.7, 0.9, 1),
		},
	},
	"mono": {
		Name:       "mono",
		Background: Black,
		Ramp: []RGBA{
			RGB(0.3, 0.3, 0.3),
			RGB(1, 1, 1),
		},
	},
}

// DefaultTheme is used when a configuration names no theme.
const DefaultTheme = "matrix"

// ThemeByName returns the named built-in theme, falling back to
// DefaultTheme for unknown names.
func ThemeByName(name string) Theme {
	if th, ok := themes[name]; ok {
		return th
	}
	return themes[DefaultTheme]
}

// ThemeNames lists the built-in theme names. Order is unspecified.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	return names
}
