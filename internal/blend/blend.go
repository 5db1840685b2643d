// Package blend implements the layer compositing math: source-over
// plus the separable blend modes from the W3C Compositing and Blending
// Level 1 specification, operating on straight (non-premultiplied)
// RGBA byte buffers.
package blend

import "math"

// Mode selects how a layer is composited onto the backdrop.
type Mode int

const (
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	Difference
	Exclusion
	Additive
)

var modeNames = map[Mode]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Screen:     "screen",
	Overlay:    "overlay",
	Darken:     "darken",
	Lighten:    "lighten",
	Difference: "difference",
	Exclusion:  "exclusion",
	Additive:   "additive",
}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "normal"
}

// Parse maps a mode name to its Mode. The boolean reports whether the
// name was recognized.
func Parse(name string) (Mode, bool) {
	for m, s := range modeNames {
		if s == name {
			return m, true
		}
	}
	return Normal, false
}

// blendChannel applies the separable per-channel blend function B(s, d)
// on unmultiplied values in [0, 1].
func blendChannel(mode Mode, s, d float64) float64 {
	switch mode {
	case Multiply:
		return s * d
	case Screen:
		return s + d - s*d
	case Overlay:
		if d <= 0.5 {
			return 2 * s * d
		}
		return 1 - 2*(1-s)*(1-d)
	case Darken:
		return math.Min(s, d)
	case Lighten:
		return math.Max(s, d)
	case Difference:
		return math.Abs(s - d)
	case Exclusion:
		return s + d - 2*s*d
	default: // Normal, Additive handled by caller
		return s
	}
}

// Composite blends src over dst in place. Both buffers are straight
// RGBA, 4 bytes per pixel, and must be the same length; mismatched
// buffers are ignored. opacity in [0, 1] scales the source alpha.
//
// The compositing formula for separable modes follows W3C compositing:
//
//	Co = (1-Da)·Sa·Cs + (1-Sa)·Da·Cd + Sa·Da·B(Cs, Cd)
//	Ao = Sa + Da - Sa·Da
func Composite(dst, src []uint8, mode Mode, opacity float64) {
	if len(dst) != len(src) || len(dst)%4 != 0 {
		return
	}
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	for i := 0; i < len(dst); i += 4 {
		sa := float64(src[i+3]) / 255 * opacity
		if sa <= 0 {
			continue
		}
		da := float64(dst[i+3]) / 255

		if mode == Additive {
			for ch := 0; ch < 3; ch++ {
				v := float64(dst[i+ch])/255*da + float64(src[i+ch])/255*sa
				dst[i+ch] = clampByte(v)
			}
			dst[i+3] = clampByte(math.Min(1, sa+da))
			continue
		}

		ao := sa + da - sa*da
		if ao <= 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			cs := float64(src[i+ch]) / 255
			cd := float64(dst[i+ch]) / 255
			b := blendChannel(mode, cs, cd)
			co := (1-da)*sa*cs + (1-sa)*da*cd + sa*da*b
			dst[i+ch] = clampByte(co / ao)
		}
		dst[i+3] = clampByte(ao)
	}
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
