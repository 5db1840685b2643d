// Package filter implements the post-process effects applied to layer
// surfaces before compositing: separable Gaussian blur and brightness
// adjustment on straight RGBA byte buffers.
package filter

import "math"

// GaussianBlur blurs the buffer in place using a two-pass separable
// convolution: horizontal rows, then vertical columns, achieving
// O(w·h·r) instead of O(w·h·r²). A radius <= 0 is the identity.
func GaussianBlur(data []uint8, width, height int, radius float64) {
	if radius <= 0 || width < 1 || height < 1 || len(data) < width*height*4 {
		return
	}
	kernel := gaussianKernel(radius)
	half := len(kernel) / 2
	tmp := make([]uint8, len(data))

	// Horizontal pass: data -> tmp
	for y := 0; y < height; y++ {
		row := y * width * 4
		for x := 0; x < width; x++ {
			var r, g, b, a, sum float64
			for k, w := range kernel {
				sx := x + k - half
				if sx < 0 || sx >= width {
					continue
				}
				i := row + sx*4
				r += float64(data[i]) * w
				g += float64(data[i+1]) * w
				b += float64(data[i+2]) * w
				a += float64(data[i+3]) * w
				sum += w
			}
			i := row + x*4
			tmp[i] = norm(r, sum)
			tmp[i+1] = norm(g, sum)
			tmp[i+2] = norm(b, sum)
			tmp[i+3] = norm(a, sum)
		}
	}

	// Vertical pass: tmp -> data
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			var r, g, b, a, sum float64
			for k, w := range kernel {
				sy := y + k - half
				if sy < 0 || sy >= height {
					continue
				}
				i := (sy*width + x) * 4
				r += float64(tmp[i]) * w
				g += float64(tmp[i+1]) * w
				b += float64(tmp[i+2]) * w
				a += float64(tmp[i+3]) * w
				sum += w
			}
			i := (y*width + x) * 4
			data[i] = norm(r, sum)
			data[i+1] = norm(g, sum)
			data[i+2] = norm(b, sum)
			data[i+3] = norm(a, sum)
		}
	}
}

// Brightness scales the RGB channels in place by factor; alpha is
// untouched. factor 1 is the identity.
func Brightness(data []uint8, factor float64) {
	if factor == 1 {
		return
	}
	if factor < 0 {
		factor = 0
	}
	for i := 0; i+3 < len(data); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := float64(data[i+ch]) * factor
			if v > 255 {
				v = 255
			}
			data[i+ch] = uint8(v)
		}
	}
}

// AlphaDecay scales the alpha channel in place by factor in [0, 1],
// fading a layer toward transparency.
func AlphaDecay(data []uint8, factor float64) {
	if factor >= 1 {
		return
	}
	if factor < 0 {
		factor = 0
	}
	for i := 3; i < len(data); i += 4 {
		data[i] = uint8(float64(data[i]) * factor)
	}
}

// gaussianKernel builds a normalized 1D kernel covering ±2σ where
// σ = radius/2, the conventional radius-to-sigma mapping.
func gaussianKernel(radius float64) []float64 {
	sigma := radius / 2
	if sigma < 0.5 {
		sigma = 0.5
	}
	half := int(math.Ceil(sigma * 2))
	size := half*2 + 1
	kernel := make([]float64, size)
	den := 2 * sigma * sigma
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / den)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func norm(v, sum float64) uint8 {
	if sum <= 0 {
		return 0
	}
	v /= sum
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
