package textmode

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap represents a rectangular pixel buffer in straight (non-
// premultiplied) RGBA format, 4 bytes per pixel. It is the backing
// store for the visible surface and for each layer's offscreen surface.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int { return p.width }

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int { return p.height }

// Data returns the raw pixel data (straight RGBA).
func (p *Pixmap) Data() []uint8 { return p.data }

// SetPixel sets the color of a single pixel.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = uint8(clamp255(c.R * 255))
	p.data[i+1] = uint8(clamp255(c.G * 255))
	p.data[i+2] = uint8(clamp255(c.B * 255))
	p.data[i+3] = uint8(clamp255(c.A * 255))
}

// GetPixel returns the color of a single pixel; Transparent outside
// bounds.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: float64(p.data[i+0]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	r := uint8(clamp255(c.R * 255))
	g := uint8(clamp255(c.G * 255))
	b := uint8(clamp255(c.B * 255))
	a := uint8(clamp255(c.A * 255))
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// CopyFrom copies src's pixels into p. Both pixmaps must have identical
// dimensions; mismatched sizes are ignored.
func (p *Pixmap) CopyFrom(src *Pixmap) {
	if src == nil || src.width != p.width || src.height != p.height {
		return
	}
	copy(p.data, src.data)
}

// Clone returns an independent copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	c := NewPixmap(p.width, p.height)
	copy(c.data, p.data)
	return c
}

// DrawOver composites src onto p at offset (dx, dy) using source-over
// alpha blending with a global opacity multiplier in [0, 1]. Regions
// outside p are clipped.
func (p *Pixmap) DrawOver(src *Pixmap, dx, dy int, opacity float64) {
	if src == nil || opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}
	for sy := 0; sy < src.height; sy++ {
		ty := sy + dy
		if ty < 0 || ty >= p.height {
			continue
		}
		for sx := 0; sx < src.width; sx++ {
			tx := sx + dx
			if tx < 0 || tx >= p.width {
				continue
			}
			si := (sy*src.width + sx) * 4
			sa := float64(src.data[si+3]) / 255 * opacity
			if sa <= 0 {
				continue
			}
			di := (ty*p.width + tx) * 4
			da := float64(p.data[di+3]) / 255
			oa := sa + da*(1-sa)
			if oa <= 0 {
				continue
			}
			for ch := 0; ch < 3; ch++ {
				sc := float64(src.data[si+ch]) / 255
				dc := float64(p.data[di+ch]) / 255
				oc := (sc*sa + dc*da*(1-sa)) / oa
				p.data[di+ch] = uint8(clamp255(oc * 255))
			}
			p.data[di+3] = uint8(clamp255(oa * 255))
		}
	}
}

// RGBAImage returns an *image.RGBA view sharing p's pixel memory.
// Drawing into the returned image mutates the pixmap directly; this is
// how glyphs are rasterized onto a surface.
func (p *Pixmap) RGBAImage() *image.RGBA {
	return &image.RGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}

// ToImage converts the pixmap to an independent image.RGBA.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, p.ToImage())
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).NRGBA()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
