package textmode

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Grid is the columns×rows of monospace character cells derived from
// the surface pixel size and the measured font cell metrics. Columns
// and Rows are always at least 1, even for degenerate surfaces.
type Grid struct {
	Columns    int
	Rows       int
	CellWidth  float64
	CellHeight float64
}

// Surface is the drawing-surface handle given to patterns: a pixel
// buffer plus a monospace font face and the derived character grid.
// All drawing is cell-addressed; (0, 0) is the top-left cell.
//
// A Surface is not safe for concurrent use. The engine guarantees all
// drawing happens on the tick goroutine.
type Surface struct {
	pixmap   *Pixmap
	face     font.Face
	fontSize float64

	grid   Grid
	ascent float64

	background RGBA
	foreground RGBA
	debug      bool
}

// NewSurface creates a surface of the given pixel size. fontData is a
// TTF/OTF monospace font; nil selects the embedded Go Mono face.
// Degenerate sizes are clamped so the grid is at least 1×1.
func NewSurface(width, height int, fontData []byte, fontSize float64) (*Surface, error) {
	if fontSize <= 0 {
		fontSize = 14
	}
	if fontData == nil {
		fontData = gomono.TTF
	}
	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("textmode: failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("textmode: failed to create font face: %w", err)
	}

	s := &Surface{
		face:       face,
		fontSize:   fontSize,
		background: Black,
		foreground: ThemeByName(DefaultTheme).Color(1),
	}
	s.measureCell()
	s.Resize(width, height)
	return s, nil
}

// measureCell derives the cell box from the font metrics. Monospace
// fonts have a uniform advance, measured here from 'M'.
func (s *Surface) measureCell() {
	m := s.face.Metrics()
	adv, ok := s.face.GlyphAdvance('M')
	if !ok || adv <= 0 {
		adv = fixed.I(int(math.Ceil(s.fontSize * 0.6)))
	}
	s.grid.CellWidth = math.Ceil(float64(adv) / 64)
	s.grid.CellHeight = math.Ceil(float64(m.Height) / 64)
	if s.grid.CellWidth < 1 {
		s.grid.CellWidth = 1
	}
	if s.grid.CellHeight < 1 {
		s.grid.CellHeight = 1
	}
	s.ascent = float64(m.Ascent) / 64
}

// Resize recomputes the grid for a new pixel size and replaces the
// backing pixmap. The previous pixel contents are discarded.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.pixmap = NewPixmap(width, height)
	s.grid.Columns = int(float64(width) / s.grid.CellWidth)
	s.grid.Rows = int(float64(height) / s.grid.CellHeight)
	if s.grid.Columns < 1 {
		s.grid.Columns = 1
	}
	if s.grid.Rows < 1 {
		s.grid.Rows = 1
	}
}

// NewOffscreen creates a surface of the same pixel size sharing this
// surface's font face and cell metrics, cleared to transparent. Layers
// render into offscreen surfaces before compositing.
func (s *Surface) NewOffscreen() *Surface {
	off := &Surface{
		face:       s.face,
		fontSize:   s.fontSize,
		grid:       s.grid,
		ascent:     s.ascent,
		background: Transparent,
		foreground: s.foreground,
		debug:      s.debug,
	}
	off.pixmap = NewPixmap(s.pixmap.Width(), s.pixmap.Height())
	return off
}

// Grid returns the current character grid.
func (s *Surface) Grid() Grid { return s.grid }

// Pixmap returns the backing pixel buffer.
func (s *Surface) Pixmap() *Pixmap { return s.pixmap }

// Width returns the pixel width of the surface.
func (s *Surface) Width() int { return s.pixmap.Width() }

// Height returns the pixel height of the surface.
func (s *Surface) Height() int { return s.pixmap.Height() }

// SetBackground sets the color used by Clear.
func (s *Surface) SetBackground(c RGBA) { s.background = c }

// Background returns the clear color.
func (s *Surface) Background() RGBA { return s.background }

// SetForeground sets the default glyph color.
func (s *Surface) SetForeground(c RGBA) { s.foreground = c }

// Foreground returns the default glyph color.
func (s *Surface) Foreground() RGBA { return s.foreground }

// SetDebug toggles the per-pattern info overlay.
func (s *Surface) SetDebug(v bool) { s.debug = v }

// Debug reports whether the info overlay is enabled.
func (s *Surface) Debug() bool { return s.debug }

// Clear fills the surface with its background color.
func (s *Surface) Clear() { s.pixmap.Clear(s.background) }

// ClearTo fills the surface with an explicit color. Layer surfaces
// clear to Transparent so compositing shows lower layers through.
func (s *Surface) ClearTo(c RGBA) { s.pixmap.Clear(c) }

// DrawGlyph draws a single rune into the cell at (col, row) with the
// given color. Out-of-grid cells are ignored.
func (s *Surface) DrawGlyph(col, row int, r rune, c RGBA) {
	if col < 0 || col >= s.grid.Columns || row < 0 || row >= s.grid.Rows {
		return
	}
	s.drawString(float64(col)*s.grid.CellWidth, float64(row)*s.grid.CellHeight+s.ascent, string(r), c)
}

// DrawText draws a string starting at cell (col, row), clipped at the
// right grid edge. Used for info overlays.
func (s *Surface) DrawText(col, row int, text string, c RGBA) {
	if row < 0 || row >= s.grid.Rows {
		return
	}
	for _, r := range text {
		if col >= s.grid.Columns {
			return
		}
		if col >= 0 {
			s.DrawGlyph(col, row, r, c)
		}
		col++
	}
}

// FillCell floods the pixel box of cell (col, row) with a color.
func (s *Surface) FillCell(col, row int, c RGBA) {
	if col < 0 || col >= s.grid.Columns || row < 0 || row >= s.grid.Rows {
		return
	}
	x0 := int(float64(col) * s.grid.CellWidth)
	y0 := int(float64(row) * s.grid.CellHeight)
	for y := y0; y < y0+int(s.grid.CellHeight); y++ {
		for x := x0; x < x0+int(s.grid.CellWidth); x++ {
			s.pixmap.SetPixel(x, y, c)
		}
	}
}

func (s *Surface) drawString(x, y float64, text string, c RGBA) {
	d := font.Drawer{
		Dst:  s.pixmap.RGBAImage(),
		Src:  image.NewUniform(c.NRGBA()),
		Face: s.face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(text)
}
