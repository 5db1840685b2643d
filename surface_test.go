package textmode

import "testing"

func newTestSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewSurface(w, h, nil, 12)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	return s
}

func TestSurface_GridDerivedFromFontMetrics(t *testing.T) {
	s := newTestSurface(t, 400, 300)
	g := s.Grid()
	if g.CellWidth < 1 || g.CellHeight < 1 {
		t.Fatalf("cell metrics must be positive, got %gx%g", g.CellWidth, g.CellHeight)
	}
	if g.Columns < 10 || g.Rows < 5 {
		t.Fatalf("400x300 at 12pt should yield a usable grid, got %dx%d", g.Columns, g.Rows)
	}
	if float64(g.Columns)*g.CellWidth > 400 || float64(g.Rows)*g.CellHeight > 300 {
		t.Fatal("grid must fit within the pixel bounds")
	}
}

func TestSurface_DegenerateSizeClampsToOneCell(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {1, 1}, {-5, 200}, {3, 2}} {
		s := newTestSurface(t, size[0], size[1])
		g := s.Grid()
		if g.Columns < 1 || g.Rows < 1 {
			t.Fatalf("size %v: grid = %dx%d, want at least 1x1", size, g.Columns, g.Rows)
		}
	}
}

func TestSurface_InvalidFontDataFails(t *testing.T) {
	if _, err := NewSurface(100, 100, []byte("not a font"), 12); err == nil {
		t.Fatal("expected an error for malformed font data")
	}
}

func TestSurface_DrawGlyphWritesPixels(t *testing.T) {
	s := newTestSurface(t, 200, 100)
	s.Clear()
	s.DrawGlyph(1, 1, '#', RGBA{R: 0, G: 1, B: 0, A: 1})

	g := s.Grid()
	x0 := int(float64(1) * g.CellWidth)
	y0 := int(float64(1) * g.CellHeight)
	found := false
	for y := y0; y < y0+int(g.CellHeight) && !found; y++ {
		for x := x0; x < x0+int(g.CellWidth); x++ {
			if s.Pixmap().GetPixel(x, y).G > 0.2 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("DrawGlyph should rasterize pixels into the target cell")
	}

	// Out-of-grid draws are ignored.
	s.DrawGlyph(-1, 0, '#', White)
	s.DrawGlyph(g.Columns, g.Rows, '#', White)
}

func TestSurface_DrawTextClipsAtRightEdge(t *testing.T) {
	s := newTestSurface(t, 120, 60)
	g := s.Grid()
	long := make([]byte, g.Columns+20)
	for i := range long {
		long[i] = 'W'
	}
	// Must clip instead of panicking or wrapping.
	s.DrawText(g.Columns-2, 0, string(long), White)
	s.DrawText(0, g.Rows+5, "off grid", White)
}

func TestSurface_FillCellFloods(t *testing.T) {
	s := newTestSurface(t, 200, 100)
	s.Clear()
	c := RGBA{R: 1, G: 0, B: 1, A: 1}
	s.FillCell(2, 1, c)

	g := s.Grid()
	x := int(2*g.CellWidth) + int(g.CellWidth)/2
	y := int(1*g.CellHeight) + int(g.CellHeight)/2
	if got := s.Pixmap().GetPixel(x, y); !colorsClose(got, c, 1.0/255) {
		t.Fatalf("cell center = %+v, want %+v", got, c)
	}
}

func TestSurface_NewOffscreenSharesMetrics(t *testing.T) {
	s := newTestSurface(t, 240, 120)
	off := s.NewOffscreen()

	if off.Grid() != s.Grid() {
		t.Fatalf("offscreen grid %+v differs from source %+v", off.Grid(), s.Grid())
	}
	if off.Width() != s.Width() || off.Height() != s.Height() {
		t.Fatal("offscreen pixel size must match the source surface")
	}
	if off.Background() != Transparent {
		t.Fatalf("offscreen background = %+v, want transparent", off.Background())
	}
	if off.Pixmap().GetPixel(0, 0).A != 0 {
		t.Fatal("offscreen starts transparent")
	}

	// Independent pixel storage.
	off.Pixmap().SetPixel(0, 0, White)
	if s.Pixmap().GetPixel(0, 0) == White {
		t.Fatal("offscreen must not share pixel memory with the source")
	}
}

func TestSurface_ResizeInPlace(t *testing.T) {
	s := newTestSurface(t, 200, 100)
	before := s.Grid()

	s.Resize(400, 300)
	after := s.Grid()
	if after.Columns <= before.Columns || after.Rows <= before.Rows {
		t.Fatalf("grid should grow with the surface: %+v -> %+v", before, after)
	}
	if s.Width() != 400 || s.Height() != 300 {
		t.Fatalf("pixel size = %dx%d, want 400x300", s.Width(), s.Height())
	}

	s.Resize(0, 0)
	g := s.Grid()
	if g.Columns != 1 || g.Rows != 1 {
		t.Fatalf("degenerate resize: grid = %dx%d, want 1x1", g.Columns, g.Rows)
	}
}

func TestSurface_ClearUsesBackground(t *testing.T) {
	s := newTestSurface(t, 50, 50)
	bg := RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1}
	s.SetBackground(bg)
	s.Clear()
	if got := s.Pixmap().GetPixel(25, 25); !colorsClose(got, bg, 1.0/255) {
		t.Fatalf("cleared pixel = %+v, want %+v", got, bg)
	}
}
