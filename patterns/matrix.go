package patterns

import "github.com/skillparty/textmode"

// matrixColumn is one falling glyph stream.
type matrixColumn struct {
	active bool
	head   float64 // row position of the stream head
	speed  float64 // rows per second
	length int     // trail length in cells
}

// MatrixRain draws falling glyph columns with fading trails. Column
// speeds and trail lengths are randomized per stream; density controls
// how many columns are active.
type MatrixRain struct {
	textmode.Core

	columns []matrixColumn
	glyphs  []rune // per-cell glyphs, mutated sparsely over time
}

// NewMatrixRain constructs the pattern. It is a PatternConstructor.
func NewMatrixRain(surface *textmode.Surface, cfg textmode.Config) textmode.Pattern {
	return &MatrixRain{Core: textmode.NewCore(surface, cfg)}
}

// Name implements Pattern.
func (p *MatrixRain) Name() string { return "matrix" }

// Initialize sizes the column and glyph buffers to the grid.
func (p *MatrixRain) Initialize() {
	p.rebuild()
	p.Initialized = true
}

// Update advances every active stream and occasionally mutates glyphs.
func (p *MatrixRain) Update(deltaMs float64) {
	if !p.Initialized {
		return
	}
	dt := deltaMs / 1000 * p.SpeedMultiplier()
	rows := p.Rows()
	for i := range p.columns {
		c := &p.columns[i]
		if !c.active {
			continue
		}
		c.head += c.speed * dt
		if int(c.head)-c.length > rows {
			p.resetColumn(i)
		}
	}
	// Sparse glyph churn keeps trails alive without a full refresh.
	churn := int(float64(len(p.glyphs)) * 0.01)
	chars := p.Chars()
	for i := 0; i < churn; i++ {
		p.glyphs[p.Rand.Intn(len(p.glyphs))] = chars[p.Rand.Intn(len(chars))]
	}
}

// Render clears the surface and draws each stream head-bright with a
// trail fading toward the tail.
func (p *MatrixRain) Render() {
	if !p.Initialized {
		return
	}
	p.Surf.Clear()
	theme := p.Theme()
	cols := p.Columns()
	rows := p.Rows()
	for col := 0; col < cols; col++ {
		c := p.columns[col]
		if !c.active {
			continue
		}
		head := int(c.head)
		for k := 0; k <= c.length; k++ {
			row := head - k
			if row < 0 || row >= rows {
				continue
			}
			t := 1 - float64(k)/float64(c.length+1)
			p.Surf.DrawGlyph(col, row, p.glyphs[row*cols+col], theme.Color(t))
		}
	}
}

// Cleanup releases buffers and returns to the uninitialized state.
func (p *MatrixRain) Cleanup() {
	p.columns = nil
	p.glyphs = nil
	p.Initialized = false
}

// OnResize rebuilds the per-column state for the new grid.
func (p *MatrixRain) OnResize(columns, rows int) {
	p.SetGrid(columns, rows)
	if p.Initialized {
		p.rebuild()
	}
}

func (p *MatrixRain) rebuild() {
	cols, rows := p.Columns(), p.Rows()
	p.columns = make([]matrixColumn, cols)
	p.glyphs = make([]rune, cols*rows)
	chars := p.Chars()
	for i := range p.glyphs {
		p.glyphs[i] = chars[p.Rand.Intn(len(chars))]
	}
	density := p.DensityFactor()
	for i := range p.columns {
		if p.Rand.Float64() < density {
			p.resetColumn(i)
			p.columns[i].active = true
			// Stagger initial heads so streams do not start in a wall.
			p.columns[i].head = p.Rand.Float64() * float64(rows)
		}
	}
}

func (p *MatrixRain) resetColumn(i int) {
	rows := p.Rows()
	p.columns[i] = matrixColumn{
		active: true,
		head:   -p.Rand.Float64() * float64(rows),
		speed:  4 + p.Rand.Float64()*8,
		length: 3 + p.Rand.Intn(rows/2+1),
	}
}
