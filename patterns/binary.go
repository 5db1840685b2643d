package patterns

import "github.com/skillparty/textmode"

// BinaryWaterfall scrolls columns of 0/1 bits downward, fading toward
// the bottom of the grid. Density controls how many columns carry bits.
type BinaryWaterfall struct {
	textmode.Core

	active []bool
	bits   []uint8
	scroll []float64 // per-column scroll position in rows
	speed  []float64 // per-column rows per second
}

// NewBinaryWaterfall constructs the pattern. It is a
// PatternConstructor.
func NewBinaryWaterfall(surface *textmode.Surface, cfg textmode.Config) textmode.Pattern {
	return &BinaryWaterfall{Core: textmode.NewCore(surface, cfg)}
}

// Name implements Pattern.
func (p *BinaryWaterfall) Name() string { return "binary" }

// Initialize sizes the bit plane to the grid.
func (p *BinaryWaterfall) Initialize() {
	p.rebuild()
	p.Initialized = true
}

// Update scrolls each active column and flips a few bits.
func (p *BinaryWaterfall) Update(deltaMs float64) {
	if !p.Initialized {
		return
	}
	dt := deltaMs / 1000 * p.SpeedMultiplier()
	for i := range p.scroll {
		if p.active[i] {
			p.scroll[i] += p.speed[i] * dt
		}
	}
	flips := int(float64(len(p.bits)) * 0.005)
	for i := 0; i < flips; i++ {
		j := p.Rand.Intn(len(p.bits))
		p.bits[j] ^= 1
	}
}

// Render clears the surface and draws the scrolled bit plane, brighter
// at the top of each column.
func (p *BinaryWaterfall) Render() {
	if !p.Initialized {
		return
	}
	p.Surf.Clear()
	theme := p.Theme()
	cols, rows := p.Columns(), p.Rows()
	for col := 0; col < cols; col++ {
		if !p.active[col] {
			continue
		}
		off := int(p.scroll[col])
		for row := 0; row < rows; row++ {
			bit := p.bits[((row+off)%rows)*cols+col]
			t := 1 - float64(row)/float64(rows)
			p.Surf.DrawGlyph(col, row, rune('0'+bit), theme.Color(t*0.8+0.2))
		}
	}
}

// Cleanup releases buffers and returns to the uninitialized state.
func (p *BinaryWaterfall) Cleanup() {
	p.active = nil
	p.bits = nil
	p.scroll = nil
	p.speed = nil
	p.Initialized = false
}

// OnResize rebuilds the bit plane for the new grid.
func (p *BinaryWaterfall) OnResize(columns, rows int) {
	p.SetGrid(columns, rows)
	if p.Initialized {
		p.rebuild()
	}
}

func (p *BinaryWaterfall) rebuild() {
	cols, rows := p.Columns(), p.Rows()
	p.active = make([]bool, cols)
	p.bits = make([]uint8, cols*rows)
	p.scroll = make([]float64, cols)
	p.speed = make([]float64, cols)
	density := p.DensityFactor()
	for i := range p.bits {
		p.bits[i] = uint8(p.Rand.Intn(2))
	}
	for col := 0; col < cols; col++ {
		p.active[col] = p.Rand.Float64() < density
		p.speed[col] = 2 + p.Rand.Float64()*6
	}
}
