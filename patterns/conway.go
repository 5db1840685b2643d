package patterns

import (
	"fmt"

	"github.com/skillparty/textmode"
)

// Conway-Life timing and stagnation defaults.
const (
	conwayIntervalSlow   = 500 // ms per generation
	conwayIntervalMedium = 250
	conwayIntervalFast   = 100

	// stagnantLimit is how many consecutive generations the live-set
	// hash may stay unchanged before the grid reseeds, preventing an
	// indefinitely frozen display (still lifes, empty grids).
	stagnantLimit = 12

	// reseedAfterMs reseeds on wall clock regardless of activity.
	reseedAfterMs = 30000
)

// conwayCell is one automaton cell. Age counts survived generations and
// modulates render brightness, capped by the configured complexity.
type conwayCell struct {
	alive bool
	age   uint8
}

// conwayShape is a preset seeded into the grid as relative coordinates.
type conwayShape [][2]int

var conwayShapes = []conwayShape{
	{{0, 0}, {1, 0}, {2, 0}},                         // blinker
	{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},         // glider
	{{0, 0}, {1, 0}, {0, 1}, {1, 1}},                 // block
	{{1, 0}, {2, 0}, {0, 1}, {1, 1}, {1, 2}},         // r-pentomino
	{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {0, 1}, {3, 1}}, // pond fragment
}

// ConwayLife is the cellular-automaton pattern: Conway's Game of Life
// on the character grid with age-shaded live cells. The simulation uses
// the Moore neighborhood with non-wrapping boundaries: a live cell with
// 2 or 3 live neighbors survives, a dead cell with exactly 3 is born.
type ConwayLife struct {
	textmode.Core

	cells []conwayCell
	next  []conwayCell

	generation  int
	population  int
	maxAge      uint8
	interval    float64
	accum       float64
	sinceReseed float64
	lastHash    uint64
	stagnantRun int
}

// NewConwayLife constructs the pattern. It is a PatternConstructor.
func NewConwayLife(surface *textmode.Surface, cfg textmode.Config) textmode.Pattern {
	p := &ConwayLife{Core: textmode.NewCore(surface, cfg)}
	return p
}

// Name implements Pattern.
func (p *ConwayLife) Name() string { return "conway" }

// Initialize sizes the cell buffers to the grid and seeds them with a
// mix of preset shapes and random noise. Safe for grids as small as
// 3×3 (and smaller: shapes that do not fit are skipped).
func (p *ConwayLife) Initialize() {
	p.applyConfig()
	p.rebuild()
	p.Initialized = true
}

// Update accumulates time against the generation interval and advances
// exactly one generation per crossed interval, possibly several when
// deltaMs spans multiple intervals.
func (p *ConwayLife) Update(deltaMs float64) {
	if !p.Initialized {
		return
	}
	p.accum += deltaMs
	for p.accum >= p.interval {
		p.accum -= p.interval
		p.step()
	}
	p.sinceReseed += deltaMs
	if p.sinceReseed >= reseedAfterMs {
		p.seed()
	}
}

// Render clears the surface and draws only live cells, glyph and color
// chosen by age and theme, plus an optional info overlay.
func (p *ConwayLife) Render() {
	if !p.Initialized {
		return
	}
	p.Surf.Clear()
	theme := p.Theme()
	chars := p.Chars()
	cols := p.Columns()
	for i, c := range p.cells {
		if !c.alive {
			continue
		}
		t := float64(c.age) / float64(p.maxAge)
		glyph := chars[int(c.age)%len(chars)]
		p.Surf.DrawGlyph(i%cols, i/cols, glyph, theme.Color(t))
	}
	if p.Surf.Debug() {
		p.Surf.DrawText(0, 0, fmt.Sprintf("gen %d pop %d", p.generation, p.population), theme.Color(1))
	}
}

// Cleanup releases the cell buffers and returns the pattern to its
// constructed-but-uninitialized state. Idempotent.
func (p *ConwayLife) Cleanup() {
	p.cells = nil
	p.next = nil
	p.generation = 0
	p.population = 0
	p.accum = 0
	p.sinceReseed = 0
	p.lastHash = 0
	p.stagnantRun = 0
	p.Initialized = false
}

// OnResize rebuilds the cell buffers for the new grid and reseeds.
func (p *ConwayLife) OnResize(columns, rows int) {
	p.SetGrid(columns, rows)
	if p.Initialized {
		p.rebuild()
	}
}

// SetConfig shallow-merges the partial configuration and re-derives the
// generation interval and age cap.
func (p *ConwayLife) SetConfig(partial textmode.Config) {
	p.Core.SetConfig(partial)
	p.applyConfig()
}

// Generation returns the generations advanced since the last reseed.
func (p *ConwayLife) Generation() int { return p.generation }

// Population returns the current live-cell count.
func (p *ConwayLife) Population() int { return p.population }

// Alive reports whether cell (col, row) is live. Out-of-grid cells are
// dead.
func (p *ConwayLife) Alive(col, row int) bool {
	if col < 0 || col >= p.Columns() || row < 0 || row >= p.Rows() {
		return false
	}
	return p.cells[row*p.Columns()+col].alive
}

// SetCells clears the grid and marks the given (col, row) cells live
// with age 1. Intended for tests and choreographed seeds.
func (p *ConwayLife) SetCells(live [][2]int) {
	for i := range p.cells {
		p.cells[i] = conwayCell{}
	}
	p.population = 0
	for _, cr := range live {
		col, row := cr[0], cr[1]
		if col < 0 || col >= p.Columns() || row < 0 || row >= p.Rows() {
			continue
		}
		p.cells[row*p.Columns()+col] = conwayCell{alive: true, age: 1}
		p.population++
	}
	p.generation = 0
	p.stagnantRun = 0
	p.lastHash = p.hashLiveSet()
}

func (p *ConwayLife) applyConfig() {
	cfg := p.Config()
	switch cfg.Speed {
	case textmode.SpeedSlow:
		p.interval = conwayIntervalSlow
	case textmode.SpeedFast:
		p.interval = conwayIntervalFast
	default:
		p.interval = conwayIntervalMedium
	}
	p.maxAge = uint8(cfg.Complexity.MaxAge())
}

func (p *ConwayLife) rebuild() {
	n := p.Columns() * p.Rows()
	p.cells = make([]conwayCell, n)
	p.next = make([]conwayCell, n)
	p.seed()
}

// seed fills the grid with preset shapes plus density-scaled random
// noise and resets the generation counters.
func (p *ConwayLife) seed() {
	for i := range p.cells {
		p.cells[i] = conwayCell{}
	}
	cols, rows := p.Columns(), p.Rows()
	density := p.DensityFactor()

	shapeCount := 1 + int(density*4)
	for i := 0; i < shapeCount; i++ {
		shape := conwayShapes[p.Rand.Intn(len(conwayShapes))]
		w, h := shapeBounds(shape)
		if cols <= w || rows <= h {
			continue
		}
		ox := p.Rand.Intn(cols - w)
		oy := p.Rand.Intn(rows - h)
		for _, cr := range shape {
			p.cells[(oy+cr[1])*cols+ox+cr[0]] = conwayCell{alive: true, age: 1}
		}
	}

	noise := 0.04 + 0.08*density
	for i := range p.cells {
		if p.Rand.Float64() < noise {
			p.cells[i] = conwayCell{alive: true, age: 1}
		}
	}

	p.population = 0
	for i := range p.cells {
		if p.cells[i].alive {
			p.population++
		}
	}
	p.generation = 0
	p.accum = 0
	p.sinceReseed = 0
	p.stagnantRun = 0
	p.lastHash = p.hashLiveSet()
}

// step advances one generation and tracks stagnation of the live set.
func (p *ConwayLife) step() {
	cols, rows := p.Columns(), p.Rows()
	pop := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			n := p.liveNeighbors(col, row)
			c := p.cells[i]
			var nc conwayCell
			if c.alive {
				if n == 2 || n == 3 {
					nc.alive = true
					nc.age = c.age
					if nc.age < p.maxAge {
						nc.age++
					}
				}
			} else if n == 3 {
				nc = conwayCell{alive: true, age: 1}
			}
			if nc.alive {
				pop++
			}
			p.next[i] = nc
		}
	}
	p.cells, p.next = p.next, p.cells
	p.population = pop
	p.generation++

	h := p.hashLiveSet()
	if h == p.lastHash {
		p.stagnantRun++
		if p.stagnantRun >= stagnantLimit {
			p.seed()
			return
		}
	} else {
		p.stagnantRun = 0
		p.lastHash = h
	}
}

// liveNeighbors counts live Moore neighbors without wrapping.
func (p *ConwayLife) liveNeighbors(col, row int) int {
	cols, rows := p.Columns(), p.Rows()
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := col+dx, row+dy
			if x < 0 || x >= cols || y < 0 || y >= rows {
				continue
			}
			if p.cells[y*cols+x].alive {
				n++
			}
		}
	}
	return n
}

// hashLiveSet is an FNV-1a hash over live cell indices, a cheap
// fingerprint of the live set for stagnation detection.
func (p *ConwayLife) hashLiveSet() uint64 {
	var h uint64 = 14695981039346656037
	for i, c := range p.cells {
		if !c.alive {
			continue
		}
		h ^= uint64(i)
		h *= 1099511628211
	}
	return h
}

func shapeBounds(s conwayShape) (w, h int) {
	for _, cr := range s {
		if cr[0] > w {
			w = cr[0]
		}
		if cr[1] > h {
			h = cr[1]
		}
	}
	return w, h
}
