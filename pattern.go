package textmode

import (
	"math/rand"
	"time"
)

// Pattern is one pluggable unit of animated visual behavior.
//
// Lifecycle contract:
//   - Update and Render called before Initialize must be safe no-ops and
//     never panic.
//   - Render clears the surface (to its background color) before
//     drawing; owners rely on this instead of pre-clearing.
//   - Cleanup must be idempotent and leave the instance as if freshly
//     constructed but uninitialized.
//   - OnResize may be called repeatedly and must rebuild grid-sized
//     internal buffers without leaking the old ones.
//   - SetConfig performs a shallow merge: zero-valued fields of the
//     partial configuration preserve the current values.
//
// Each instance has exactly one owner (the engine, a transition, or a
// layer); the owner calls Cleanup exactly once when discarding it.
type Pattern interface {
	Name() string
	Initialize()
	Update(deltaMs float64)
	Render()
	Cleanup()
	OnResize(columns, rows int)
	SetConfig(partial Config)
	Config() Config
}

// PatternConstructor builds a pattern against a drawing surface and an
// initial configuration. Constructors must not draw; drawing happens in
// Render on the tick goroutine.
type PatternConstructor func(surface *Surface, cfg Config) Pattern

// Core is the shared helper patterns embed by value instead of
// inheriting from a base class. It carries the surface handle, the
// merged configuration, grid bookkeeping, and a deterministic RNG, and
// provides the config plumbing half of the Pattern contract.
type Core struct {
	Surf        *Surface
	Rand        *rand.Rand
	Initialized bool

	cfg  Config
	cols int
	rows int
}

// NewCore prepares pattern plumbing: the given partial configuration is
// merged over DefaultConfig and the grid size is read from the surface.
func NewCore(surface *Surface, cfg Config) Core {
	g := surface.Grid()
	return Core{
		Surf: surface,
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:  DefaultConfig().Merge(cfg),
		cols: g.Columns,
		rows: g.Rows,
	}
}

// Columns returns the current grid width in cells.
func (c *Core) Columns() int { return c.cols }

// Rows returns the current grid height in cells.
func (c *Core) Rows() int { return c.rows }

// SetGrid records new grid dimensions; patterns call this from OnResize
// before rebuilding their buffers.
func (c *Core) SetGrid(columns, rows int) {
	if columns < 1 {
		columns = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols = columns
	c.rows = rows
}

// Seed makes the pattern's RNG deterministic. Intended for tests.
func (c *Core) Seed(seed int64) {
	c.Rand = rand.New(rand.NewSource(seed))
}

// SetConfig shallow-merges a partial configuration (Pattern contract).
func (c *Core) SetConfig(partial Config) {
	c.cfg = c.cfg.Merge(partial)
}

// Config returns the current merged configuration (Pattern contract).
func (c *Core) Config() Config { return c.cfg }

// Theme resolves the configured color ramp.
func (c *Core) Theme() Theme { return ThemeByName(c.cfg.Theme) }

// Chars returns the configured glyph set as runes.
func (c *Core) Chars() []rune {
	s := c.cfg.Characters
	if s == "" {
		s = DefaultCharacters
	}
	return []rune(s)
}

// SpeedMultiplier returns the configured time-scale factor.
func (c *Core) SpeedMultiplier() float64 { return c.cfg.Speed.Multiplier() }

// DensityFactor returns the configured population factor.
func (c *Core) DensityFactor() float64 { return c.cfg.Density.Factor() }
