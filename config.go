package textmode

// DefaultCharacters is the glyph set patterns draw from when the
// configuration names none.
const DefaultCharacters = "01{}[]()<>/*#@$%&+=;:.~^|-_"

// Speed selects the pattern animation rate. The zero value means
// "unspecified" so partial configurations merge without clobbering.
type Speed int

const (
	SpeedUnset Speed = iota
	SpeedSlow
	SpeedMedium
	SpeedFast
)

// Multiplier returns the time-scale factor for the speed setting.
func (s Speed) Multiplier() float64 {
	switch s {
	case SpeedSlow:
		return 0.5
	case SpeedFast:
		return 2
	default:
		return 1
	}
}

// ParseSpeed maps the external string form to a Speed. Unknown strings
// return SpeedUnset.
func ParseSpeed(s string) Speed {
	switch s {
	case "slow":
		return SpeedSlow
	case "medium":
		return SpeedMedium
	case "fast":
		return SpeedFast
	}
	return SpeedUnset
}

// Density selects how thickly patterns populate the grid.
type Density int

const (
	DensityUnset Density = iota
	DensityLow
	DensityMedium
	DensityHigh
)

// Factor returns the population factor for the density setting.
func (d Density) Factor() float64 {
	switch d {
	case DensityLow:
		return 0.3
	case DensityHigh:
		return 1.0
	default:
		return 0.6
	}
}

// ParseDensity maps the external string form to a Density.
func ParseDensity(s string) Density {
	switch s {
	case "low":
		return DensityLow
	case "medium":
		return DensityMedium
	case "high":
		return DensityHigh
	}
	return DensityUnset
}

// Complexity bounds how much per-cell state patterns carry (for the
// cellular-automaton pattern it derives the maximum cell age).
type Complexity int

const (
	ComplexityUnset Complexity = iota
	ComplexityLow
	ComplexityMedium
	ComplexityHigh
)

// MaxAge returns the cell age cap for the complexity setting.
func (c Complexity) MaxAge() int {
	switch c {
	case ComplexityLow:
		return 6
	case ComplexityHigh:
		return 15
	default:
		return 10
	}
}

// Config is the plain configuration object consumed by patterns. It is
// passed by value and never persisted by the core; persistence belongs
// to external collaborators. Zero-valued fields mean "unspecified" and
// survive merges, implementing the shallow-merge contract of
// Pattern.SetConfig.
type Config struct {
	Characters        string
	Speed             Speed
	Density           Density
	Theme             string
	GlitchProbability float64 // 0 means unspecified
	Complexity        Complexity
}

// DefaultConfig returns the configuration patterns start from.
func DefaultConfig() Config {
	return Config{
		Characters:        DefaultCharacters,
		Speed:             SpeedMedium,
		Density:           DensityMedium,
		Theme:             DefaultTheme,
		GlitchProbability: 0.1,
		Complexity:        ComplexityMedium,
	}
}

// Merge returns c overlaid with every specified field of partial.
// Unspecified (zero-valued) fields of partial leave c's values intact.
func (c Config) Merge(partial Config) Config {
	if partial.Characters != "" {
		c.Characters = partial.Characters
	}
	if partial.Speed != SpeedUnset {
		c.Speed = partial.Speed
	}
	if partial.Density != DensityUnset {
		c.Density = partial.Density
	}
	if partial.Theme != "" {
		c.Theme = partial.Theme
	}
	if partial.GlitchProbability != 0 {
		c.GlitchProbability = partial.GlitchProbability
	}
	if partial.Complexity != ComplexityUnset {
		c.Complexity = partial.Complexity
	}
	return c
}
