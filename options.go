package textmode

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Default: embedded Go Mono at 14pt, 60 Hz ticker scheduler
//	eng, err := textmode.NewEngine(800, 600)
//
//	// Deterministic scheduler for tests (dependency injection)
//	sched := textmode.NewManualScheduler()
//	eng, err := textmode.NewEngine(800, 600, textmode.WithScheduler(sched))
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	fontSize   float64
	fontData   []byte
	background *RGBA
	foreground *RGBA
	debug      bool
	scheduler  Scheduler
	config     Config
	maxDeltaMs float64
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		fontSize:   14,
		maxDeltaMs: 100,
		config:     DefaultConfig(),
	}
}

// WithFontSize sets the monospace font size in points.
func WithFontSize(size float64) EngineOption {
	return func(o *engineOptions) {
		if size > 0 {
			o.fontSize = size
		}
	}
}

// WithFontData supplies TTF/OTF bytes for the monospace face. The
// default is the embedded Go Mono font.
func WithFontData(data []byte) EngineOption {
	return func(o *engineOptions) {
		o.fontData = data
	}
}

// WithBackground sets the surface clear color.
func WithBackground(c RGBA) EngineOption {
	return func(o *engineOptions) {
		o.background = &c
	}
}

// WithForeground sets the default glyph color.
func WithForeground(c RGBA) EngineOption {
	return func(o *engineOptions) {
		o.foreground = &c
	}
}

// WithDebug enables the per-pattern info overlay (generation counters,
// population, and similar diagnostics).
func WithDebug(enabled bool) EngineOption {
	return func(o *engineOptions) {
		o.debug = enabled
	}
}

// WithScheduler injects the tick source. The default is a
// TickerScheduler at ~60 Hz; tests inject a ManualScheduler.
func WithScheduler(s Scheduler) EngineOption {
	return func(o *engineOptions) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithConfig sets the base pattern configuration handed to constructed
// patterns (merged under any per-switch configuration).
func WithConfig(cfg Config) EngineOption {
	return func(o *engineOptions) {
		o.config = DefaultConfig().Merge(cfg)
	}
}

// WithMaxDelta clamps per-tick delta time to the given milliseconds,
// bounding the catch-up work after long stalls such as a suspended tab.
func WithMaxDelta(ms float64) EngineOption {
	return func(o *engineOptions) {
		if ms > 0 {
			o.maxDeltaMs = ms
		}
	}
}
