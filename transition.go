package textmode

import (
	"image"
	"math"
	"math/rand"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Transition effect names accepted by SwitchPattern.
const (
	EffectFade         = "fade"
	EffectSlide        = "slide"
	EffectMorph        = "morph"
	EffectDisplacement = "displacement"
	EffectGlitch       = "glitch"
	EffectRotate3D     = "rotate3d"
)

// Transition state machine types.
const (
	TransitionIdle          = "idle"
	TransitionTransitioning = "transitioning"
)

// TransitionConfig describes a requested blend between two patterns.
type TransitionConfig struct {
	Effect   string
	Duration float64 // milliseconds, must be positive
}

// DefaultTransition is used when SwitchPattern receives no transition
// configuration while a pattern is active.
var DefaultTransition = TransitionConfig{Effect: EffectFade, Duration: 1000}

var knownEffects = map[string]bool{
	EffectFade:         true,
	EffectSlide:        true,
	EffectMorph:        true,
	EffectDisplacement: true,
	EffectGlitch:       true,
	EffectRotate3D:     true,
}

// validateTransitionConfig reports whether tc describes a runnable
// transition.
func validateTransitionConfig(tc TransitionConfig) error {
	if !knownEffects[tc.Effect] {
		return &InvalidTransitionConfigError{Effect: tc.Effect, Duration: tc.Duration, Reason: "unsupported effect"}
	}
	if tc.Duration <= 0 {
		return &InvalidTransitionConfigError{Effect: tc.Effect, Duration: tc.Duration, Reason: "duration must be positive"}
	}
	return nil
}

// TransitionState is the observable snapshot of the transition machine.
type TransitionState struct {
	Type     string // TransitionIdle or TransitionTransitioning
	Effect   string
	Progress float64 // [0, 1], monotone non-decreasing per transition
	Duration float64
	Elapsed  float64
	From     string // pattern names, empty when idle
	To       string
}

// TransitionManager drives blended rendering between two pattern
// instances. It is a two-state machine (idle ↔ transitioning) advanced
// once per engine tick; completion cleans up the outgoing pattern,
// promotes the incoming one, and resolves the pending Switch.
//
// At most one transition is active at any time: starting a new one
// while transitioning force-completes the old one first.
type TransitionManager struct {
	surface *Surface
	rng     *rand.Rand

	// onComplete is installed by the engine; it receives the promoted
	// pattern when a transition finishes.
	onComplete func(to Pattern)

	active   bool
	effect   string
	duration float64
	elapsed  float64
	progress float64
	from     Pattern
	to       Pattern
	sw       *Switch

	fromFrame *Pixmap
	toFrame   *Pixmap

	glitchProbability float64
}

// NewTransitionManager creates a manager rendering onto the given
// surface.
func NewTransitionManager(surface *Surface) *TransitionManager {
	return &TransitionManager{
		surface:           surface,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		glitchProbability: DefaultConfig().GlitchProbability,
	}
}

// Seed makes effect randomness (morph jitter, glitch blocks)
// deterministic. Intended for tests.
func (t *TransitionManager) Seed(seed int64) {
	t.rng = rand.New(rand.NewSource(seed))
}

// Active reports whether a transition is in flight.
func (t *TransitionManager) Active() bool { return t.active }

// State returns the observable snapshot; the zero progress idle state
// when no transition is running.
func (t *TransitionManager) State() TransitionState {
	if !t.active {
		return TransitionState{Type: TransitionIdle}
	}
	return TransitionState{
		Type:     TransitionTransitioning,
		Effect:   t.effect,
		Progress: t.progress,
		Duration: t.duration,
		Elapsed:  t.elapsed,
		From:     t.from.Name(),
		To:       t.to.Name(),
	}
}

// Begin starts a transition from the currently active pattern to a
// freshly initialized one. The manager takes ownership of both
// instances until completion. cfg must already be validated.
func (t *TransitionManager) Begin(from, to Pattern, cfg TransitionConfig, sw *Switch) {
	if t.active {
		// Guarantee at most one active transition; the pre-empted
		// transition's to-pattern becomes this transition's from.
		t.ForceComplete()
	}
	t.active = true
	t.effect = cfg.Effect
	t.duration = cfg.Duration
	t.elapsed = 0
	t.progress = 0
	t.from = from
	t.to = to
	t.sw = sw
	t.glitchProbability = DefaultConfig().Merge(to.Config()).GlitchProbability
	t.ensureFrames()
	Logger().Debug("transition started",
		"effect", cfg.Effect, "duration_ms", cfg.Duration,
		"from", from.Name(), "to", to.Name())
}

// Advance moves the transition forward by deltaMs, updates both
// patterns, renders the blend onto the surface, and completes the
// transition once elapsed time reaches the duration. Progress is
// monotone non-decreasing and reaches exactly 1.
func (t *TransitionManager) Advance(deltaMs float64) {
	if !t.active {
		return
	}
	t.from.Update(deltaMs)
	t.to.Update(deltaMs)
	t.elapsed += deltaMs
	p := t.elapsed / t.duration
	if p >= 1 {
		p = 1
	}
	if p > t.progress {
		t.progress = p
	}
	t.renderBlend()
	if t.progress >= 1 {
		t.complete()
	}
}

// ForceComplete jumps progress to 1 and runs completion immediately.
// Used when a new switch request pre-empts an in-flight transition.
func (t *TransitionManager) ForceComplete() {
	if !t.active {
		return
	}
	t.progress = 1
	t.complete()
}

// Resize forwards new grid dimensions to both in-flight patterns and
// rebuilds the scratch frames.
func (t *TransitionManager) Resize(columns, rows int) {
	if !t.active {
		return
	}
	t.from.OnResize(columns, rows)
	t.to.OnResize(columns, rows)
	t.fromFrame = nil
	t.toFrame = nil
	t.ensureFrames()
}

// complete cleans up the outgoing pattern, hands the incoming pattern to
// the engine, resets to idle, and resolves the deferred switch result.
func (t *TransitionManager) complete() {
	from, to, sw := t.from, t.to, t.sw
	t.active = false
	t.from = nil
	t.to = nil
	t.sw = nil
	t.elapsed = 0
	t.progress = 0

	from.Cleanup()
	if t.onComplete != nil {
		t.onComplete(to)
	}
	if sw != nil {
		sw.resolve()
	}
	Logger().Info("transition complete", "to", to.Name())
}

func (t *TransitionManager) ensureFrames() {
	pm := t.surface.Pixmap()
	if t.fromFrame == nil || t.fromFrame.Width() != pm.Width() || t.fromFrame.Height() != pm.Height() {
		t.fromFrame = NewPixmap(pm.Width(), pm.Height())
		t.toFrame = NewPixmap(pm.Width(), pm.Height())
	}
}

// renderBlend captures each pattern's frame into a scratch pixmap, then
// composites the two onto the visible surface according to the effect.
// All effects converge to the to-pattern alone at progress 1.
func (t *TransitionManager) renderBlend() {
	t.ensureFrames()
	surf := t.surface

	// Render clears the surface per the Pattern contract, so each frame
	// capture starts from a clean buffer.
	t.from.Render()
	t.fromFrame.CopyFrom(surf.Pixmap())

	t.to.Render()
	t.toFrame.CopyFrom(surf.Pixmap())

	dst := surf.Pixmap()
	dst.Clear(surf.Background())

	p := t.progress
	switch t.effect {
	case EffectSlide:
		t.renderSlide(dst, p)
	case EffectMorph:
		t.renderMorph(dst, p)
	case EffectDisplacement:
		t.renderDisplacement(dst, p)
	case EffectGlitch:
		t.renderGlitch(dst, p)
	case EffectRotate3D:
		t.renderRotate3D(dst, p)
	default: // EffectFade
		dst.DrawOver(t.fromFrame, 0, 0, 1-p)
		dst.DrawOver(t.toFrame, 0, 0, p)
	}
}

// renderSlide pushes the outgoing frame off the left edge while the
// incoming frame enters from the right.
func (t *TransitionManager) renderSlide(dst *Pixmap, p float64) {
	w := dst.Width()
	off := int(math.Round(p * float64(w)))
	dst.DrawOver(t.fromFrame, -off, 0, 1)
	dst.DrawOver(t.toFrame, w-off, 0, 1)
}

// renderMorph cross-dissolves with positional jitter that decays to 0.
func (t *TransitionManager) renderMorph(dst *Pixmap, p float64) {
	amp := (1 - p) * t.surface.Grid().CellWidth * 1.5
	jitter := func() int {
		if amp <= 0 {
			return 0
		}
		return int((t.rng.Float64()*2 - 1) * amp)
	}
	dst.DrawOver(t.fromFrame, jitter(), jitter(), 1-p)
	dst.DrawOver(t.toFrame, jitter(), jitter(), p)
}

// renderDisplacement draws the incoming frame through a distortion map
// sourced from the outgoing frame's luminance; strength decays to 0.
func (t *TransitionManager) renderDisplacement(dst *Pixmap, p float64) {
	dst.DrawOver(t.fromFrame, 0, 0, (1-p)*0.5)

	strength := (1 - p) * 24 // max horizontal displacement in pixels
	w, h := dst.Width(), dst.Height()
	src := t.toFrame
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := t.fromFrame.GetPixel(x, y)
			lum := 0.299*c.R + 0.587*c.G + 0.114*c.B
			off := int((lum - 0.5) * 2 * strength)
			s := src.GetPixel(x+off, y)
			if s.A <= 0 {
				continue
			}
			dst.SetPixel(x, y, s)
		}
	}
}

// renderGlitch shows the incoming frame with randomized block artifacts
// whose probability decays to 0.
func (t *TransitionManager) renderGlitch(dst *Pixmap, p float64) {
	dst.DrawOver(t.toFrame, 0, 0, 1)
	if p >= 1 {
		return
	}
	prob := (1 - p) * math.Max(t.glitchProbability, 0.05) * 4
	w, h := dst.Width(), dst.Height()
	blockH := int(math.Max(2, t.surface.Grid().CellHeight))
	for y := 0; y < h; y += blockH {
		if t.rng.Float64() >= prob {
			continue
		}
		shift := int((t.rng.Float64()*2 - 1) * float64(w) * 0.15)
		bh := blockH
		if y+bh > h {
			bh = h - y
		}
		block := NewPixmap(w, bh)
		for yy := 0; yy < bh; yy++ {
			for xx := 0; xx < w; xx++ {
				block.SetPixel(xx, yy, t.fromFrame.GetPixel(xx, y+yy))
			}
		}
		dst.DrawOver(block, shift, y, 1)
	}
}

// renderRotate3D simulates a horizontal flip: the outgoing frame
// compresses to a vertical sliver, then the incoming frame expands.
func (t *TransitionManager) renderRotate3D(dst *Pixmap, p float64) {
	var frame *Pixmap
	var sx float64
	if p < 0.5 {
		frame = t.fromFrame
		sx = 1 - 2*p
	} else {
		frame = t.toFrame
		sx = 2*p - 1
	}
	w, h := dst.Width(), dst.Height()
	sw := int(math.Max(1, sx*float64(w)))
	x0 := (w - sw) / 2

	dstImg := dst.RGBAImage()
	srcImg := frame.RGBAImage()
	xdraw.ApproxBiLinear.Scale(dstImg,
		image.Rect(x0, 0, x0+sw, h),
		srcImg, srcImg.Bounds(), xdraw.Over, nil)
}
