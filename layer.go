package textmode

import (
	"fmt"
	"sort"

	"github.com/skillparty/textmode/internal/blend"
	"github.com/skillparty/textmode/internal/filter"
)

// Layer post-effect kinds accepted by ApplyLayerEffect.
const (
	LayerEffectBlur       = "blur"
	LayerEffectBrightness = "brightness"
	LayerEffectAlphaDecay = "alpha-decay"
)

// Animatable layer properties accepted by AnimateLayer.
const (
	LayerPropOpacity    = "opacity"
	LayerPropBlur       = "blur"
	LayerPropBrightness = "brightness"
)

// Layer is one independently rendered, composited pattern surface.
// Each layer exclusively owns its offscreen surface; the visible
// surface is written only during compositing.
type Layer struct {
	name    string
	zIndex  int
	opacity float64
	mode    blend.Mode
	pattern Pattern
	surface *Surface

	effectKind  string
	effectParam float64

	anims map[string]*layerAnim
}

// Name returns the layer's unique key.
func (l *Layer) Name() string { return l.name }

// ZIndex returns the layer's compositing order; higher is drawn later.
func (l *Layer) ZIndex() int { return l.zIndex }

// Opacity returns the layer's compositing opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// Pattern returns the pattern attached to the layer, or nil.
func (l *Layer) Pattern() Pattern { return l.pattern }

// layerAnim linearly interpolates one numeric layer property. A second
// animation for the same layer+property replaces the first.
type layerAnim struct {
	from     float64
	to       float64
	duration float64
	elapsed  float64
}

func (a *layerAnim) value() float64 {
	t := a.elapsed / a.duration
	if t >= 1 {
		t = 1
	}
	return a.from + (a.to-a.from)*t
}

func (a *layerAnim) done() bool { return a.elapsed >= a.duration }

// LayerManager composites multiple pattern instances onto the visible
// surface in ascending z-index order, applying each layer's opacity,
// blend mode, and optional post-effect.
//
// Creation policy: AddPatternToLayer creates a layer on first use
// (z-index follows insertion order). Every other operation on an
// unknown layer name returns LayerNotFoundError.
type LayerManager struct {
	visible *Surface
	lookup  func(name string) (PatternConstructor, bool)
	baseCfg Config

	layers map[string]*Layer
	order  []*Layer
	nextZ  int
}

// NewLayerManager creates a compositor targeting the visible surface.
// lookup resolves pattern names against the engine's registry.
func NewLayerManager(visible *Surface, lookup func(string) (PatternConstructor, bool), baseCfg Config) *LayerManager {
	return &LayerManager{
		visible: visible,
		lookup:  lookup,
		baseCfg: baseCfg,
		layers:  make(map[string]*Layer),
	}
}

// AddPatternToLayer attaches a registered pattern to the named layer,
// creating the layer (with an owned offscreen surface) on first use.
// A pattern already attached to the layer is cleaned up and replaced.
func (m *LayerManager) AddPatternToLayer(layerName, patternName string, cfg *Config) error {
	ctor, ok := m.lookup(patternName)
	if !ok {
		return &PatternNotFoundError{Name: patternName}
	}

	layer, ok := m.layers[layerName]
	if !ok {
		layer = &Layer{
			name:    layerName,
			zIndex:  m.nextZ,
			opacity: 1,
			mode:    blend.Normal,
			surface: m.visible.NewOffscreen(),
			anims:   make(map[string]*layerAnim),
		}
		m.nextZ++
		m.layers[layerName] = layer
		m.order = append(m.order, layer)
	}

	merged := m.baseCfg
	if cfg != nil {
		merged = merged.Merge(*cfg)
	}
	p := ctor(layer.surface, merged)

	if layer.pattern != nil {
		layer.pattern.Cleanup()
	}
	layer.pattern = p
	p.Initialize()
	Logger().Info("layer pattern attached", "layer", layerName, "pattern", patternName, "z", layer.zIndex)
	return nil
}

// RemoveLayer detaches and cleans up the named layer.
func (m *LayerManager) RemoveLayer(name string) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	if layer.pattern != nil {
		layer.pattern.Cleanup()
		layer.pattern = nil
	}
	delete(m.layers, name)
	for i, l := range m.order {
		if l == layer {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// ApplyLayerEffect attaches a post-process filter applied to the
// layer's surface before compositing. Supported kinds: blur (param is
// the Gaussian radius in pixels), brightness (multiplier), alpha-decay
// (alpha multiplier in [0, 1]).
func (m *LayerManager) ApplyLayerEffect(name, kind string, param float64) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	switch kind {
	case LayerEffectBlur, LayerEffectBrightness, LayerEffectAlphaDecay:
	default:
		return fmt.Errorf("textmode: unknown layer effect %q", kind)
	}
	layer.effectKind = kind
	layer.effectParam = param
	return nil
}

// AnimateLayer linearly interpolates a numeric layer property from its
// current value to target over durationMs. A second call for the same
// layer+property cancels and replaces the first (last-writer-wins).
func (m *LayerManager) AnimateLayer(name, property string, target, durationMs float64) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	if durationMs <= 0 {
		return fmt.Errorf("textmode: animation duration must be positive, got %g", durationMs)
	}
	var from float64
	switch property {
	case LayerPropOpacity:
		from = layer.opacity
	case LayerPropBlur:
		if layer.effectKind == LayerEffectBlur {
			from = layer.effectParam
		}
	case LayerPropBrightness:
		from = 1
		if layer.effectKind == LayerEffectBrightness {
			from = layer.effectParam
		}
	default:
		return fmt.Errorf("textmode: unknown animatable property %q", property)
	}
	layer.anims[property] = &layerAnim{from: from, to: target, duration: durationMs}
	return nil
}

// SetLayerOpacity sets the compositing opacity, clamped to [0, 1].
func (m *LayerManager) SetLayerOpacity(name string, opacity float64) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	layer.opacity = opacity
	return nil
}

// SetLayerBlendMode sets the compositing blend mode by name (normal,
// multiply, screen, overlay, darken, lighten, difference, exclusion,
// additive).
func (m *LayerManager) SetLayerBlendMode(name, modeName string) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	mode, ok := blend.Parse(modeName)
	if !ok {
		return fmt.Errorf("textmode: unknown blend mode %q", modeName)
	}
	layer.mode = mode
	return nil
}

// SetLayerZIndex changes the layer's compositing order.
func (m *LayerManager) SetLayerZIndex(name string, z int) error {
	layer, ok := m.layers[name]
	if !ok {
		return &LayerNotFoundError{Name: name}
	}
	layer.zIndex = z
	m.sortOrder()
	return nil
}

// Layer returns the named layer, or nil if unmanaged.
func (m *LayerManager) Layer(name string) *Layer {
	return m.layers[name]
}

// LayerNames returns the managed layer names in compositing order.
func (m *LayerManager) LayerNames() []string {
	names := make([]string, len(m.order))
	for i, l := range m.order {
		names[i] = l.name
	}
	return names
}

// Count returns the number of managed layers.
func (m *LayerManager) Count() int { return len(m.layers) }

// Tick advances property animations and each layer's pattern, renders
// every layer into its own surface, applies its post-effect, and
// composites all layers onto the visible surface in ascending z-index.
func (m *LayerManager) Tick(deltaMs float64) {
	for _, layer := range m.order {
		m.advanceAnims(layer, deltaMs)
		if layer.pattern == nil {
			continue
		}
		layer.pattern.Update(deltaMs)
		layer.pattern.Render()
		m.applyEffect(layer)
	}
	m.composite()
}

func (m *LayerManager) advanceAnims(layer *Layer, deltaMs float64) {
	for prop, anim := range layer.anims {
		anim.elapsed += deltaMs
		v := anim.value()
		switch prop {
		case LayerPropOpacity:
			layer.opacity = v
		case LayerPropBlur:
			layer.effectKind = LayerEffectBlur
			layer.effectParam = v
		case LayerPropBrightness:
			layer.effectKind = LayerEffectBrightness
			layer.effectParam = v
		}
		if anim.done() {
			delete(layer.anims, prop)
		}
	}
}

func (m *LayerManager) applyEffect(layer *Layer) {
	pm := layer.surface.Pixmap()
	switch layer.effectKind {
	case LayerEffectBlur:
		filter.GaussianBlur(pm.Data(), pm.Width(), pm.Height(), layer.effectParam)
	case LayerEffectBrightness:
		filter.Brightness(pm.Data(), layer.effectParam)
	case LayerEffectAlphaDecay:
		filter.AlphaDecay(pm.Data(), layer.effectParam)
	}
}

func (m *LayerManager) composite() {
	dst := m.visible.Pixmap()
	for _, layer := range m.order {
		blend.Composite(dst.Data(), layer.surface.Pixmap().Data(), layer.mode, layer.opacity)
	}
}

// Resize rebuilds every layer's offscreen surface for new pixel
// dimensions and forwards the new grid to attached patterns. Surfaces
// are resized in place because patterns hold the surface handle they
// were constructed with.
func (m *LayerManager) Resize(columns, rows int) {
	w, h := m.visible.Width(), m.visible.Height()
	for _, layer := range m.order {
		layer.surface.Resize(w, h)
		if layer.pattern != nil {
			layer.pattern.OnResize(columns, rows)
		}
	}
}

// Close cleans up every layer's pattern. The manager is unusable after
// Close.
func (m *LayerManager) Close() {
	for _, layer := range m.order {
		if layer.pattern != nil {
			layer.pattern.Cleanup()
			layer.pattern = nil
		}
	}
	m.layers = make(map[string]*Layer)
	m.order = nil
}

func (m *LayerManager) sortOrder() {
	sort.SliceStable(m.order, func(i, j int) bool {
		return m.order[i].zIndex < m.order[j].zIndex
	})
}
