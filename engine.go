package textmode

import (
	"fmt"
	"sync"
	"time"
)

// Switch is the deferred result of SwitchPattern. Done is closed when
// the switch completes (immediately for the first pattern, at
// transition completion otherwise) or fails; Err is valid after Done.
type Switch struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newSwitch() *Switch {
	return &Switch{done: make(chan struct{})}
}

// Done returns a channel closed when the switch has completed or
// failed.
func (s *Switch) Done() <-chan struct{} { return s.done }

// Err returns the failure, or nil on success. Only meaningful after
// Done is closed.
func (s *Switch) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Completed reports whether the switch has resolved or rejected.
func (s *Switch) Completed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Switch) resolve() {
	s.once.Do(func() { close(s.done) })
}

func (s *Switch) reject(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

// pendingSwitch is a switch request issued reentrantly from inside a
// tick; it is applied after the tick completes.
type pendingSwitch struct {
	name string
	tc   *TransitionConfig
	pc   *Config
	sw   *Switch
}

// Engine is the top-level orchestrator: it owns the visible surface,
// the pattern registry, the active pattern (or the layer compositor in
// multi-layer mode), the transition machine, the tempo clock, the
// performance monitor, and the tick scheduler.
//
// All mutation happens on the scheduler's tick goroutine; see the
// package documentation for the threading contract.
type Engine struct {
	surface *Surface
	sched   Scheduler

	registry map[string]PatternConstructor

	current Pattern
	trans   *TransitionManager
	layers  *LayerManager
	syncr   *Synchronizer
	mon     *Monitor

	baseCfg    Config
	maxDeltaMs float64

	running    bool
	closed     bool
	multiLayer bool

	lastTick time.Time
	haveLast bool
	inTick   bool
	pending  []pendingSwitch
}

// NewEngine creates an engine with a fresh surface of the given pixel
// size. See EngineOption for configuration.
func NewEngine(width, height int, opts ...EngineOption) (*Engine, error) {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	surface, err := NewSurface(width, height, o.fontData, o.fontSize)
	if err != nil {
		return nil, err
	}
	return newEngine(surface, o), nil
}

// NewEngineForSurface creates an engine targeting an existing surface.
// Font options are ignored; the surface keeps its face.
func NewEngineForSurface(surface *Surface, opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEngine(surface, o)
}

func newEngine(surface *Surface, o engineOptions) *Engine {
	if o.background != nil {
		surface.SetBackground(*o.background)
	}
	if o.foreground != nil {
		surface.SetForeground(*o.foreground)
	}
	surface.SetDebug(o.debug)

	sched := o.scheduler
	if sched == nil {
		sched = NewTickerScheduler(16 * time.Millisecond)
	}

	e := &Engine{
		surface:    surface,
		sched:      sched,
		registry:   make(map[string]PatternConstructor),
		trans:      NewTransitionManager(surface),
		syncr:      NewSynchronizer(120),
		mon:        NewMonitor(),
		baseCfg:    o.config,
		maxDeltaMs: o.maxDeltaMs,
	}
	e.trans.onComplete = func(to Pattern) { e.current = to }
	e.layers = NewLayerManager(surface, e.lookupPattern, e.baseCfg)
	return e
}

// RegisterPattern adds a constructor under the given name. The last
// registration for a name wins.
func (e *Engine) RegisterPattern(name string, ctor PatternConstructor) {
	if name == "" || ctor == nil {
		return
	}
	e.registry[name] = ctor
}

// RegisteredPatterns returns the registered names. Order is
// unspecified.
func (e *Engine) RegisteredPatterns() []string {
	names := make([]string, 0, len(e.registry))
	for name := range e.registry {
		names = append(names, name)
	}
	return names
}

func (e *Engine) lookupPattern(name string) (PatternConstructor, bool) {
	ctor, ok := e.registry[name]
	return ctor, ok
}

// SwitchPattern requests a change of the active pattern. An unknown
// name rejects immediately without mutating any state. With no active
// pattern the switch completes synchronously; otherwise the blend is
// handed to the transition machine and the returned Switch resolves
// when the transition finishes. A request arriving during a tick (from
// a pattern's own Update) is queued and applied after the tick.
//
// Every pattern instance discarded along the way — including instances
// discarded by a pre-empted transition — receives exactly one Cleanup.
func (e *Engine) SwitchPattern(name string, tc *TransitionConfig, pc *Config) *Switch {
	sw := newSwitch()
	if e.closed {
		sw.reject(ErrEngineClosed)
		return sw
	}
	if _, ok := e.registry[name]; !ok {
		sw.reject(&PatternNotFoundError{Name: name})
		return sw
	}
	if tc != nil {
		if err := validateTransitionConfig(*tc); err != nil {
			sw.reject(err)
			return sw
		}
	}
	if e.inTick {
		e.pending = append(e.pending, pendingSwitch{name: name, tc: tc, pc: pc, sw: sw})
		return sw
	}
	e.applySwitch(name, tc, pc, sw)
	return sw
}

// applySwitch constructs and initializes the new pattern, then either
// promotes it directly or starts a transition. A panicking constructor
// leaves the previously active pattern current and rejects the switch.
func (e *Engine) applySwitch(name string, tc *TransitionConfig, pc *Config, sw *Switch) {
	ctor := e.registry[name]
	cfg := e.baseCfg
	if pc != nil {
		cfg = cfg.Merge(*pc)
	}

	var next Pattern
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("textmode: pattern %q construction panicked: %v", name, r)
			}
		}()
		next = ctor(e.surface, cfg)
		next.Initialize()
		return nil
	}()
	if err != nil {
		Logger().Warn("pattern switch failed", "pattern", name, "err", err)
		sw.reject(err)
		return
	}

	// No active pattern and nothing in flight: complete synchronously.
	if e.current == nil && !e.trans.Active() {
		e.current = next
		sw.resolve()
		Logger().Info("pattern switched", "pattern", name)
		return
	}

	cfgT := DefaultTransition
	if tc != nil {
		cfgT = *tc
	}
	if e.trans.Active() {
		// Pre-emption: the in-flight transition completes first; its
		// to-pattern becomes this transition's from-pattern.
		e.trans.ForceComplete()
	}
	e.trans.Begin(e.current, next, cfgT, sw)
}

// StartAnimation activates the tick scheduler. Idempotent.
func (e *Engine) StartAnimation() {
	if e.running || e.closed {
		return
	}
	e.running = true
	e.haveLast = false
	e.sched.Start(e.tick)
}

// StopAnimation cancels the pending tick without discarding any state;
// an in-flight transition resumes exactly where it left off. Idempotent.
func (e *Engine) StopAnimation() {
	if !e.running {
		return
	}
	e.running = false
	e.sched.Stop()
}

// Running reports whether the tick scheduler is active.
func (e *Engine) Running() bool { return e.running }

// tick is the per-frame driver invoked by the scheduler.
func (e *Engine) tick(now time.Time) {
	if e.closed {
		return
	}
	if !e.haveLast {
		e.lastTick = now
		e.haveLast = true
		return
	}
	deltaMs := float64(now.Sub(e.lastTick)) / float64(time.Millisecond)
	e.lastTick = now
	if deltaMs <= 0 {
		return
	}
	if deltaMs > e.maxDeltaMs {
		deltaMs = e.maxDeltaMs
	}

	e.inTick = true
	e.mon.Update(deltaMs)
	e.syncr.Update(deltaMs)

	switch {
	case e.trans.Active():
		e.trans.Advance(deltaMs)
	case e.multiLayer:
		e.surface.Clear()
		e.layers.Tick(deltaMs)
	case e.current != nil:
		e.current.Update(deltaMs)
		e.current.Render()
	}
	e.inTick = false

	// Apply reentrant switch requests queued during the tick.
	for len(e.pending) > 0 {
		req := e.pending[0]
		e.pending = e.pending[1:]
		e.applySwitch(req.name, req.tc, req.pc, req.sw)
	}
}

// Resize recomputes the grid for a new pixel size (clamped to at least
// 1×1 cells) and forwards OnResize to the active pattern, any in-flight
// transition patterns, and all layers.
func (e *Engine) Resize(width, height int) {
	e.surface.Resize(width, height)
	g := e.surface.Grid()
	if e.current != nil {
		e.current.OnResize(g.Columns, g.Rows)
	}
	e.trans.Resize(g.Columns, g.Rows)
	e.layers.Resize(g.Columns, g.Rows)
	Logger().Debug("resized", "columns", g.Columns, "rows", g.Rows)
}

// SetMultiLayerMode switches between single-pattern rendering and the
// layer compositor. Pattern and layer state both survive toggling.
func (e *Engine) SetMultiLayerMode(enabled bool) { e.multiLayer = enabled }

// MultiLayerMode reports whether the layer compositor drives rendering.
func (e *Engine) MultiLayerMode() bool { return e.multiLayer }

// CurrentPattern returns the active pattern, or nil before the first
// switch. During a transition this is still the outgoing pattern; the
// incoming one is promoted at completion.
func (e *Engine) CurrentPattern() Pattern { return e.current }

// TransitionState returns the transition machine snapshot.
func (e *Engine) TransitionState() TransitionState { return e.trans.State() }

// GridSize returns the current character grid.
func (e *Engine) GridSize() Grid { return e.surface.Grid() }

// Metrics returns the performance snapshot; zeroed before any tick.
func (e *Engine) Metrics() PerformanceMetrics { return e.mon.Metrics() }

// TimingInfo returns the tempo clock snapshot.
func (e *Engine) TimingInfo() SyncState { return e.syncr.TimingInfo() }

// Surface returns the visible drawing surface.
func (e *Engine) Surface() *Surface { return e.surface }

// Layers returns the layer compositor.
func (e *Engine) Layers() *LayerManager { return e.layers }

// Synchronizer returns the tempo clock.
func (e *Engine) Synchronizer() *Synchronizer { return e.syncr }

// Monitor returns the performance monitor.
func (e *Engine) Monitor() *Monitor { return e.mon }

// Transitions returns the transition machine.
func (e *Engine) Transitions() *TransitionManager { return e.trans }

// Close stops animation, force-completes any in-flight transition, and
// cleans up the active pattern and all layers. Idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.StopAnimation()
	e.trans.ForceComplete()
	if e.current != nil {
		e.current.Cleanup()
		e.current = nil
	}
	e.layers.Close()
	for _, req := range e.pending {
		req.sw.reject(ErrEngineClosed)
	}
	e.pending = nil
	Logger().Info("engine closed")
	return nil
}
