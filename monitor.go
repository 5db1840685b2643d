package textmode

import "runtime"

// PerformanceMetrics is the snapshot handed to monitor callbacks each
// update. Queried before any update it is all zeroes.
type PerformanceMetrics struct {
	FPS                   float64
	AverageFPS            float64
	MemoryUsageMB         float64
	DegradationLevel      int
	IsPerformanceDegraded bool
}

// MemorySampler reports current memory usage in MB. A platform exposing
// no memory facility returns 0.
type MemorySampler func() float64

// HeapMemorySampler reads the Go heap via runtime.ReadMemStats. This is
// the default sampler.
func HeapMemorySampler() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1024 * 1024)
}

// Monitor is the adaptive control loop: a rolling frame-rate window plus
// coarser memory sampling feeding a hysteresis-driven degradation level.
// Levels increment only after a sustained run of sub-threshold samples
// and respect a cooldown between actions; sustained recovery decrements
// them symmetrically.
type Monitor struct {
	window []float64
	head   int
	count  int

	clock float64 // ms of fed time

	sampler        MemorySampler
	memIntervalMs  float64
	lastMemAt      float64
	memMB          float64
	memThresholdMB float64

	lowFPS       float64
	recoverFPS   float64
	degradeAfter int
	recoverAfter int
	cooldownMs   float64
	lastActionAt float64
	belowRun     int
	aboveRun     int
	level        int

	callbacks []func(PerformanceMetrics)
}

// NewMonitor creates a monitor with a 60-sample fps window, 1000 ms
// memory sampling, degradation below 30 fps sustained for 30 samples,
// recovery above 55 fps, and a 2000 ms action cooldown.
func NewMonitor() *Monitor {
	m := &Monitor{
		window:         make([]float64, 60),
		sampler:        HeapMemorySampler,
		memIntervalMs:  1000,
		memThresholdMB: 512,
		lowFPS:         30,
		recoverFPS:     55,
		degradeAfter:   30,
		recoverAfter:   60,
		cooldownMs:     2000,
	}
	m.lastActionAt = -m.cooldownMs // first action is not cooldown-blocked
	return m
}

// SetMemorySampler replaces the memory sampler. nil restores the
// default heap sampler.
func (m *Monitor) SetMemorySampler(s MemorySampler) {
	if s == nil {
		s = HeapMemorySampler
	}
	m.sampler = s
}

// SetMemoryThreshold sets the MB level above which Recommendations
// advises cleanup.
func (m *Monitor) SetMemoryThreshold(mb float64) {
	if mb > 0 {
		m.memThresholdMB = mb
	}
}

// OnUpdate registers a callback receiving the metrics snapshot each
// update. A callback that panics is recovered and logged; monitoring
// continues.
func (m *Monitor) OnUpdate(cb func(PerformanceMetrics)) {
	if cb != nil {
		m.callbacks = append(m.callbacks, cb)
	}
}

// Update records one frame of deltaMs duration, refreshes the memory
// sample on its coarser interval, and advances the hysteresis state.
func (m *Monitor) Update(deltaMs float64) {
	if deltaMs <= 0 {
		return
	}
	fps := 1000 / deltaMs
	m.window[m.head] = fps
	m.head = (m.head + 1) % len(m.window)
	if m.count < len(m.window) {
		m.count++
	}
	m.clock += deltaMs

	if m.clock-m.lastMemAt >= m.memIntervalMs {
		m.lastMemAt = m.clock
		m.memMB = m.sampler()
	}

	avg := m.averageFPS()
	if avg < m.lowFPS {
		m.belowRun++
		m.aboveRun = 0
	} else if avg > m.recoverFPS {
		m.aboveRun++
		m.belowRun = 0
	} else {
		m.belowRun = 0
		m.aboveRun = 0
	}

	if m.belowRun >= m.degradeAfter && m.clock-m.lastActionAt >= m.cooldownMs {
		m.level++
		m.lastActionAt = m.clock
		m.belowRun = 0
		Logger().Info("performance degraded", "level", m.level, "avg_fps", avg)
	} else if m.level > 0 && m.aboveRun >= m.recoverAfter && m.clock-m.lastActionAt >= m.cooldownMs {
		m.level--
		m.lastActionAt = m.clock
		m.aboveRun = 0
		Logger().Info("performance recovered", "level", m.level, "avg_fps", avg)
	}

	snapshot := m.snapshot(fps, avg)
	for _, cb := range m.callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Logger().Warn("monitor callback panicked", "panic", r)
				}
			}()
			cb(snapshot)
		}()
	}
}

// Metrics returns the current snapshot; all zeroes before any update.
func (m *Monitor) Metrics() PerformanceMetrics {
	var fps float64
	if m.count > 0 {
		last := (m.head - 1 + len(m.window)) % len(m.window)
		fps = m.window[last]
	}
	return m.snapshot(fps, m.averageFPS())
}

// Recommendations derives human-readable advice from current metrics.
func (m *Monitor) Recommendations() []string {
	var recs []string
	avg := m.averageFPS()
	if m.count > 0 && avg < m.lowFPS {
		recs = append(recs, "reduce pattern complexity")
	}
	if m.memMB > m.memThresholdMB {
		recs = append(recs, "pattern cleanup")
	}
	if m.level > 0 {
		recs = append(recs, "disable layer effects")
	}
	return recs
}

// ForceDegradation pins the degradation level. Intended for tests and
// manual overrides; negative levels clamp to 0.
func (m *Monitor) ForceDegradation(level int) {
	if level < 0 {
		level = 0
	}
	m.level = level
	m.lastActionAt = m.clock
}

// Reset restores the monitor to its initial state.
func (m *Monitor) Reset() {
	for i := range m.window {
		m.window[i] = 0
	}
	m.head = 0
	m.count = 0
	m.clock = 0
	m.lastMemAt = 0
	m.memMB = 0
	m.belowRun = 0
	m.aboveRun = 0
	m.level = 0
	m.lastActionAt = -m.cooldownMs
}

func (m *Monitor) averageFPS() float64 {
	if m.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < m.count; i++ {
		sum += m.window[i]
	}
	return sum / float64(m.count)
}

func (m *Monitor) snapshot(fps, avg float64) PerformanceMetrics {
	return PerformanceMetrics{
		FPS:                   fps,
		AverageFPS:            avg,
		MemoryUsageMB:         m.memMB,
		DegradationLevel:      m.level,
		IsPerformanceDegraded: m.level > 0,
	}
}
