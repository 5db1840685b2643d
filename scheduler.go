package textmode

import (
	"sync"
	"time"
)

// Scheduler is the injectable tick source driving the engine. A
// production scheduler wraps the host's display-refresh mechanism or a
// timer; tests use ManualScheduler to advance time deterministically.
//
// Start must deliver every tick on a single goroutine. Stop cancels
// pending ticks without discarding any engine state; a subsequent Start
// resumes where the engine left off.
type Scheduler interface {
	Start(tick func(now time.Time))
	Stop()
}

// TickerScheduler delivers ticks from a time.Ticker on its own
// goroutine. It is the production scheduler.
type TickerScheduler struct {
	Interval time.Duration // defaults to ~60 Hz when zero

	mu   sync.Mutex
	done chan struct{}
}

// NewTickerScheduler creates a scheduler firing at the given interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{Interval: interval}
}

// Start begins delivering ticks. Calling Start while running is a no-op.
func (s *TickerScheduler) Start(tick func(now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	done := make(chan struct{})
	s.done = done
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-t.C:
				tick(now)
			}
		}
	}()
}

// Stop cancels pending ticks. Calling Stop while stopped is a no-op.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}
	close(s.done)
	s.done = nil
}

// ManualScheduler delivers ticks only when Advance is called, letting
// tests and frame-stepped hosts drive the engine with exact deltas.
type ManualScheduler struct {
	tick    func(now time.Time)
	now     time.Time
	running bool
}

// NewManualScheduler creates a manual scheduler starting at an arbitrary
// fixed epoch.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Unix(0, 0)}
}

// Start records the tick callback and delivers an initial tick so the
// engine can anchor its delta-time baseline.
func (s *ManualScheduler) Start(tick func(now time.Time)) {
	s.tick = tick
	s.running = true
	tick(s.now)
}

// Stop suspends tick delivery; Advance becomes a no-op until the next
// Start.
func (s *ManualScheduler) Stop() {
	s.running = false
}

// Advance moves the clock forward by deltaMs and delivers one tick.
func (s *ManualScheduler) Advance(deltaMs float64) {
	if !s.running || s.tick == nil {
		return
	}
	s.now = s.now.Add(time.Duration(deltaMs * float64(time.Millisecond)))
	s.tick(s.now)
}

// AdvanceSteps delivers n ticks of deltaMs each.
func (s *ManualScheduler) AdvanceSteps(n int, deltaMs float64) {
	for i := 0; i < n; i++ {
		s.Advance(deltaMs)
	}
}
