package textmode

import (
	"math"
	"testing"
)

func TestMonitor_AverageFPSAt60Hz(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 120; i++ {
		m.Update(16.67)
	}
	got := m.Metrics().AverageFPS
	if math.Abs(got-60) > 1 {
		t.Fatalf("AverageFPS = %g, want 60 ±1", got)
	}
	if m.Metrics().IsPerformanceDegraded {
		t.Fatal("steady 60 fps must not degrade")
	}
}

func TestMonitor_SustainedLowFPSDegrades(t *testing.T) {
	m := NewMonitor()
	m.SetMemorySampler(func() float64 { return 0 })

	for i := 0; i < 60; i++ {
		m.Update(40) // 25 fps
	}
	met := m.Metrics()
	if !met.IsPerformanceDegraded {
		t.Fatal("sustained 25 fps should degrade")
	}
	if met.DegradationLevel < 1 {
		t.Fatalf("DegradationLevel = %d, want >= 1", met.DegradationLevel)
	}
}

func TestMonitor_HysteresisNeedsSustainedRun(t *testing.T) {
	m := NewMonitor()
	m.SetMemorySampler(func() float64 { return 0 })

	// Alternate good and bad samples: the below-threshold run never
	// reaches the trigger length because the average stays high.
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			m.Update(10) // 100 fps
		} else {
			m.Update(40) // 25 fps
		}
	}
	if m.Metrics().IsPerformanceDegraded {
		t.Fatal("alternating load must not degrade (average stays above threshold)")
	}
}

func TestMonitor_RecoveryDecrementsLevel(t *testing.T) {
	m := NewMonitor()
	m.SetMemorySampler(func() float64 { return 0 })
	m.ForceDegradation(2)

	// Recovery requires a sustained high-fps run plus cooldown room.
	for i := 0; i < 200; i++ {
		m.Update(10) // 100 fps
	}
	if got := m.Metrics().DegradationLevel; got >= 2 {
		t.Fatalf("DegradationLevel = %d, want < 2 after recovery", got)
	}
}

func TestMonitor_CallbackPanicDoesNotHaltMonitoring(t *testing.T) {
	m := NewMonitor()
	m.OnUpdate(func(PerformanceMetrics) { panic("observer bug") })
	var snapshots int
	m.OnUpdate(func(PerformanceMetrics) { snapshots++ })

	m.Update(16)
	m.Update(16)
	if snapshots != 2 {
		t.Fatalf("second callback received %d snapshots, want 2", snapshots)
	}
}

func TestMonitor_MemorySampledOnCoarseInterval(t *testing.T) {
	m := NewMonitor()
	var samples int
	m.SetMemorySampler(func() float64 {
		samples++
		return 100
	})

	for i := 0; i < 60; i++ {
		m.Update(16.67) // ≈1000 ms total
	}
	if samples != 1 {
		t.Fatalf("memory sampled %d times over ≈1s, want 1", samples)
	}
	if got := m.Metrics().MemoryUsageMB; got != 100 {
		t.Fatalf("MemoryUsageMB = %g, want 100", got)
	}
}

func TestMonitor_Recommendations(t *testing.T) {
	m := NewMonitor()
	m.SetMemoryThreshold(50)
	m.SetMemorySampler(func() float64 { return 200 })

	for i := 0; i < 60; i++ {
		m.Update(40)
	}
	recs := m.Recommendations()
	if len(recs) == 0 {
		t.Fatal("expected recommendations under low fps and high memory")
	}
	joined := ""
	for _, r := range recs {
		joined += r + ";"
	}
	for _, want := range []string{"reduce pattern complexity", "pattern cleanup"} {
		found := false
		for _, r := range recs {
			if r == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing recommendation %q in %q", want, joined)
		}
	}
}

func TestMonitor_ForceAndReset(t *testing.T) {
	m := NewMonitor()
	m.ForceDegradation(3)
	if got := m.Metrics().DegradationLevel; got != 3 {
		t.Fatalf("DegradationLevel = %d, want 3", got)
	}
	m.ForceDegradation(-1)
	if m.Metrics().IsPerformanceDegraded {
		t.Fatal("negative forced level clamps to 0")
	}

	m.Update(40)
	m.Reset()
	met := m.Metrics()
	if met.FPS != 0 || met.AverageFPS != 0 || met.DegradationLevel != 0 {
		t.Fatalf("Reset left metrics %+v", met)
	}
}

func TestMonitor_QueriedBeforeAnyUpdate(t *testing.T) {
	m := NewMonitor()
	met := m.Metrics()
	if met.FPS != 0 || met.AverageFPS != 0 || met.MemoryUsageMB != 0 || met.IsPerformanceDegraded {
		t.Fatalf("zero-value metrics expected, got %+v", met)
	}
	if recs := m.Recommendations(); len(recs) != 0 {
		t.Fatalf("no recommendations expected before updates, got %v", recs)
	}
}
