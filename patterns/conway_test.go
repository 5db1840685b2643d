package patterns

import (
	"testing"

	"github.com/skillparty/textmode"
)

func newConway(t *testing.T, cfg textmode.Config) *ConwayLife {
	t.Helper()
	surf, err := textmode.NewSurface(200, 120, nil, 10)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	p := NewConwayLife(surf, cfg).(*ConwayLife)
	p.Seed(42)
	p.Initialize()
	return p
}

func TestConwayLife_BlinkerOscillatesWithPeriodTwo(t *testing.T) {
	p := newConway(t, textmode.Config{})

	// Horizontal blinker centered away from the boundary.
	gen0 := [][2]int{{4, 5}, {5, 5}, {6, 5}}
	p.SetCells(gen0)

	advance := func() {
		p.Update(conwayIntervalMedium)
	}

	advance() // generation 1: vertical
	if !p.Alive(5, 4) || !p.Alive(5, 5) || !p.Alive(5, 6) {
		t.Fatal("generation 1 should be the vertical blinker")
	}
	if p.Alive(4, 5) || p.Alive(6, 5) {
		t.Fatal("horizontal arms should be dead in generation 1")
	}

	advance() // generation 2: back to the original live set
	for _, cr := range gen0 {
		if !p.Alive(cr[0], cr[1]) {
			t.Fatalf("cell (%d,%d) should be live again in generation 2", cr[0], cr[1])
		}
	}
	if p.Population() != 3 {
		t.Fatalf("population = %d, want 3", p.Population())
	}
}

func TestConwayLife_MultipleGenerationsPerUpdate(t *testing.T) {
	p := newConway(t, textmode.Config{})
	p.SetCells([][2]int{{4, 5}, {5, 5}, {6, 5}})

	// One update spanning three intervals advances three generations.
	p.Update(conwayIntervalMedium * 3)
	if got := p.Generation(); got != 3 {
		t.Fatalf("Generation = %d, want 3", got)
	}
	// Odd generation: the blinker is vertical.
	if !p.Alive(5, 4) || p.Alive(4, 5) {
		t.Fatal("after 3 generations the blinker should be vertical")
	}
}

func TestConwayLife_SpeedSelectsInterval(t *testing.T) {
	tests := []struct {
		speed textmode.Speed
		want  float64
	}{
		{textmode.SpeedSlow, conwayIntervalSlow},
		{textmode.SpeedMedium, conwayIntervalMedium},
		{textmode.SpeedFast, conwayIntervalFast},
	}
	for _, tt := range tests {
		p := newConway(t, textmode.Config{Speed: tt.speed})
		if p.interval != tt.want {
			t.Fatalf("speed %v: interval = %g, want %g", tt.speed, p.interval, tt.want)
		}
	}
}

func TestConwayLife_PreInitCallsAreSafe(t *testing.T) {
	surf, err := textmode.NewSurface(100, 60, nil, 10)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	p := NewConwayLife(surf, textmode.Config{}).(*ConwayLife)

	// Must not panic before Initialize.
	p.Update(1000)
	p.Render()
	if p.Generation() != 0 {
		t.Fatal("uninitialized pattern must not advance")
	}
}

func TestConwayLife_CleanupIdempotentAndReinitializable(t *testing.T) {
	p := newConway(t, textmode.Config{})
	p.Update(conwayIntervalMedium)

	p.Cleanup()
	p.Cleanup() // idempotent
	if p.Initialized {
		t.Fatal("Cleanup should leave the pattern uninitialized")
	}
	p.Update(1000) // safe no-op
	p.Render()

	p.Initialize()
	if len(p.cells) != p.Columns()*p.Rows() {
		t.Fatal("re-initialization should rebuild the cell grid")
	}
}

func TestConwayLife_DegenerateGridSeedsSafely(t *testing.T) {
	p := newConway(t, textmode.Config{Density: textmode.DensityHigh})
	for _, size := range [][2]int{{3, 3}, {1, 1}, {2, 5}} {
		p.OnResize(size[0], size[1])
		if len(p.cells) != size[0]*size[1] {
			t.Fatalf("grid %dx%d: cells = %d", size[0], size[1], len(p.cells))
		}
		p.Update(conwayIntervalMedium * 2) // must not panic
		p.Render()
	}
}

func TestConwayLife_StagnationReseeds(t *testing.T) {
	p := newConway(t, textmode.Config{})

	// A block is a still life: its hash never changes, so the grid
	// reseeds after the stagnation limit.
	p.SetCells([][2]int{{4, 4}, {5, 4}, {4, 5}, {5, 5}})
	for i := 0; i < stagnantLimit+2; i++ {
		p.Update(conwayIntervalMedium)
	}
	if p.Generation() >= stagnantLimit {
		t.Fatalf("generation = %d, want reset below %d after reseed", p.Generation(), stagnantLimit)
	}
}

func TestConwayLife_WallClockReseed(t *testing.T) {
	p := newConway(t, textmode.Config{})
	p.SetCells([][2]int{{4, 5}, {5, 5}, {6, 5}}) // oscillator: never stagnant

	// Feed just under the reseed interval in large chunks, then cross it.
	for fed := 0.0; fed < reseedAfterMs; fed += 1000 {
		p.Update(1000)
	}
	if p.sinceReseed >= reseedAfterMs {
		t.Fatalf("sinceReseed = %g, want reset after wall-clock interval", p.sinceReseed)
	}
}

func TestConwayLife_SetConfigShallowMerge(t *testing.T) {
	p := newConway(t, textmode.Config{Theme: "retro", Speed: textmode.SpeedSlow})

	p.SetConfig(textmode.Config{Speed: textmode.SpeedFast})
	cfg := p.Config()
	if cfg.Theme != "retro" {
		t.Fatalf("Theme = %q, want retro (unspecified fields preserved)", cfg.Theme)
	}
	if cfg.Speed != textmode.SpeedFast {
		t.Fatalf("Speed = %v, want fast", cfg.Speed)
	}
	if p.interval != conwayIntervalFast {
		t.Fatalf("interval = %g, want %g after SetConfig", p.interval, float64(conwayIntervalFast))
	}
}
