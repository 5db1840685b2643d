package textmode

import (
	"math"
	"testing"
)

func TestSynchronizer_BeatsAt120BPM(t *testing.T) {
	s := NewSynchronizer(120) // 500 ms per beat
	var events []SyncEvent
	s.OnSync(func(ev SyncEvent) { events = append(events, ev) })

	s.Update(1000)

	var beats []SyncEvent
	for _, ev := range events {
		if ev.Type == SyncBeat {
			beats = append(beats, ev)
		}
	}
	if len(beats) != 2 {
		t.Fatalf("beat events = %d, want 2", len(beats))
	}
	if beats[0].Timestamp != 500 || beats[1].Timestamp != 1000 {
		t.Fatalf("beat timestamps = %g, %g; want 500, 1000", beats[0].Timestamp, beats[1].Timestamp)
	}
}

func TestSynchronizer_StallFiresEveryBoundaryInOrder(t *testing.T) {
	s := NewSynchronizer(120)
	var stamps []float64
	s.OnSync(func(ev SyncEvent) {
		if ev.Type == SyncBeat {
			stamps = append(stamps, ev.Timestamp)
		}
	})

	s.Update(2750) // spans 5 beat boundaries at once

	want := []float64{500, 1000, 1500, 2000, 2500}
	if len(stamps) != len(want) {
		t.Fatalf("beats = %d, want %d", len(stamps), len(want))
	}
	for i, w := range want {
		if stamps[i] != w {
			t.Fatalf("beat %d at %g, want %g", i, stamps[i], w)
		}
	}
}

func TestSynchronizer_MeasureAndPhrase(t *testing.T) {
	s := NewSynchronizer(120)
	counts := map[string]int{}
	s.OnSync(func(ev SyncEvent) { counts[ev.Type]++ })

	// 16 beats = 4 measures = 1 phrase at the default 4/4 signature.
	for i := 0; i < 16; i++ {
		s.Update(500)
	}

	if counts[SyncBeat] != 16 {
		t.Fatalf("beats = %d, want 16", counts[SyncBeat])
	}
	if counts[SyncMeasure] != 4 {
		t.Fatalf("measures = %d, want 4", counts[SyncMeasure])
	}
	if counts[SyncPhrase] != 1 {
		t.Fatalf("phrases = %d, want 1", counts[SyncPhrase])
	}

	info := s.TimingInfo()
	if info.Beat != 16 || info.Measure != 4 || info.Phrase != 1 {
		t.Fatalf("TimingInfo = %+v", info)
	}
}

func TestSynchronizer_BeatPhase(t *testing.T) {
	s := NewSynchronizer(120)
	s.Update(250) // half a beat

	info := s.TimingInfo()
	if math.Abs(info.BeatPhase-0.5) > 1e-9 {
		t.Fatalf("BeatPhase = %g, want 0.5", info.BeatPhase)
	}
	if info.BeatPhase < 0 || info.BeatPhase >= 1 {
		t.Fatalf("BeatPhase = %g, want [0, 1)", info.BeatPhase)
	}

	s.Update(250) // exactly on the boundary: phase wraps to 0
	info = s.TimingInfo()
	if info.BeatPhase != 0 {
		t.Fatalf("BeatPhase on boundary = %g, want 0", info.BeatPhase)
	}
}

func TestSynchronizer_ClockNeverRewinds(t *testing.T) {
	s := NewSynchronizer(90)
	var last float64
	for _, d := range []float64{16, 0, -50, 700, 3} {
		s.Update(d)
		now := s.TimingInfo().MasterClock
		if now < last {
			t.Fatalf("master clock rewound: %g -> %g", last, now)
		}
		last = now
	}
}

func TestSynchronizer_Quantize(t *testing.T) {
	s := NewSynchronizer(120) // 500 ms/beat

	tests := []struct {
		name        string
		value       float64
		subdivision int
		want        float64
	}{
		{"snap down to beat", 620, 1, 500},
		{"snap up to beat", 760, 1, 1000},
		{"eighth grid", 310, 2, 250},
		{"sixteenth grid", 130, 4, 125},
		{"zero subdivision treated as 1", 740, 0, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Quantize(tt.value, tt.subdivision)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Quantize(%g, %d) = %g, want %g", tt.value, tt.subdivision, got, tt.want)
			}
		})
	}
}

func TestSynchronizer_CallbackPanicRecovered(t *testing.T) {
	s := NewSynchronizer(120)
	s.OnSync(func(SyncEvent) { panic("bad callback") })
	var delivered int
	s.OnSync(func(SyncEvent) { delivered++ })

	s.Update(500) // must not panic
	if delivered != 1 {
		t.Fatalf("second callback delivered %d events, want 1", delivered)
	}
}

func TestSynchronizer_SetTempoReanchors(t *testing.T) {
	s := NewSynchronizer(120)
	s.Update(1250) // 2 beats + half
	before := s.TimingInfo()

	s.SetTempo(60)
	info := s.TimingInfo()
	if info.Beat != before.Beat {
		t.Fatal("tempo change must not reset the beat counter")
	}
	if info.BeatPhase != 0 {
		t.Fatalf("BeatPhase after SetTempo = %g, want 0", info.BeatPhase)
	}
	if s.BeatLength() != 1000 {
		t.Fatalf("BeatLength = %g, want 1000", s.BeatLength())
	}

	s.SetTempo(-5) // ignored
	if s.Tempo() != 60 {
		t.Fatalf("Tempo = %g, want 60", s.Tempo())
	}
}
