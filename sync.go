package textmode

import "math"

// Sync event types delivered to OnSync callbacks.
const (
	SyncBeat    = "beat"
	SyncMeasure = "measure"
	SyncPhrase  = "phrase"
)

// SyncEvent is delivered once per crossed musical-time boundary.
// Timestamp is the master-clock time of the boundary itself, not of the
// Update call that crossed it.
type SyncEvent struct {
	Type      string
	Timestamp float64 // ms on the master clock
}

// SyncState is the observable snapshot of the tempo clock.
type SyncState struct {
	MasterClock float64 // ms, monotone
	Tempo       float64 // BPM
	Beat        int
	Measure     int
	Phrase      int
	BeatPhase   float64 // fractional position within the current beat, [0, 1)
}

// Synchronizer is the tempo clock patterns and transitions may consult
// to lock behavior to a shared musical grid. The master clock advances
// monotonically with Update and never rewinds.
//
// If a single Update spans several beat boundaries (after a stall),
// each boundary fires its own event in chronological order; none are
// coalesced or skipped.
type Synchronizer struct {
	masterClock float64
	tempo       float64
	beat        int
	measure     int
	phrase      int

	beatsPerMeasure   int
	measuresPerPhrase int

	// beatAnchor is the master-clock time of the most recent beat
	// boundary; BeatPhase is measured from it.
	beatAnchor float64

	callbacks []func(SyncEvent)
}

// NewSynchronizer creates a tempo clock at the given BPM with a 4/4
// signature (4 beats per measure, 4 measures per phrase). Non-positive
// tempo falls back to 120.
func NewSynchronizer(tempo float64) *Synchronizer {
	if tempo <= 0 {
		tempo = 120
	}
	return &Synchronizer{
		tempo:             tempo,
		beatsPerMeasure:   4,
		measuresPerPhrase: 4,
	}
}

// Tempo returns the current BPM.
func (s *Synchronizer) Tempo() float64 { return s.tempo }

// SetTempo changes the BPM. The counters keep their values and the
// phase restarts at the current clock position; the clock never
// rewinds.
func (s *Synchronizer) SetTempo(tempo float64) {
	if tempo <= 0 {
		return
	}
	s.tempo = tempo
	s.beatAnchor = s.masterClock
}

// SetSignature configures beats per measure and measures per phrase.
// Non-positive values are ignored.
func (s *Synchronizer) SetSignature(beatsPerMeasure, measuresPerPhrase int) {
	if beatsPerMeasure > 0 {
		s.beatsPerMeasure = beatsPerMeasure
	}
	if measuresPerPhrase > 0 {
		s.measuresPerPhrase = measuresPerPhrase
	}
}

// BeatLength returns the beat duration in milliseconds (60000/BPM).
func (s *Synchronizer) BeatLength() float64 { return 60000 / s.tempo }

// OnSync registers a callback for beat/measure/phrase events. A
// callback that panics is recovered and logged; delivery to the
// remaining callbacks continues.
func (s *Synchronizer) OnSync(cb func(SyncEvent)) {
	if cb != nil {
		s.callbacks = append(s.callbacks, cb)
	}
}

// Update advances the master clock by deltaMs, firing one event per
// crossed boundary in chronological order. Negative deltas are ignored.
func (s *Synchronizer) Update(deltaMs float64) {
	if deltaMs <= 0 {
		return
	}
	target := s.masterClock + deltaMs
	beatLen := s.BeatLength()

	for {
		next := s.beatAnchor + beatLen
		if next > target {
			break
		}
		s.masterClock = next
		s.beatAnchor = next
		s.beat++
		s.fire(SyncEvent{Type: SyncBeat, Timestamp: next})
		if s.beat%s.beatsPerMeasure == 0 {
			s.measure++
			s.fire(SyncEvent{Type: SyncMeasure, Timestamp: next})
			if s.measure%s.measuresPerPhrase == 0 {
				s.phrase++
				s.fire(SyncEvent{Type: SyncPhrase, Timestamp: next})
			}
		}
	}
	s.masterClock = target
}

// Quantize snaps a timestamp to the nearest 1/subdivision beat-grid
// line. A subdivision below 1 is treated as 1 (whole beats).
func (s *Synchronizer) Quantize(valueMs float64, subdivision int) float64 {
	if subdivision < 1 {
		subdivision = 1
	}
	grid := s.BeatLength() / float64(subdivision)
	return math.Round(valueMs/grid) * grid
}

// TimingInfo returns the current snapshot. BeatPhase is in [0, 1).
func (s *Synchronizer) TimingInfo() SyncState {
	phase := (s.masterClock - s.beatAnchor) / s.BeatLength()
	if phase < 0 {
		phase = 0
	}
	if phase >= 1 {
		phase = math.Mod(phase, 1)
	}
	return SyncState{
		MasterClock: s.masterClock,
		Tempo:       s.tempo,
		Beat:        s.beat,
		Measure:     s.measure,
		Phrase:      s.phrase,
		BeatPhase:   phase,
	}
}

func (s *Synchronizer) fire(ev SyncEvent) {
	for _, cb := range s.callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					Logger().Warn("sync callback panicked", "type", ev.Type, "panic", r)
				}
			}()
			cb(ev)
		}()
	}
}
