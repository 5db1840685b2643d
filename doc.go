// Package textmode is a real-time animation core for monospace-character
// ("ASCII") visual patterns rendered onto a software pixel surface.
//
// # Overview
//
// textmode draws animated character patterns into an RGBA pixel buffer,
// blends between patterns with timed transition effects, composites
// several patterns as independent layers, can tempo-lock pattern behavior
// to a shared BPM clock, and degrades rendering quality under sustained
// performance pressure.
//
// # Quick Start
//
//	import (
//	    "github.com/skillparty/textmode"
//	    "github.com/skillparty/textmode/patterns"
//	)
//
//	eng, _ := textmode.NewEngine(800, 600)
//	eng.RegisterPattern("conway", patterns.NewConwayLife)
//	eng.RegisterPattern("matrix", patterns.NewMatrixRain)
//
//	sw := eng.SwitchPattern("conway", nil, nil)
//	<-sw.Done()
//	eng.StartAnimation()
//
// # Architecture
//
// The package is organized into:
//   - Public API: Engine, Pattern, Surface, TransitionManager,
//     LayerManager, Synchronizer, Monitor
//   - Internal: blend (layer compositing), filter (layer post-effects)
//   - Patterns: concrete implementations live in the patterns subpackage
//
// # Threading
//
// The Engine is single-goroutine by contract: after StartAnimation all
// state mutation happens on the scheduler's tick goroutine, and API calls
// must be made from that same context. Reentrant calls from inside a
// pattern's Update are queued and applied after the current tick. See
// Scheduler for driving the engine deterministically in tests.
package textmode
