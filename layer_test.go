package textmode

import (
	"errors"
	"math"
	"testing"
)

func newLayerFixture(t *testing.T) (*LayerManager, *Surface) {
	t.Helper()
	surf, err := NewSurface(64, 32, nil, 8)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	registry := map[string]PatternConstructor{
		"red":  solidCtor("red", RGB(1, 0, 0)),
		"blue": solidCtor("blue", RGB(0, 0, 1)),
	}
	lookup := func(name string) (PatternConstructor, bool) {
		ctor, ok := registry[name]
		return ctor, ok
	}
	return NewLayerManager(surf, lookup, DefaultConfig()), surf
}

func TestLayerManager_CreatesLayerOnFirstUse(t *testing.T) {
	lm, _ := newLayerFixture(t)

	if err := lm.AddPatternToLayer("bg", "red", nil); err != nil {
		t.Fatalf("AddPatternToLayer: %v", err)
	}
	if lm.Count() != 1 {
		t.Fatalf("Count = %d, want 1", lm.Count())
	}
	if err := lm.AddPatternToLayer("fg", "blue", nil); err != nil {
		t.Fatalf("AddPatternToLayer: %v", err)
	}
	// Insertion order determines z-index.
	if lm.Layer("bg").ZIndex() != 0 || lm.Layer("fg").ZIndex() != 1 {
		t.Fatalf("zIndex order wrong: bg=%d fg=%d", lm.Layer("bg").ZIndex(), lm.Layer("fg").ZIndex())
	}
}

func TestLayerManager_UnknownPatternRejected(t *testing.T) {
	lm, _ := newLayerFixture(t)
	err := lm.AddPatternToLayer("bg", "missing", nil)
	var notFound *PatternNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want PatternNotFoundError", err)
	}
	if lm.Count() != 0 {
		t.Fatal("failed attach must not create the layer")
	}
}

func TestLayerManager_UnknownLayerOperations(t *testing.T) {
	lm, _ := newLayerFixture(t)

	ops := []struct {
		name string
		err  error
	}{
		{"ApplyLayerEffect", lm.ApplyLayerEffect("ghost", LayerEffectBlur, 2)},
		{"AnimateLayer", lm.AnimateLayer("ghost", LayerPropOpacity, 1, 100)},
		{"SetLayerOpacity", lm.SetLayerOpacity("ghost", 0.5)},
		{"SetLayerBlendMode", lm.SetLayerBlendMode("ghost", "screen")},
		{"SetLayerZIndex", lm.SetLayerZIndex("ghost", 3)},
		{"RemoveLayer", lm.RemoveLayer("ghost")},
	}
	for _, op := range ops {
		var notFound *LayerNotFoundError
		if !errors.As(op.err, &notFound) {
			t.Errorf("%s: err = %v, want LayerNotFoundError", op.name, op.err)
		}
	}
}

func TestLayerManager_CompositeZOrder(t *testing.T) {
	lm, surf := newLayerFixture(t)
	if err := lm.AddPatternToLayer("bg", "red", nil); err != nil {
		t.Fatal(err)
	}
	if err := lm.AddPatternToLayer("fg", "blue", nil); err != nil {
		t.Fatal(err)
	}

	surf.Clear()
	lm.Tick(16)
	c := surf.Pixmap().GetPixel(10, 10)
	if c.B < 0.9 || c.R > 0.1 {
		t.Fatalf("top layer should win with normal blend, got %+v", c)
	}

	// Swapping z-order flips the winner.
	if err := lm.SetLayerZIndex("bg", 5); err != nil {
		t.Fatal(err)
	}
	surf.Clear()
	lm.Tick(16)
	c = surf.Pixmap().GetPixel(10, 10)
	if c.R < 0.9 || c.B > 0.1 {
		t.Fatalf("re-ordered layer should win, got %+v", c)
	}
}

func TestLayerManager_OpacityComposite(t *testing.T) {
	lm, surf := newLayerFixture(t)
	if err := lm.AddPatternToLayer("bg", "red", nil); err != nil {
		t.Fatal(err)
	}
	if err := lm.SetLayerOpacity("bg", 0.5); err != nil {
		t.Fatal(err)
	}

	surf.ClearTo(Black)
	lm.Tick(16)
	c := surf.Pixmap().GetPixel(5, 5)
	if math.Abs(c.R-0.5) > 0.05 {
		t.Fatalf("half-opacity red over black: R = %g, want ≈0.5", c.R)
	}
}

func TestLayerManager_AnimateOpacityMidpoint(t *testing.T) {
	lm, _ := newLayerFixture(t)
	if err := lm.AddPatternToLayer("L", "red", nil); err != nil {
		t.Fatal(err)
	}
	if err := lm.SetLayerOpacity("L", 0); err != nil {
		t.Fatal(err)
	}
	if err := lm.AnimateLayer("L", LayerPropOpacity, 1.0, 1000); err != nil {
		t.Fatal(err)
	}

	lm.Tick(500)
	got := lm.Layer("L").Opacity()
	if math.Abs(got-0.5) > 0.01 {
		t.Fatalf("opacity at t=500ms = %g, want ≈0.5", got)
	}

	lm.Tick(600)
	if got := lm.Layer("L").Opacity(); got != 1 {
		t.Fatalf("opacity after animation = %g, want 1", got)
	}
}

func TestLayerManager_AnimateLastWriterWins(t *testing.T) {
	lm, _ := newLayerFixture(t)
	if err := lm.AddPatternToLayer("L", "red", nil); err != nil {
		t.Fatal(err)
	}
	if err := lm.SetLayerOpacity("L", 0); err != nil {
		t.Fatal(err)
	}
	if err := lm.AnimateLayer("L", LayerPropOpacity, 1.0, 1000); err != nil {
		t.Fatal(err)
	}
	lm.Tick(500) // opacity ≈ 0.5

	// Replacement animation starts from the current value, not additive.
	if err := lm.AnimateLayer("L", LayerPropOpacity, 0, 500); err != nil {
		t.Fatal(err)
	}
	lm.Tick(250)
	got := lm.Layer("L").Opacity()
	if math.Abs(got-0.25) > 0.01 {
		t.Fatalf("replaced animation at midpoint = %g, want ≈0.25", got)
	}
}

func TestLayerManager_EffectValidation(t *testing.T) {
	lm, _ := newLayerFixture(t)
	if err := lm.AddPatternToLayer("L", "red", nil); err != nil {
		t.Fatal(err)
	}
	if err := lm.ApplyLayerEffect("L", "sharpen", 1); err == nil {
		t.Fatal("unknown effect kind should be rejected")
	}
	if err := lm.ApplyLayerEffect("L", LayerEffectBlur, 3); err != nil {
		t.Fatalf("blur effect: %v", err)
	}
	lm.Tick(16) // must not panic applying the filter
}

func TestLayerManager_RemoveCleansUp(t *testing.T) {
	lm, _ := newLayerFixture(t)
	if err := lm.AddPatternToLayer("L", "red", nil); err != nil {
		t.Fatal(err)
	}
	p := lm.Layer("L").Pattern().(*solidPattern)
	if err := lm.RemoveLayer("L"); err != nil {
		t.Fatal(err)
	}
	if p.cleanups != 1 {
		t.Fatalf("cleanups = %d, want 1", p.cleanups)
	}
	if lm.Count() != 0 {
		t.Fatal("layer should be gone")
	}
}

func TestLayerManager_ReplacePatternCleansUpOld(t *testing.T) {
	lm, _ := newLayerFixture(t)
	if err := lm.AddPatternToLayer("L", "red", nil); err != nil {
		t.Fatal(err)
	}
	old := lm.Layer("L").Pattern().(*solidPattern)
	if err := lm.AddPatternToLayer("L", "blue", nil); err != nil {
		t.Fatal(err)
	}
	if old.cleanups != 1 {
		t.Fatalf("old pattern cleanups = %d, want 1", old.cleanups)
	}
	if lm.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (layer reused)", lm.Count())
	}
}
