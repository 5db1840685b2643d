package textmode

import (
	"errors"
	"fmt"
)

// ErrEngineClosed indicates an operation on an Engine after Close.
var ErrEngineClosed = errors.New("textmode: engine is closed")

// PatternNotFoundError indicates a SwitchPattern or layer attach request
// named a pattern that was never registered. The request leaves all
// existing state untouched.
type PatternNotFoundError struct {
	Name string
}

func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("textmode: pattern not found: %q", e.Name)
}

// InvalidTransitionConfigError indicates a transition request with an
// unsupported effect or a non-positive duration.
type InvalidTransitionConfigError struct {
	Effect   string
	Duration float64
	Reason   string
}

func (e *InvalidTransitionConfigError) Error() string {
	return fmt.Sprintf("textmode: invalid transition config (effect=%q duration=%g): %s",
		e.Effect, e.Duration, e.Reason)
}

// LayerNotFoundError indicates an operation on a layer name that is not
// managed by the LayerManager. Only AddPatternToLayer creates layers on
// demand; every other layer operation reports unknown names.
type LayerNotFoundError struct {
	Name string
}

func (e *LayerNotFoundError) Error() string {
	return fmt.Sprintf("textmode: layer not found: %q", e.Name)
}
