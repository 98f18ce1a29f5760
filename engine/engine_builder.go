package engine

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithDriver sets the animation driver advanced every tick.
//
// Parameters:
//   - d: the driver to advance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDriver(d animator.Driver) EngineBuilderOption {
	return func(e *engine) {
		e.driver = d
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - tps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(tps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(tps)
	}
}

// WithTickCallback registers the function called each tick before the driver update.
//
// Parameters:
//   - callback: function receiving the delta time in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithMaxDelta caps the delta passed to a single tick, so a stalled process does not skip
// whole clips or crossfades when it resumes. Values <= 0 disable the cap.
//
// Parameters:
//   - seconds: the largest delta forwarded in one tick
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxDelta(seconds float32) EngineBuilderOption {
	return func(e *engine) {
		e.maxDelta = seconds
	}
}
