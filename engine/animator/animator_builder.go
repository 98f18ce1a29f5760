package animator

import (
	"log"

	"github.com/tanema/gween/ease"
)

// AnimationStateBuilderOption is a functional option for configuring an AnimationState during construction.
type AnimationStateBuilderOption func(*animationState)

// WithMixCurve is an option builder that shapes the blend weight of crossfades.
// The curve receives (mixTime, 0, 1, mixDuration) and its result is clamped to [0, 1].
// Completion is still decided by linear progress, so every curve finishes on the same frame.
// The default is ease.Linear, which yields mixTime / mixDuration.
//
// Parameters:
//   - curve: the easing function, nil keeps the default
//
// Returns:
//   - AnimationStateBuilderOption: a function that applies the curve option to an animation state
func WithMixCurve(curve ease.TweenFunc) AnimationStateBuilderOption {
	return func(s *animationState) {
		if curve != nil {
			s.curve = curve
		}
	}
}

// WithLogger is an option builder that traces commits and queue promotions to the given logger.
//
// Parameters:
//   - logger: the destination logger, nil disables tracing
//
// Returns:
//   - AnimationStateBuilderOption: a function that applies the logger option to an animation state
func WithLogger(logger *log.Logger) AnimationStateBuilderOption {
	return func(s *animationState) {
		s.logger = logger
	}
}
