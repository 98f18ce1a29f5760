package animator

import "errors"

var (
	// ErrNilStateData is returned when an AnimationState is constructed without a StateData.
	ErrNilStateData = errors.New("animation state data cannot be nil")

	// ErrClipNotFound is returned when a clip name does not resolve in the clip catalog.
	ErrClipNotFound = errors.New("animation not found")

	// ErrNilCatalog is returned by name lookups on a StateData built without a clip catalog.
	ErrNilCatalog = errors.New("animation state data has no clip catalog")
)
