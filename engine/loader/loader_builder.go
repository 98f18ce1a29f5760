package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithSkin is an option builder that selects which skin of each document becomes the skeleton.
//
// Parameters:
//   - index: the skin index, 0 by default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the skin option to a loader
func WithSkin(index int) LoaderBuilderOption {
	return func(l *loader) {
		l.skinIndex = index
	}
}

// WithSkeletonData is an option builder that pre-populates the cache.
//
// Parameters:
//   - key: the cache key for the data
//   - data: the skeleton data to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache option to a loader
func WithSkeletonData(key string, data *model.SkeletonData) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = data
	}
}
