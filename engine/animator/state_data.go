package animator

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// ClipCatalog resolves clip names to clip definitions. *model.SkeletonData satisfies it.
type ClipCatalog interface {
	// FindAnimation returns the clip with the given name, or nil if there is none.
	FindAnimation(name string) *model.AnimationClip
}

// MixEntry is a single crossfade duration between an ordered pair of clips.
type MixEntry struct {
	From, To *model.AnimationClip
	Duration float32
}

// mixKey identifies an ordered (from, to) clip pair in the mix table.
type mixKey struct {
	from, to *model.AnimationClip
}

// StateData holds the configuration shared by every AnimationState bound to the same skeleton
// data: the clip catalog used for name lookups and the table of crossfade durations between
// clip pairs. Pairs without an entry use the default mix, which is 0 (no blending) unless set.
//
// StateData is safe for concurrent use so the table can be reloaded while states are running.
// An AnimationState reads a duration only when it commits a transition; an in-flight
// crossfade keeps the duration it started with.
type StateData struct {
	mu *sync.RWMutex

	catalog    ClipCatalog
	mixes      map[mixKey]float32
	defaultMix float32
}

// NewStateData creates an empty mix table bound to the given clip catalog.
// A nil catalog is allowed; name-based lookups then fail with ErrNilCatalog.
//
// Parameters:
//   - catalog: the clip catalog used to resolve names
//
// Returns:
//   - *StateData: the new mix table
func NewStateData(catalog ClipCatalog) *StateData {
	return &StateData{
		mu:      &sync.RWMutex{},
		catalog: catalog,
		mixes:   make(map[mixKey]float32),
	}
}

// Catalog returns the clip catalog this data resolves names against.
//
// Returns:
//   - ClipCatalog: the catalog, possibly nil
func (d *StateData) Catalog() ClipCatalog {
	return d.catalog
}

// FindClip resolves a clip by name.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - *model.AnimationClip: the resolved clip
//   - error: ErrNilCatalog, or an error wrapping ErrClipNotFound when the name is unknown
func (d *StateData) FindClip(name string) (*model.AnimationClip, error) {
	if d.catalog == nil {
		return nil, ErrNilCatalog
	}
	clip := d.catalog.FindAnimation(name)
	if clip == nil {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, name)
	}
	return clip, nil
}

// SetMix sets the crossfade duration used when transitioning from one clip to another.
// The pair is ordered: SetMix(a, b, ...) does not affect b -> a.
//
// Parameters:
//   - from: the outgoing clip
//   - to: the incoming clip
//   - duration: the crossfade duration in seconds; zero or negative disables blending
func (d *StateData) SetMix(from, to *model.AnimationClip, duration float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mixes[mixKey{from, to}] = duration
}

// SetMixByName resolves both clip names and sets their crossfade duration.
// Nothing is changed if either name is unknown.
//
// Parameters:
//   - fromName: the outgoing clip name
//   - toName: the incoming clip name
//   - duration: the crossfade duration in seconds
//
// Returns:
//   - error: an error wrapping ErrClipNotFound if either name is unknown
func (d *StateData) SetMixByName(fromName, toName string, duration float32) error {
	from, err := d.FindClip(fromName)
	if err != nil {
		return err
	}
	to, err := d.FindClip(toName)
	if err != nil {
		return err
	}
	d.SetMix(from, to, duration)
	return nil
}

// Mix returns the crossfade duration between two clips, falling back to the default mix.
//
// Parameters:
//   - from: the outgoing clip
//   - to: the incoming clip
//
// Returns:
//   - float32: the crossfade duration in seconds
func (d *StateData) Mix(from, to *model.AnimationClip) float32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if v, ok := d.mixes[mixKey{from, to}]; ok {
		return v
	}
	return d.defaultMix
}

// DefaultMix returns the duration used for pairs without an explicit entry.
func (d *StateData) DefaultMix() float32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaultMix
}

// SetDefaultMix sets the duration used for pairs without an explicit entry.
func (d *StateData) SetDefaultMix(duration float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultMix = duration
}

// ReplaceMixes atomically replaces the default mix and every pair entry.
//
// Parameters:
//   - defaultMix: the new default duration
//   - entries: the new pair entries; later duplicates override earlier ones
func (d *StateData) ReplaceMixes(defaultMix float32, entries []MixEntry) {
	mixes := make(map[mixKey]float32, len(entries))
	for _, e := range entries {
		mixes[mixKey{e.From, e.To}] = e.Duration
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultMix = defaultMix
	d.mixes = mixes
}

// MixCount returns the number of explicit pair entries.
func (d *StateData) MixCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.mixes)
}
