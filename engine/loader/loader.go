package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .gltf nor .glb.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrNoSkin is returned when the document has no skin at the requested index.
	ErrNoSkin = errors.New("document has no skin")
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	skinIndex int
	cache     map[string]*model.SkeletonData
}

// Loader imports skeletons and animation clips from glTF/GLB files and caches the resulting
// SkeletonData by path or name. Cached data is shared; each animated entity should pose its
// own copy obtained from SkeletonData.NewSkeleton.
type Loader interface {
	// Load imports a .gltf or .glb file, returning the cached result on later calls.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.SkeletonData: the skeleton and clips of the configured skin
	//   - error: ErrUnsupportedFormat, ErrNoSkin or a parse error
	Load(path string) (*model.SkeletonData, error)

	// LoadReader imports a document from a stream and caches it under name.
	//
	// Parameters:
	//   - name: the cache key and SkeletonData name
	//   - r: the reader providing glTF JSON or GLB data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *model.SkeletonData: the skeleton and clips of the configured skin
	//   - error: ErrNoSkin or a parse error
	LoadReader(name string, r io.Reader, isGLB bool) (*model.SkeletonData, error)

	// Get returns cached data by key, or nil.
	Get(name string) *model.SkeletonData

	// Assets returns a copy of the cache keyed by path or name.
	Assets() map[string]*model.SkeletonData
}

var _ Loader = &loader{}

// NewLoader creates a Loader that extracts skin 0 unless configured otherwise.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache: make(map[string]*model.SkeletonData),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// LoadSkeletonData imports skin 0 of a .gltf or .glb file without caching.
//
// Parameters:
//   - path: the file path to the model file
//
// Returns:
//   - *model.SkeletonData: the skeleton and its clips, named after the file
//   - error: ErrUnsupportedFormat, ErrNoSkin or a parse error
func LoadSkeletonData(path string) (*model.SkeletonData, error) {
	if err := checkFormat(path); err != nil {
		return nil, err
	}
	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return importSkeletonData(p, 0, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// LoadSkeletonDataReader imports skin 0 of a glTF document read from a stream without caching.
//
// Parameters:
//   - r: the reader providing glTF JSON or GLB data
//   - isGLB: true if the reader provides GLB binary data
//   - name: the name given to the resulting SkeletonData
//
// Returns:
//   - *model.SkeletonData: the skeleton and its clips
//   - error: ErrNoSkin or a parse error
func LoadSkeletonDataReader(r io.Reader, isGLB bool, name string) (*model.SkeletonData, error) {
	p := newGLTFParser()
	if err := p.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", name, err)
	}
	return importSkeletonData(p, 0, name)
}

func (l *loader) Load(path string) (*model.SkeletonData, error) {
	if data := l.Get(path); data != nil {
		return data, nil
	}
	if err := checkFormat(path); err != nil {
		return nil, err
	}

	p := newGLTFParser()
	if err := p.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	data, err := importSkeletonData(p, l.skinIndex, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.store(path, data), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*model.SkeletonData, error) {
	if data := l.Get(name); data != nil {
		return data, nil
	}

	p := newGLTFParser()
	if err := p.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	data, err := importSkeletonData(p, l.skinIndex, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	return l.store(name, data), nil
}

func (l *loader) Get(name string) *model.SkeletonData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Assets() map[string]*model.SkeletonData {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.SkeletonData, len(l.cache))
	for k, v := range l.cache {
		result[k] = v
	}
	return result
}

// store caches data under key unless a concurrent load got there first, and returns the winner.
func (l *loader) store(key string, data *model.SkeletonData) *model.SkeletonData {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.cache[key]; ok {
		return existing
	}
	l.cache[key] = data
	return data
}

func checkFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// importSkeletonData extracts one skin and every clip that animates its joints.
func importSkeletonData(p gltfParser, skinIndex int, name string) (*model.SkeletonData, error) {
	doc := p.Document()
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoSkin, skinIndex, len(doc.Skins))
	}

	skel, nodeToBone, err := extractSkeleton(p, skinIndex)
	if err != nil {
		return nil, fmt.Errorf("skin %d: %w", skinIndex, err)
	}
	clips, err := extractClips(p, nodeToBone)
	if err != nil {
		return nil, err
	}

	return &model.SkeletonData{
		Name:       name,
		Skeleton:   skel,
		Animations: clips,
	}, nil
}
