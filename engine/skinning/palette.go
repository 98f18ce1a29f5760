package skinning

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// skinMatrixSize is the std430 stride of one GPUSkinMatrix.
const skinMatrixSize = 64

// palette is the implementation of the Palette interface.
type palette struct {
	mu *sync.Mutex

	matrices   []GPUSkinMatrix
	data       []byte
	dirty      bool
	visibility wgpu.ShaderStage
}

// Palette converts a posed skeleton into the per-bone skinning matrices a vertex or compute
// shader needs, and packages them for upload into a read-only storage buffer.
type Palette interface {
	// Update recomputes one matrix per bone as WorldMatrix * InverseBindMatrix. The skeleton's
	// world transforms must already be current. The palette grows to fit the skeleton.
	//
	// Parameters:
	//   - skel: the posed skeleton
	Update(skel *model.Skeleton)

	// Len returns the number of matrices in the palette.
	Len() int

	// Matrix returns the skinning matrix of a bone.
	//
	// Parameters:
	//   - bone: the bone index
	//
	// Returns:
	//   - [16]float32: the column-major matrix, or identity if bone is out of range
	Matrix(bone int) [16]float32

	// Bytes returns the std430 little-endian contents of the palette. The slice is owned by the
	// palette and is overwritten by the next Update.
	Bytes() []byte

	// Dirty reports whether Update has run since the last Stage.
	Dirty() bool

	// LayoutEntry returns the bind group layout entry describing the palette's storage buffer.
	//
	// Parameters:
	//   - binding: the binding index inside the bind group
	//
	// Returns:
	//   - wgpu.BindGroupLayoutEntry: a read-only storage entry sized for the current palette
	LayoutEntry(binding uint32) wgpu.BindGroupLayoutEntry

	// Stage returns a copy of the palette as a buffer write at offset 0 and clears Dirty.
	//
	// Parameters:
	//   - binding: the binding index the write targets
	//
	// Returns:
	//   - BufferWrite: the pending upload
	Stage(binding int) BufferWrite
}

var _ Palette = &palette{}

// NewPalette creates an empty Palette visible to vertex and compute shaders.
//
// Parameters:
//   - options: functional options to configure the palette
//
// Returns:
//   - Palette: the new palette
func NewPalette(options ...PaletteBuilderOption) Palette {
	p := &palette{
		mu:         &sync.Mutex{},
		visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageCompute,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *palette) Update(skel *model.Skeleton) {
	if skel == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resize(len(skel.Bones))
	for i := range skel.Bones {
		b := &skel.Bones[i]
		m := &p.matrices[i]
		common.Mul4(m.Matrix[:], b.WorldMatrix[:], b.InverseBindMatrix[:])
		m.put(p.data[i*skinMatrixSize:])
	}
	p.dirty = true
}

func (p *palette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.matrices)
}

func (p *palette) Matrix(bone int) [16]float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if bone < 0 || bone >= len(p.matrices) {
		var id [16]float32
		common.Identity(id[:])
		return id
	}
	return p.matrices[bone].Matrix
}

func (p *palette) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

func (p *palette) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

func (p *palette) LayoutEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: p.visibility,
	}
	entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	// Zero-length storage bindings are invalid, so an empty palette still reserves one matrix.
	entry.Buffer.MinBindingSize = uint64(max(len(p.matrices), 1) * skinMatrixSize)
	return entry
}

func (p *palette) Stage(binding int) BufferWrite {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = false
	return BufferWrite{
		Binding: binding,
		Offset:  0,
		Data:    append([]byte(nil), p.data...),
	}
}

// resize keeps matrices and data sized to n bones, reusing capacity when possible.
func (p *palette) resize(n int) {
	if cap(p.matrices) < n {
		p.matrices = make([]GPUSkinMatrix, n)
		p.data = make([]byte, n*skinMatrixSize)
		return
	}
	p.matrices = p.matrices[:n]
	p.data = p.data[:n*skinMatrixSize]
}
