package skinning

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PaletteBuilderOption is a functional option for configuring a Palette during construction.
type PaletteBuilderOption func(*palette)

// WithVisibility is an option builder that sets which shader stages can read the palette.
//
// Parameters:
//   - stages: the shader stage flags, wgpu.ShaderStageNone keeps the default
//
// Returns:
//   - PaletteBuilderOption: a function that applies the visibility option to a palette
func WithVisibility(stages wgpu.ShaderStage) PaletteBuilderOption {
	return func(p *palette) {
		if stages != wgpu.ShaderStageNone {
			p.visibility = stages
		}
	}
}

// WithCapacity is an option builder that preallocates room for n bones.
//
// Parameters:
//   - n: the expected bone count
//
// Returns:
//   - PaletteBuilderOption: a function that applies the capacity option to a palette
func WithCapacity(n int) PaletteBuilderOption {
	return func(p *palette) {
		if n > 0 {
			p.matrices = make([]GPUSkinMatrix, 0, n)
			p.data = make([]byte, 0, n*skinMatrixSize)
		}
	}
}
