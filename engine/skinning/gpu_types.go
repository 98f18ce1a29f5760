package skinning

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSkinMatrixSource is the WGSL declaration of the skin matrix storage array.
// Matches GPUSkinMatrix layout exactly (64 bytes per element, std430 aligned).
//
//go:embed assets/skin_matrix.wgsl
var GPUSkinMatrixSource string

// GPUSkinMatrix is the GPU-aligned skinning matrix of one bone: its world matrix multiplied by
// its inverse bind matrix, column-major.
type GPUSkinMatrix struct {
	Matrix [16]float32 // offset 0, size 64 (mat4x4<f32>)
}

// Size returns the size of the GPUSkinMatrix struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinMatrix) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the matrix into a 64-byte little-endian buffer.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUSkinMatrix) Marshal() []byte {
	buf := make([]byte, 64)
	g.put(buf)
	return buf
}

func (g *GPUSkinMatrix) put(buf []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Matrix[i]))
	}
}

// BufferWrite is a pending upload of palette data into a bound storage buffer.
type BufferWrite struct {
	Binding int
	Offset  uint64
	Data    []byte
}
