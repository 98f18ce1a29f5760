package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeTRS(t *testing.T) {
	var m [16]float32
	half := float32(math.Sqrt2 / 2)

	// 90 degrees about z, scaled by 2 on x.
	ComposeTRS(m[:], [3]float32{1, 2, 3}, [4]float32{0, 0, half, half}, [3]float32{2, 1, 1})

	assert.InDelta(t, 0, m[0], 1e-6)
	assert.InDelta(t, 2, m[1], 1e-6)
	assert.InDelta(t, -1, m[4], 1e-6)
	assert.InDelta(t, 0, m[5], 1e-6)
	assert.Equal(t, [4]float32{1, 2, 3, 1}, [4]float32{m[12], m[13], m[14], m[15]})
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	ComposeTRS(m[:], [3]float32{5, 6, 7}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0), Clamp(-1, 0, 1))
	assert.Equal(t, float32(1), Clamp(2, 0, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, 0, 1))
}

func TestSlerpQuat(t *testing.T) {
	id := [4]float32{0, 0, 0, 1}
	flip := [4]float32{0, 0, 1, 0}

	assert.Equal(t, id, SlerpQuat(id, flip, 0))

	q := SlerpQuat(id, flip, 1)
	assert.InDelta(t, 1, q[2], 1e-6)

	// Opposite signs describe the same rotation; interpolation takes the short way.
	neg := SlerpQuat(id, [4]float32{0, 0, 0, -1}, 0.5)
	assert.InDelta(t, 1, math.Abs(float64(neg[3])), 1e-6)

	near := SlerpQuat(id, NormalizeQuat([4]float32{0, 0, 0.001, 1}), 0.5)
	assert.InDelta(t, 1, near[3], 1e-5)
}

func TestNormalizeQuat(t *testing.T) {
	assert.Equal(t, [4]float32{0, 0, 0, 1}, NormalizeQuat([4]float32{}))
	assert.Equal(t, [4]float32{0, 0, 0, 1}, NormalizeQuat([4]float32{0, 0, 0, 3}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
