package common

import (
	"math"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// ComposeTRS builds a column-major 4x4 matrix from a translation, a unit quaternion (x, y, z, w)
// and a scale. Result: out = T * R * S
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - t: the translation
//   - q: the rotation quaternion (x, y, z, w)
//   - s: the scale along each axis
func ComposeTRS(out []float32, t [3]float32, q [4]float32, s [3]float32) {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * s[0]
	out[1] = 2 * (xy + wz) * s[0]
	out[2] = 2 * (xz - wy) * s[0]
	out[3] = 0

	out[4] = 2 * (xy - wz) * s[1]
	out[5] = (1 - 2*(xx+zz)) * s[1]
	out[6] = 2 * (yz + wx) * s[1]
	out[7] = 0

	out[8] = 2 * (xz + wy) * s[2]
	out[9] = 2 * (yz - wx) * s[2]
	out[10] = (1 - 2*(xx+yy)) * s[2]
	out[11] = 0

	out[12] = t[0]
	out[13] = t[1]
	out[14] = t[2]
	out[15] = 1
}

// Clamp restricts v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b. t = 0 returns a, t = 1 returns b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 linearly interpolates each component of two 3D vectors.
//
// Parameters:
//   - a: the start vector (t = 0)
//   - b: the end vector (t = 1)
//   - t: the interpolation factor
//
// Returns:
//   - [3]float32: the interpolated vector
func LerpVec3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		Lerp(a[0], b[0], t),
		Lerp(a[1], b[1], t),
		Lerp(a[2], b[2], t),
	}
}

// NormalizeQuat returns q scaled to unit length. A zero quaternion yields the identity rotation.
//
// Parameters:
//   - q: the quaternion (x, y, z, w)
//
// Returns:
//   - [4]float32: the normalized quaternion
func NormalizeQuat(q [4]float32) [4]float32 {
	l := float32(math.Sqrt(float64(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])))
	if l < 1e-8 {
		return [4]float32{0, 0, 0, 1}
	}
	inv := 1 / l
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// SlerpQuat spherically interpolates between two unit quaternions along the shortest arc.
// Nearly parallel inputs fall back to a normalized lerp to avoid dividing by a vanishing sine.
//
// Parameters:
//   - a: the start rotation (t = 0)
//   - b: the end rotation (t = 1)
//   - t: the interpolation factor
//
// Returns:
//   - [4]float32: the interpolated unit quaternion
func SlerpQuat(a, b [4]float32, t float32) [4]float32 {
	cos := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	if cos < 0 {
		cos = -cos
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
	}

	if cos > 0.9995 {
		return NormalizeQuat([4]float32{
			Lerp(a[0], b[0], t),
			Lerp(a[1], b[1], t),
			Lerp(a[2], b[2], t),
			Lerp(a[3], b[3], t),
		})
	}

	theta := math.Acos(float64(cos))
	sin := math.Sin(theta)
	wa := float32(math.Sin((1-float64(t))*theta) / sin)
	wb := float32(math.Sin(float64(t)*theta) / sin)

	return [4]float32{
		a[0]*wa + b[0]*wb,
		a[1]*wa + b[1]*wb,
		a[2]*wa + b[2]*wb,
		a[3]*wa + b[3]*wb,
	}
}
