package common

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math32.Pi

// WrapAngle keeps an accumulating rotation angle inside [0, 2π] by subtracting
// full turns while it exceeds 2π. Negative angles are returned unchanged and
// NaN or infinite angles reset to 0.
//
// Parameters:
//   - angle: the angle in radians
//
// Returns:
//   - float32: the wrapped angle
func WrapAngle(angle float32) float32 {
	if math32.IsNaN(angle) || math32.IsInf(angle, 0) {
		return 0
	}
	// past a few turns float32 subtraction stops making progress
	if angle > 2*TwoPi {
		angle = math32.Mod(angle, TwoPi)
	}
	for angle > TwoPi {
		angle -= TwoPi
	}
	return angle
}

// DepthRemap converts OpenGL clip space (z in [-w, w]) to WebGPU clip space (z in [0, w]).
// Pre-multiply a projection built with mgl32.Perspective or mgl32.Ortho by this matrix.
var DepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// FlipY mirrors clip space vertically.
var FlipY = mgl32.Scale3D(1, -1, 1)

// TransformPoint applies m to the point p (w = 1) and returns the homogeneous result.
//
// Parameters:
//   - m: the transform
//   - p: the point
//
// Returns:
//   - mgl32.Vec4: m·(p, 1)
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	return m.Mul4x1(p.Vec4(1))
}

// Mat4Bytes encodes a column-major matrix as 64 little-endian bytes for GPU uploads.
//
// Parameters:
//   - m: the matrix to encode
//
// Returns:
//   - []byte: the encoded matrix
func Mat4Bytes(m mgl32.Mat4) []byte {
	return Float32Bytes(m[:]...)
}

// Float32Bytes encodes float32 values as little-endian bytes.
//
// Parameters:
//   - values: the values to encode
//
// Returns:
//   - []byte: 4 bytes per value
func Float32Bytes(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
