package light

import "github.com/go-gl/mathgl/mgl32"

// DefaultShadowMapSize is the default width and height in texels of the shadow
// depth target.
const DefaultShadowMapSize = 640

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// of the directional light's shadow frustum.
const DefaultShadowHalfExtent float32 = 10.0

// DefaultShadowNear is the default near plane for both shadow projections.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for both shadow projections.
const DefaultShadowFar float32 = 10.0

// CubeFaceCount is the number of faces of a depth cubemap.
const CubeFaceCount = 6

// CubeFace is the view basis used to render one face of a point light's depth cubemap.
type CubeFace struct {
	// Direction is the axis the face looks down, relative to the light position.
	Direction mgl32.Vec3

	// Up is the face's up vector. The values follow the cubemap face orientation
	// convention so that sampling with a light-to-fragment vector hits the right texel.
	Up mgl32.Vec3
}

// CubeFaces lists the faces in cubemap layer order: +X, -X, +Y, -Y, +Z, -Z.
var CubeFaces = [CubeFaceCount]CubeFace{
	{Direction: mgl32.Vec3{1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Direction: mgl32.Vec3{-1, 0, 0}, Up: mgl32.Vec3{0, -1, 0}},
	{Direction: mgl32.Vec3{0, 1, 0}, Up: mgl32.Vec3{0, 0, 1}},
	{Direction: mgl32.Vec3{0, -1, 0}, Up: mgl32.Vec3{0, 0, -1}},
	{Direction: mgl32.Vec3{0, 0, 1}, Up: mgl32.Vec3{0, -1, 0}},
	{Direction: mgl32.Vec3{0, 0, -1}, Up: mgl32.Vec3{0, -1, 0}},
}

// CubeProjection builds the 90 degree perspective shared by all six cube faces.
//
// Parameters:
//   - width: shadow target width in texels
//   - height: shadow target height in texels
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - mgl32.Mat4: the face projection (OpenGL clip space)
func CubeProjection(width, height int, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(90), float32(width)/float32(height), near, far)
}

// CubeFaceTransforms returns projection·view for every cube face around position.
// The result is a fixed-size array; callers recompute it instead of appending.
//
// Parameters:
//   - position: world-space light position
//   - projection: the face projection from CubeProjection
//
// Returns:
//   - [CubeFaceCount]mgl32.Mat4: one view-projection per face, in layer order
func CubeFaceTransforms(position mgl32.Vec3, projection mgl32.Mat4) [CubeFaceCount]mgl32.Mat4 {
	var out [CubeFaceCount]mgl32.Mat4
	for i, face := range CubeFaces {
		view := mgl32.LookAtV(position, position.Add(face.Direction), face.Up)
		out[i] = projection.Mul4(view)
	}
	return out
}

// OrthoProjection builds the symmetric orthographic projection of a directional light.
//
// Parameters:
//   - halfExtent: half the width/height of the shadow frustum in world units
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - mgl32.Mat4: the orthographic projection (OpenGL clip space)
func OrthoProjection(halfExtent, near, far float32) mgl32.Mat4 {
	return mgl32.Ortho(-halfExtent, halfExtent, -halfExtent, halfExtent, near, far)
}
