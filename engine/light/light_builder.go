package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithTarget is an option builder that sets the point the light view looks at.
//
// Parameters:
//   - x: the x target component
//   - y: the y target component
//   - z: the z target component
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = mgl32.Vec3{x, y, z}
	}
}

// WithUp is an option builder that sets the up vector of the light view.
// Only the direction matters; the look-at basis is normalized.
//
// Parameters:
//   - x: the x up component
//   - y: the y up component
//   - z: the z up component
//
// Returns:
//   - LightBuilderOption: a function that applies the up option to a lightImpl
func WithUp(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.up = mgl32.Vec3{x, y, z}
	}
}

// WithPlanes is an option builder that sets the near and far planes of the shadow projections.
// Non-positive values and a far plane not beyond near are ignored.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - LightBuilderOption: a function that applies the planes option to a lightImpl
func WithPlanes(near, far float32) LightBuilderOption {
	return func(l *lightImpl) {
		if near <= 0 || far <= near {
			return
		}
		l.near = near
		l.far = far
	}
}

// WithHalfExtent is an option builder that sets the orthographic half-extent of a
// directional light's shadow frustum.
//
// Parameters:
//   - halfExtent: half the frustum width and height in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the half-extent option to a lightImpl
func WithHalfExtent(halfExtent float32) LightBuilderOption {
	return func(l *lightImpl) {
		if halfExtent > 0 {
			l.halfExtent = halfExtent
		}
	}
}

// WithShadowSize is an option builder that sets the shadow target size in texels.
//
// Parameters:
//   - width: shadow target width
//   - height: shadow target height
//
// Returns:
//   - LightBuilderOption: a function that applies the size option to a lightImpl
func WithShadowSize(width, height int) LightBuilderOption {
	return func(l *lightImpl) {
		if width > 0 && height > 0 {
			l.shadowWidth = width
			l.shadowHeight = height
		}
	}
}
