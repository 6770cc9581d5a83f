package light

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies how a light casts shadows.
type LightType int

const (
	// LightTypeDirectional casts shadows through a single orthographic light-space matrix.
	LightTypeDirectional LightType = iota
	// LightTypePoint casts shadows in every direction through a depth cubemap.
	LightTypePoint
)

// String returns the lowercase name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// ParseLightType converts "point" or "directional" into a LightType.
//
// Parameters:
//   - s: the type name (case-insensitive)
//
// Returns:
//   - LightType: the parsed type
//   - error: error if the name is unknown
func ParseLightType(s string) (LightType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "directional":
		return LightTypeDirectional, nil
	case "point":
		return LightTypePoint, nil
	default:
		return 0, fmt.Errorf("unknown light type %q", s)
	}
}

type lightImpl struct {
	lightType LightType

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	near       float32
	far        float32
	halfExtent float32

	shadowWidth  int
	shadowHeight int

	model      mgl32.Mat4
	projection mgl32.Mat4
	view       mgl32.Mat4
	lightSpace mgl32.Mat4
	cubeProj   mgl32.Mat4
}

// Light is the single shadow-casting light of a scene.
// It owns the light's projections and derives the matrices used by the shadow pass.
type Light interface {
	// Type returns the light type.
	//
	// Returns:
	//   - LightType: directional or point
	Type() LightType

	// Position returns the world-space light position.
	//
	// Returns:
	//   - mgl32.Vec3: the light position
	Position() mgl32.Vec3

	// Target returns the point a directional light looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Up returns the up vector used to build the light view.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Near returns the near plane of the shadow projections.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far plane of the shadow projections.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ShadowSize returns the shadow target size in texels.
	//
	// Returns:
	//   - width, height: the shadow target dimensions
	ShadowSize() (width, height int)

	// Projection returns the orthographic light projection.
	//
	// Returns:
	//   - mgl32.Mat4: the projection
	Projection() mgl32.Mat4

	// View returns the light view matrix (look-at from Position to Target).
	//
	// Returns:
	//   - mgl32.Mat4: the view
	View() mgl32.Mat4

	// LightSpaceMatrix returns model·projection·view of the light.
	//
	// Returns:
	//   - mgl32.Mat4: the light-space matrix
	LightSpaceMatrix() mgl32.Mat4

	// CubeProjection returns the 90 degree projection shared by the six cube faces.
	//
	// Returns:
	//   - mgl32.Mat4: the face projection
	CubeProjection() mgl32.Mat4

	// ShadowTransforms recomputes the six cube-face view-projections for the current position.
	//
	// Returns:
	//   - [CubeFaceCount]mgl32.Mat4: face transforms in layer order +X, -X, +Y, -Y, +Z, -Z
	ShadowTransforms() [CubeFaceCount]mgl32.Mat4
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type.
// Defaults place the light at (-1, 4, 1) looking at the origin with near 0.1, far 10,
// a 10 unit orthographic half-extent and a 640x640 shadow target.
//
// Parameters:
//   - lightType: directional or point
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:    lightType,
		position:     mgl32.Vec3{-1, 4, 1},
		target:       mgl32.Vec3{0, 0, 0},
		up:           mgl32.Vec3{0, 1, 0},
		near:         DefaultShadowNear,
		far:          DefaultShadowFar,
		halfExtent:   DefaultShadowHalfExtent,
		shadowWidth:  DefaultShadowMapSize,
		shadowHeight: DefaultShadowMapSize,
		model:        mgl32.Ident4(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.updateMatrices()
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Target() mgl32.Vec3 {
	return l.target
}

func (l *lightImpl) Up() mgl32.Vec3 {
	return l.up
}

func (l *lightImpl) Near() float32 {
	return l.near
}

func (l *lightImpl) Far() float32 {
	return l.far
}

func (l *lightImpl) ShadowSize() (width, height int) {
	return l.shadowWidth, l.shadowHeight
}

func (l *lightImpl) Projection() mgl32.Mat4 {
	return l.projection
}

func (l *lightImpl) View() mgl32.Mat4 {
	return l.view
}

func (l *lightImpl) LightSpaceMatrix() mgl32.Mat4 {
	return l.lightSpace
}

func (l *lightImpl) CubeProjection() mgl32.Mat4 {
	return l.cubeProj
}

func (l *lightImpl) ShadowTransforms() [CubeFaceCount]mgl32.Mat4 {
	return CubeFaceTransforms(l.position, l.cubeProj)
}

// updateMatrices rebuilds the cached projections and the light-space matrix.
func (l *lightImpl) updateMatrices() {
	l.projection = OrthoProjection(l.halfExtent, l.near, l.far)
	l.view = mgl32.LookAtV(l.position, l.target, l.up)
	l.lightSpace = l.model.Mul4(l.projection).Mul4(l.view)
	l.cubeProj = CubeProjection(l.shadowWidth, l.shadowHeight, l.near, l.far)
}
