package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ClipSpace names the render target a projection is used with.
type ClipSpace int

const (
	// ClipSpaceScreen is the window framebuffer.
	ClipSpaceScreen ClipSpace = iota

	// ClipSpaceShadow2D is the directional light depth texture.
	ClipSpaceShadow2D

	// ClipSpaceShadowCube is one face of the point light depth cubemap.
	ClipSpaceShadowCube
)

// clipCorrection returns the matrix that maps OpenGL-convention clip space
// (mgl32.Perspective / mgl32.Ortho output) to the backend's clip space for a target.
//
// OpenGL needs no correction. WebGPU keeps depth in [0, w] and stores framebuffer
// row 0 at NDC y = +1, so cube faces are mirrored vertically to keep the texel
// layout cubemap sampling expects.
func clipCorrection(backend RendererBackendType, space ClipSpace) mgl32.Mat4 {
	if backend != BackendTypeWGPU {
		return mgl32.Ident4()
	}
	if space == ClipSpaceShadowCube {
		return common.DepthRemap.Mul4(common.FlipY)
	}
	return common.DepthRemap
}
