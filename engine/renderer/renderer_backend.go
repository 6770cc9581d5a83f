package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeGL selects the OpenGL 4.1 core backend.
	BackendTypeGL
)

// String returns the backend name used in config files and flags.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeGL:
		return "gl"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// ClientAPI returns the window client API the backend needs.
//
// Returns:
//   - window.ClientAPI: ClientAPIOpenGL for the GL backend, ClientAPINone otherwise
func (t RendererBackendType) ClientAPI() window.ClientAPI {
	if t == BackendTypeGL {
		return window.ClientAPIOpenGL
	}
	return window.ClientAPINone
}

// ParseBackendType converts "wgpu"/"webgpu" or "gl"/"opengl" into a RendererBackendType.
//
// Parameters:
//   - s: the backend name (case-insensitive)
//
// Returns:
//   - RendererBackendType: the parsed backend
//   - error: error if the name is unknown
func ParseBackendType(s string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	case "gl", "opengl":
		return BackendTypeGL, nil
	default:
		return 0, fmt.Errorf("unknown renderer backend %q", s)
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// The frame loop's own throttle then decides the frame rate.
	PresentModeUncapped
)

// BackendInfo describes the device a backend is running on.
type BackendInfo struct {
	Backend  RendererBackendType
	Vendor   string
	Renderer string
	Version  string

	// ShadingLanguage is the GLSL version (GL) or "WGSL".
	ShadingLanguage string
}

// String formats the info for the startup log.
func (i BackendInfo) String() string {
	return fmt.Sprintf("%s: vendor=%q renderer=%q version=%q shading=%q",
		i.Backend, i.Vendor, i.Renderer, i.Version, i.ShadingLanguage)
}

// RendererBackend is implemented once per GPU API. The Renderer validates pass
// ordering and caches programs; backends only translate the calls.
type RendererBackend interface {
	// Type returns the backend type.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	Type() RendererBackendType

	// Info returns the device description.
	//
	// Returns:
	//   - BackendInfo: vendor, renderer and version strings
	Info() BackendInfo

	// CompileProgram builds a program from loaded stage sources.
	//
	// Parameters:
	//   - key: the program name, used in labels and errors
	//   - src: the stage sources
	//
	// Returns:
	//   - Program: the program
	//   - error: error wrapping shader.ErrCompile or shader.ErrLink
	CompileProgram(key string, src shader.Source) (Program, error)

	// UploadMesh copies interleaved position/normal vertices to the GPU.
	//
	// Parameters:
	//   - label: the mesh name
	//   - vertexData: packed model.GPUVertex bytes
	//   - vertexCount: number of vertices
	//
	// Returns:
	//   - Mesh: the uploaded mesh
	//   - error: error if the buffer could not be created
	UploadMesh(label string, vertexData []byte, vertexCount int) (Mesh, error)

	// CreateShadowTarget allocates the depth target for a light type.
	//
	// Parameters:
	//   - lightType: point (depth cubemap) or directional (2D depth texture)
	//   - width, height: size of each face in texels
	//
	// Returns:
	//   - ShadowTarget: the target
	//   - error: error if the target is incomplete or could not be created
	CreateShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error)

	// ConfigureSurface resizes the default framebuffer.
	//
	// Parameters:
	//   - width, height: framebuffer size in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets vsync behaviour.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	BeginFrame() error
	BeginShadowPass(target ShadowTarget) error
	EndShadowPass() error
	BeginScenePass(shadow ShadowTarget, clear [4]float32) error
	EndScenePass() error
	Draw(p Program, m Mesh) error
	EndFrame() error

	// Release frees every device resource owned by the backend.
	Release()
}
