package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrPassOrder is returned when frame and pass calls are made out of order.
	ErrPassOrder = errors.New("render pass out of order")

	// ErrForeignResource is returned when a program, mesh or target created by another backend is used.
	ErrForeignResource = errors.New("resource belongs to another backend")

	// ErrUniformCapacity is returned when a frame issues more draws than the uniform buffer holds.
	ErrUniformCapacity = errors.New("uniform buffer capacity exceeded")

	// ErrSurfaceUnavailable is returned by BeginFrame when the window surface cannot
	// provide a texture this frame, e.g. while minimized or right after a resize.
	// The frame should be skipped.
	ErrSurfaceUnavailable = errors.New("surface texture unavailable")
)

// Pass identifies which half of the two-pass shadow frame is being drawn.
type Pass int

const (
	// PassShadow renders depth from the light into the shadow target.
	PassShadow Pass = iota

	// PassScene renders the lit scene to the window, sampling the shadow target.
	PassScene
)

// String returns the lowercase pass name.
func (p Pass) String() string {
	switch p {
	case PassShadow:
		return "shadow"
	case PassScene:
		return "scene"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// Uniforms sets program uniforms by name. Names the program does not declare and values
// whose type does not match the declaration are ignored. Array elements are addressed as "name[i]".
type Uniforms interface {
	SetBool(name string, value bool)
	SetInt(name string, value int32)
	SetFloat(name string, value float32)
	SetVec2(name string, v mgl32.Vec2)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetMat2(name string, m mgl32.Mat2)
	SetMat3(name string, m mgl32.Mat3)
	SetMat4(name string, m mgl32.Mat4)
}

// Program is a linked shader program. Uniform values persist between draws until overwritten.
type Program interface {
	Uniforms

	// Key returns the name the program was created under.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// HasUniform reports whether the program declares a uniform.
	//
	// Parameters:
	//   - name: the uniform name, or "name[i]" for array elements
	//
	// Returns:
	//   - bool: true if setting name has an effect
	HasUniform(name string) bool

	// Release frees the program's GPU objects.
	Release()
}

// Mesh is vertex data resident on the GPU.
type Mesh interface {
	// VertexCount returns the number of vertices drawn per call.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	Release()
}

// ShadowTarget is the offscreen depth target of the shadow pass.
type ShadowTarget interface {
	// LightType returns the light the target was created for.
	//
	// Returns:
	//   - light.LightType: point (cubemap) or directional (2D)
	LightType() light.LightType

	// Size returns the size of one face in texels.
	//
	// Returns:
	//   - width, height: the face size
	Size() (width, height int)

	Release()
}

// Renderer owns the GPU device for one window and runs the two-pass shadow frame:
//
//	BeginFrame
//	  BeginShadowPass(target) ... Draw ... EndShadowPass
//	  BeginScenePass(target, clear) ... Draw ... EndScenePass
//	EndFrame
type Renderer interface {
	// Backend returns the active backend type.
	//
	// Returns:
	//   - RendererBackendType: WGPU or GL
	Backend() RendererBackendType

	// Info returns the device description reported at startup.
	//
	// Returns:
	//   - BackendInfo: vendor, renderer and version strings
	Info() BackendInfo

	// NewProgram compiles a program and stores it under key. An existing program with
	// the same key is released and replaced only if compilation succeeds.
	//
	// Parameters:
	//   - key: the program name
	//   - src: loaded stage sources
	//
	// Returns:
	//   - Program: the new program
	//   - error: error wrapping shader.ErrCompile or shader.ErrLink
	NewProgram(key string, src shader.Source) (Program, error)

	// Program returns the program stored under key.
	//
	// Parameters:
	//   - key: the program name
	//
	// Returns:
	//   - Program: the program, or nil if none was created
	Program(key string) Program

	// UploadMesh copies a model's vertices to the GPU.
	//
	// Parameters:
	//   - m: the model
	//
	// Returns:
	//   - Mesh: the uploaded mesh
	//   - error: error if the upload failed
	UploadMesh(m model.Model) (Mesh, error)

	// NewShadowTarget creates the depth target for a light.
	//
	// Parameters:
	//   - lightType: point or directional
	//   - width, height: face size in texels
	//
	// Returns:
	//   - ShadowTarget: the target
	//   - error: error if the target could not be created
	NewShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error)

	// ClipCorrection returns the matrix to pre-multiply onto OpenGL-convention projections.
	//
	// Parameters:
	//   - space: the target the projection renders to
	//
	// Returns:
	//   - mgl32.Mat4: identity for GL, depth remap (and cube face flip) for WebGPU
	ClipCorrection(space ClipSpace) mgl32.Mat4

	// BeginFrame starts a frame.
	//
	// Returns:
	//   - error: ErrPassOrder if a frame is open, or ErrSurfaceUnavailable
	BeginFrame() error

	// BeginShadowPass binds target, sets the viewport to its size and clears depth.
	//
	// Parameters:
	//   - target: the shadow target
	//
	// Returns:
	//   - error: ErrPassOrder unless a frame is open and no pass is active
	BeginShadowPass(target ShadowTarget) error

	EndShadowPass() error

	// BeginScenePass binds the window framebuffer, clears colour and depth and binds
	// shadow for sampling on texture unit 0.
	//
	// Parameters:
	//   - shadow: the shadow target rendered this frame
	//   - clear: RGBA clear colour
	//
	// Returns:
	//   - error: ErrPassOrder unless a frame is open and no pass is active
	BeginScenePass(shadow ShadowTarget, clear [4]float32) error

	EndScenePass() error

	// Draw draws m with p's current uniform values in the active pass.
	//
	// Parameters:
	//   - p: the program
	//   - m: the mesh
	//
	// Returns:
	//   - error: ErrPassOrder outside a pass, or a backend error
	Draw(p Program, m Mesh) error

	// EndFrame submits the frame and presents it (swaps buffers for GL).
	//
	// Returns:
	//   - error: ErrPassOrder if a pass is still open
	EndFrame() error

	// Resize reconfigures the window framebuffer.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Release frees every program and the device.
	Release()
}

type frameState int

const (
	frameIdle frameState = iota
	frameOpen
	frameShadowPass
	frameScenePass
)

type renderer struct {
	mu *sync.Mutex

	programs map[string]Program

	backendType RendererBackendType
	backend     RendererBackend
	logger      common.Logger
	state       frameState

	forceFallbackAdapter bool
	uniformSlots         int
	pendingPresentMode   *PresentMode
}

var _ Renderer = &renderer{}

// NewRenderer creates the backend for win and configures it to the window size.
// The GL backend makes the window's context current on the calling thread; every later
// Renderer call must come from that thread.
//
// Parameters:
//   - backendType: BackendTypeWGPU or BackendTypeGL; the window must have been created
//     with backendType.ClientAPI()
//   - win: the window to render into
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the device could not be initialised
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:           &sync.Mutex{},
		programs:     make(map[string]Program),
		backendType:  backendType,
		logger:       common.NewNopLogger(),
		uniformSlots: defaultUniformSlots,
	}
	for _, opt := range options {
		opt(r)
	}

	if win.ClientAPI() != backendType.ClientAPI() {
		return nil, fmt.Errorf("%s backend needs a window created for client API %d", backendType, backendType.ClientAPI())
	}

	var err error
	switch backendType {
	case BackendTypeGL:
		r.backend, err = newGLRendererBackend(win, r.logger)
	case BackendTypeWGPU:
		r.backend, err = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.uniformSlots, r.logger)
	default:
		err = fmt.Errorf("unsupported renderer backend %s", backendType)
	}
	if err != nil {
		return nil, err
	}

	r.init(win.Width(), win.Height())
	return r, nil
}

// newRendererWithBackend wraps an existing backend.
func newRendererWithBackend(backend RendererBackend, logger common.Logger) *renderer {
	return &renderer{
		mu:          &sync.Mutex{},
		programs:    make(map[string]Program),
		backendType: backend.Type(),
		backend:     backend,
		logger:      common.Coalesce(logger, common.NewNopLogger()),
	}
}

func (r *renderer) init(width, height int) {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(width, height)
	r.logger.Infof("renderer %s", r.backend.Info())
}

func (r *renderer) Backend() RendererBackendType {
	return r.backendType
}

func (r *renderer) Info() BackendInfo {
	return r.backend.Info()
}

func (r *renderer) NewProgram(key string, src shader.Source) (Program, error) {
	p, err := r.backend.CompileProgram(key, src)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", key, err)
	}

	r.mu.Lock()
	old := r.programs[key]
	r.programs[key] = p
	r.mu.Unlock()

	if old != nil {
		old.Release()
		r.logger.Infof("program %s reloaded", key)
	}
	return p, nil
}

func (r *renderer) Program(key string) Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.programs[key]
}

func (r *renderer) UploadMesh(m model.Model) (Mesh, error) {
	mesh, err := r.backend.UploadMesh(m.Name(), m.Bytes(), m.VertexCount())
	if err != nil {
		return nil, fmt.Errorf("upload mesh %s: %w", m.Name(), err)
	}
	return mesh, nil
}

func (r *renderer) NewShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("shadow target size %dx%d must be positive", width, height)
	}
	t, err := r.backend.CreateShadowTarget(lightType, width, height)
	if err != nil {
		return nil, fmt.Errorf("%s shadow target: %w", lightType, err)
	}
	return t, nil
}

func (r *renderer) ClipCorrection(space ClipSpace) mgl32.Mat4 {
	return clipCorrection(r.backendType, space)
}

func (r *renderer) BeginFrame() error {
	if r.state != frameIdle {
		return fmt.Errorf("%w: BeginFrame inside a frame", ErrPassOrder)
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.state = frameOpen
	return nil
}

func (r *renderer) BeginShadowPass(target ShadowTarget) error {
	if r.state != frameOpen {
		return fmt.Errorf("%w: BeginShadowPass needs an open frame and no active pass", ErrPassOrder)
	}
	if err := r.backend.BeginShadowPass(target); err != nil {
		return err
	}
	r.state = frameShadowPass
	return nil
}

func (r *renderer) EndShadowPass() error {
	if r.state != frameShadowPass {
		return fmt.Errorf("%w: EndShadowPass without BeginShadowPass", ErrPassOrder)
	}
	r.state = frameOpen
	return r.backend.EndShadowPass()
}

func (r *renderer) BeginScenePass(shadow ShadowTarget, clear [4]float32) error {
	if r.state != frameOpen {
		return fmt.Errorf("%w: BeginScenePass needs an open frame and no active pass", ErrPassOrder)
	}
	if err := r.backend.BeginScenePass(shadow, clear); err != nil {
		return err
	}
	r.state = frameScenePass
	return nil
}

func (r *renderer) EndScenePass() error {
	if r.state != frameScenePass {
		return fmt.Errorf("%w: EndScenePass without BeginScenePass", ErrPassOrder)
	}
	r.state = frameOpen
	return r.backend.EndScenePass()
}

func (r *renderer) Draw(p Program, m Mesh) error {
	if r.state != frameShadowPass && r.state != frameScenePass {
		return fmt.Errorf("%w: Draw outside a pass", ErrPassOrder)
	}
	if p == nil || m == nil {
		return errors.New("draw needs a program and a mesh")
	}
	return r.backend.Draw(p, m)
}

func (r *renderer) EndFrame() error {
	if r.state != frameOpen {
		return fmt.Errorf("%w: EndFrame with a pass open or no frame", ErrPassOrder)
	}
	r.state = frameIdle
	return r.backend.EndFrame()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Release() {
	r.mu.Lock()
	programs := r.programs
	r.programs = make(map[string]Program)
	r.mu.Unlock()

	for _, p := range programs {
		p.Release()
	}
	r.backend.Release()
}
