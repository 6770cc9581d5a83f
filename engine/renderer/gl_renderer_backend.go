package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glRendererBackendImpl draws through an OpenGL 4.1 core context owned by the window.
// Every call must happen on the thread that made the context current.
type glRendererBackendImpl struct {
	mu     *sync.Mutex
	logger common.Logger
	win    window.Window
	info   BackendInfo

	width  int
	height int

	pass       Pass
	passTarget *glShadowTarget
}

var _ RendererBackend = &glRendererBackendImpl{}

func newGLRendererBackend(win window.Window, logger common.Logger) (*glRendererBackendImpl, error) {
	if win == nil {
		return nil, errors.New("gl backend needs a window")
	}
	runtime.LockOSThread()
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init OpenGL: %w", err)
	}

	b := &glRendererBackendImpl{
		mu:     &sync.Mutex{},
		logger: logger,
		win:    win,
		width:  win.Width(),
		height: win.Height(),
		info: BackendInfo{
			Backend:         BackendTypeGL,
			Vendor:          gl.GoStr(gl.GetString(gl.VENDOR)),
			Renderer:        gl.GoStr(gl.GetString(gl.RENDERER)),
			Version:         gl.GoStr(gl.GetString(gl.VERSION)),
			ShadingLanguage: gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		},
	}
	logger.Infof("OpenGL Vendor: %s", b.info.Vendor)
	logger.Infof("OpenGL Renderer: %s", b.info.Renderer)
	logger.Infof("OpenGL Version: %s", b.info.Version)
	logger.Infof("OpenGL Shading Language Version: %s", b.info.ShadingLanguage)

	gl.Enable(gl.DEPTH_TEST)
	if err := CheckError("init"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *glRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeGL
}

func (b *glRendererBackendImpl) Info() BackendInfo {
	return b.info
}

func (b *glRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width = width
	b.height = height
}

func (b *glRendererBackendImpl) SetPresentMode(mode PresentMode) {
	if mode == PresentModeVSync {
		glfw.SwapInterval(1)
		return
	}
	glfw.SwapInterval(0)
}

func (b *glRendererBackendImpl) CompileProgram(key string, src shader.Source) (Program, error) {
	p, err := linkGLProgram(key, src)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (b *glRendererBackendImpl) UploadMesh(label string, vertexData []byte, vertexCount int) (Mesh, error) {
	if len(vertexData) == 0 || vertexCount == 0 {
		return nil, fmt.Errorf("mesh %s has no vertices", label)
	}

	m := &glMesh{vertexCount: vertexCount}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertexData), gl.Ptr(vertexData), gl.STATIC_DRAW)

	for _, attr := range model.VertexAttributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointerWithOffset(attr.Location, int32(attr.Components), gl.FLOAT, false, model.VertexStride, uintptr(attr.Offset))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := CheckError("upload mesh " + label); err != nil {
		m.Release()
		return nil, err
	}
	return m, nil
}

func (b *glRendererBackendImpl) CreateShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error) {
	t := &glShadowTarget{lightType: lightType, width: width, height: height}

	gl.GenTextures(1, &t.texture)
	switch lightType {
	case light.LightTypePoint:
		t.textureTarget = gl.TEXTURE_CUBE_MAP
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.texture)
		for face := uint32(0); face < light.CubeFaceCount; face++ {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, gl.DEPTH_COMPONENT, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		}
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	case light.LightTypeDirectional:
		t.textureTarget = gl.TEXTURE_2D
		gl.BindTexture(gl.TEXTURE_2D, t.texture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT, int32(width), int32(height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	default:
		t.Release()
		return nil, fmt.Errorf("unsupported light type %s", lightType)
	}
	gl.BindTexture(t.textureTarget, 0)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, t.texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.Release()
		return nil, fmt.Errorf("shadow framebuffer incomplete: status 0x%04X", status)
	}
	b.logger.Infof("shadow framebuffer complete")

	if err := CheckError("create shadow target"); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func (b *glRendererBackendImpl) BeginFrame() error {
	return nil
}

func (b *glRendererBackendImpl) BeginShadowPass(target ShadowTarget) error {
	t, ok := target.(*glShadowTarget)
	if !ok {
		return fmt.Errorf("%w: shadow target %T", ErrForeignResource, target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pass = PassShadow
	b.passTarget = t

	gl.Viewport(0, 0, int32(t.width), int32(t.height))
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *glRendererBackendImpl) EndShadowPass() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

func (b *glRendererBackendImpl) BeginScenePass(shadow ShadowTarget, clear [4]float32) error {
	t, ok := shadow.(*glShadowTarget)
	if !ok {
		return fmt.Errorf("%w: shadow target %T", ErrForeignResource, shadow)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pass = PassScene
	b.passTarget = t

	gl.Viewport(0, 0, int32(b.width), int32(b.height))
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	// depthMap is always texture unit 0
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(t.textureTarget, t.texture)
	return nil
}

func (b *glRendererBackendImpl) EndScenePass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.passTarget != nil {
		gl.BindTexture(b.passTarget.textureTarget, 0)
	}
	b.passTarget = nil
	return nil
}

func (b *glRendererBackendImpl) Draw(p Program, m Mesh) error {
	gp, ok := p.(*glProgram)
	if !ok {
		return fmt.Errorf("%w: program %T", ErrForeignResource, p)
	}
	gm, ok := m.(*glMesh)
	if !ok {
		return fmt.Errorf("%w: mesh %T", ErrForeignResource, m)
	}

	gl.UseProgram(gp.id)
	gl.BindVertexArray(gm.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(gm.vertexCount))
	gl.BindVertexArray(0)
	return nil
}

// EndFrame logs pending GL errors and swaps buffers. Errors do not stop the frame loop.
func (b *glRendererBackendImpl) EndFrame() error {
	if err := CheckError("frame"); err != nil {
		b.logger.Errorf("%v", err)
	}
	b.win.SwapBuffers()
	return nil
}

func (b *glRendererBackendImpl) Release() {
	gl.UseProgram(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}
