package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var glShaderTypes = map[shader.Stage]uint32{
	shader.StageVertex:   gl.VERTEX_SHADER,
	shader.StageFragment: gl.FRAGMENT_SHADER,
	shader.StageGeometry: gl.GEOMETRY_SHADER,
}

// glProgram sets uniforms with glProgramUniform*, so the program does not need to be bound.
type glProgram struct {
	key       string
	id        uint32
	locations map[string]int32
}

var _ Program = &glProgram{}

// compileGLShader compiles one stage and returns the compiler log on failure.
func compileGLShader(stage shader.Stage, src string) (uint32, error) {
	handle := gl.CreateShader(glShaderTypes[stage])

	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteShader(handle)

		return 0, fmt.Errorf("%w: %s stage: %s", shader.ErrCompile, stage, strings.TrimRight(msg, "\x00"))
	}
	return handle, nil
}

// linkGLProgram compiles every present stage and links them.
func linkGLProgram(key string, src shader.Source) (*glProgram, error) {
	var handles []uint32
	defer func() {
		for _, h := range handles {
			gl.DeleteShader(h)
		}
	}()

	for _, stage := range shader.Stages {
		text := src.Stage(stage)
		if text == "" {
			continue
		}
		h, err := compileGLShader(stage, text)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	id := gl.CreateProgram()
	for _, h := range handles {
		gl.AttachShader(id, h)
	}
	gl.LinkProgram(id)
	for _, h := range handles {
		gl.DetachShader(id, h)
	}

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(id)

		return nil, fmt.Errorf("%w: %s", shader.ErrLink, strings.TrimRight(msg, "\x00"))
	}

	return &glProgram{key: key, id: id, locations: make(map[string]int32)}, nil
}

// location returns the cached uniform location, -1 for names the program does not use.
func (p *glProgram) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (p *glProgram) Key() string {
	return p.key
}

func (p *glProgram) HasUniform(name string) bool {
	return p.location(name) >= 0
}

func (p *glProgram) SetBool(name string, value bool) {
	var v int32
	if value {
		v = 1
	}
	p.SetInt(name, v)
}

func (p *glProgram) SetInt(name string, value int32) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniform1i(p.id, loc, value)
	}
}

func (p *glProgram) SetFloat(name string, value float32) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniform1f(p.id, loc, value)
	}
}

func (p *glProgram) SetVec2(name string, v mgl32.Vec2) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniform2f(p.id, loc, v[0], v[1])
	}
}

func (p *glProgram) SetVec3(name string, v mgl32.Vec3) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniform3f(p.id, loc, v[0], v[1], v[2])
	}
}

func (p *glProgram) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniform4f(p.id, loc, v[0], v[1], v[2], v[3])
	}
}

func (p *glProgram) SetMat2(name string, m mgl32.Mat2) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniformMatrix2fv(p.id, loc, 1, false, &m[0])
	}
}

func (p *glProgram) SetMat3(name string, m mgl32.Mat3) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniformMatrix3fv(p.id, loc, 1, false, &m[0])
	}
}

func (p *glProgram) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.location(name); loc >= 0 {
		gl.ProgramUniformMatrix4fv(p.id, loc, 1, false, &m[0])
	}
}

func (p *glProgram) Release() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

type glMesh struct {
	vao         uint32
	vbo         uint32
	vertexCount int
}

var _ Mesh = &glMesh{}

func (m *glMesh) VertexCount() int {
	return m.vertexCount
}

func (m *glMesh) Release() {
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// glShadowTarget is a depth-only framebuffer with a depth cubemap (point) or a 2D
// depth texture (directional) attached.
type glShadowTarget struct {
	lightType light.LightType
	width     int
	height    int

	fbo           uint32
	texture       uint32
	textureTarget uint32
}

var _ ShadowTarget = &glShadowTarget{}

func (t *glShadowTarget) LightType() light.LightType {
	return t.lightType
}

func (t *glShadowTarget) Size() (width, height int) {
	return t.width, t.height
}

func (t *glShadowTarget) Release() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.texture != 0 {
		gl.DeleteTextures(1, &t.texture)
		t.texture = 0
	}
}
