package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeProgram struct {
	key      string
	values   map[string]any
	released bool
}

func newFakeProgram(key string) *fakeProgram {
	return &fakeProgram{key: key, values: make(map[string]any)}
}

func (p *fakeProgram) Key() string { return p.key }
func (p *fakeProgram) HasUniform(name string) bool {
	_, ok := p.values[name]
	return ok
}
func (p *fakeProgram) Release() { p.released = true }
func (p *fakeProgram) SetBool(name string, v bool) { p.values[name] = v }
func (p *fakeProgram) SetInt(name string, v int32) { p.values[name] = v }
func (p *fakeProgram) SetFloat(name string, v float32) { p.values[name] = v }
func (p *fakeProgram) SetVec2(name string, v mgl32.Vec2) { p.values[name] = v }
func (p *fakeProgram) SetVec3(name string, v mgl32.Vec3) { p.values[name] = v }
func (p *fakeProgram) SetVec4(name string, v mgl32.Vec4) { p.values[name] = v }
func (p *fakeProgram) SetMat2(name string, m mgl32.Mat2) { p.values[name] = m }
func (p *fakeProgram) SetMat3(name string, m mgl32.Mat3) { p.values[name] = m }
func (p *fakeProgram) SetMat4(name string, m mgl32.Mat4) { p.values[name] = m }

type fakeMesh struct {
	count    int
	released bool
}

func (m *fakeMesh) VertexCount() int { return m.count }
func (m *fakeMesh) Release() { m.released = true }

type fakeTarget struct {
	lightType light.LightType
	w, h      int
}

func (t *fakeTarget) LightType() light.LightType { return t.lightType }
func (t *fakeTarget) Size() (int, int) { return t.w, t.h }
func (t *fakeTarget) Release() {}

// fakeBackend records every call in order.
type fakeBackend struct {
	calls      []string
	compileErr error
	width      int
	height     int
	mode       PresentMode
	released   bool
}

var _ RendererBackend = &fakeBackend{}

func (b *fakeBackend) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *fakeBackend) Type() RendererBackendType { return BackendTypeGL }

func (b *fakeBackend) Info() BackendInfo {
	return BackendInfo{Backend: BackendTypeGL, Vendor: "fake"}
}

func (b *fakeBackend) CompileProgram(key string, src shader.Source) (Program, error) {
	b.record("compile %s", key)
	if b.compileErr != nil {
		return nil, b.compileErr
	}
	return newFakeProgram(key), nil
}

func (b *fakeBackend) UploadMesh(label string, vertexData []byte, vertexCount int) (Mesh, error) {
	b.record("upload %s %d %d", label, len(vertexData), vertexCount)
	return &fakeMesh{count: vertexCount}, nil
}

func (b *fakeBackend) CreateShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error) {
	b.record("target %s %dx%d", lightType, width, height)
	if lightType != light.LightTypePoint && lightType != light.LightTypeDirectional {
		return nil, errors.New("bad light")
	}
	return &fakeTarget{lightType: lightType, w: width, h: height}, nil
}

func (b *fakeBackend) ConfigureSurface(width, height int) {
	b.record("configure %dx%d", width, height)
	b.width, b.height = width, height
}

func (b *fakeBackend) SetPresentMode(mode PresentMode) { b.mode = mode }

func (b *fakeBackend) BeginFrame() error {
	b.record("begin frame")
	return nil
}

func (b *fakeBackend) BeginShadowPass(target ShadowTarget) error {
	b.record("begin shadow")
	return nil
}

func (b *fakeBackend) EndShadowPass() error {
	b.record("end shadow")
	return nil
}

func (b *fakeBackend) BeginScenePass(shadow ShadowTarget, clear [4]float32) error {
	b.record("begin scene %v", clear)
	return nil
}

func (b *fakeBackend) EndScenePass() error {
	b.record("end scene")
	return nil
}

func (b *fakeBackend) Draw(p Program, m Mesh) error {
	b.record("draw %s %d", p.Key(), m.VertexCount())
	return nil
}

func (b *fakeBackend) EndFrame() error {
	b.record("end frame")
	return nil
}

func (b *fakeBackend) Release() { b.released = true }
