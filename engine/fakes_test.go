package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

// fakeWindow runs for maxPolls frames. onPoll is called from PollEvents with the poll count.
type fakeWindow struct {
	title    string
	polls    int
	maxPolls int
	onPoll   func(n int)

	keyDown func(uint32)
	keyUp   func(uint32)
	resize  func(int, int)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.resize = callback }
func (w *fakeWindow) SetKeyDownCallback(callback func(keyCode uint32)) { w.keyDown = callback }
func (w *fakeWindow) SetKeyUpCallback(callback func(keyCode uint32)) { w.keyUp = callback }
func (w *fakeWindow) ClientAPI() window.ClientAPI { return window.ClientAPIOpenGL }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) MakeContextCurrent() {}
func (w *fakeWindow) SwapBuffers() {}
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) Title() string { return w.title }
func (w *fakeWindow) IsRunning() bool { return w.polls < w.maxPolls }
func (w *fakeWindow) RequestClose() { w.maxPolls = w.polls }
func (w *fakeWindow) Close() error { return nil }
func (w *fakeWindow) Width() int { return 640 }
func (w *fakeWindow) Height() int { return 640 }

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w.polls)
	}
}

type fakeProgram struct {
	key string
}

func (p *fakeProgram) Key() string { return p.key }
func (p *fakeProgram) HasUniform(string) bool { return false }
func (p *fakeProgram) Release() {}
func (p *fakeProgram) SetBool(string, bool) {}
func (p *fakeProgram) SetInt(string, int32) {}
func (p *fakeProgram) SetFloat(string, float32) {}
func (p *fakeProgram) SetVec2(string, mgl32.Vec2) {}
func (p *fakeProgram) SetVec3(string, mgl32.Vec3) {}
func (p *fakeProgram) SetVec4(string, mgl32.Vec4) {}
func (p *fakeProgram) SetMat2(string, mgl32.Mat2) {}
func (p *fakeProgram) SetMat3(string, mgl32.Mat3) {}
func (p *fakeProgram) SetMat4(string, mgl32.Mat4) {}

type fakeMesh struct{ released bool }

func (m *fakeMesh) VertexCount() int { return 36 }
func (m *fakeMesh) Release() { m.released = true }

type fakeTarget struct {
	lightType light.LightType
	released  bool
}

func (t *fakeTarget) LightType() light.LightType { return t.lightType }
func (t *fakeTarget) Size() (int, int) { return 640, 640 }
func (t *fakeTarget) Release() { t.released = true }

// fakeRenderer records setup and frame calls in order.
type fakeRenderer struct {
	calls      []string
	programs   map[string]renderer.Program
	compiled   map[string]int
	compileErr error
	beginErrs  []error
	resized    [2]int
	mesh       *fakeMesh
	target     *fakeTarget
}

var _ renderer.Renderer = &fakeRenderer{}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		programs: make(map[string]renderer.Program),
		compiled: make(map[string]int),
	}
}

func (r *fakeRenderer) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *fakeRenderer) Backend() renderer.RendererBackendType { return renderer.BackendTypeGL }
func (r *fakeRenderer) Info() renderer.BackendInfo { return renderer.BackendInfo{} }

func (r *fakeRenderer) NewProgram(key string, src shader.Source) (renderer.Program, error) {
	if r.compileErr != nil {
		return nil, r.compileErr
	}
	r.record("program %s", key)
	r.compiled[key]++
	p := &fakeProgram{key: key}
	r.programs[key] = p
	return p, nil
}

func (r *fakeRenderer) Program(key string) renderer.Program {
	return r.programs[key]
}

func (r *fakeRenderer) UploadMesh(m model.Model) (renderer.Mesh, error) {
	r.record("upload %s", m.Name())
	r.mesh = &fakeMesh{}
	return r.mesh, nil
}

func (r *fakeRenderer) NewShadowTarget(lightType light.LightType, width, height int) (renderer.ShadowTarget, error) {
	r.record("target %s %dx%d", lightType, width, height)
	r.target = &fakeTarget{lightType: lightType}
	return r.target, nil
}

func (r *fakeRenderer) ClipCorrection(renderer.ClipSpace) mgl32.Mat4 { return mgl32.Ident4() }

func (r *fakeRenderer) BeginFrame() error {
	r.record("begin frame")
	if len(r.beginErrs) > 0 {
		err := r.beginErrs[0]
		r.beginErrs = r.beginErrs[1:]
		return err
	}
	return nil
}

func (r *fakeRenderer) BeginShadowPass(renderer.ShadowTarget) error {
	r.record("shadow")
	return nil
}

func (r *fakeRenderer) EndShadowPass() error {
	r.record("/shadow")
	return nil
}

func (r *fakeRenderer) BeginScenePass(renderer.ShadowTarget, [4]float32) error {
	r.record("scene")
	return nil
}

func (r *fakeRenderer) EndScenePass() error {
	r.record("/scene")
	return nil
}

func (r *fakeRenderer) Draw(p renderer.Program, m renderer.Mesh) error {
	r.record("draw %s", p.Key())
	return nil
}

func (r *fakeRenderer) EndFrame() error {
	r.record("present")
	return nil
}

func (r *fakeRenderer) Resize(width, height int) { r.resized = [2]int{width, height} }
func (r *fakeRenderer) Release() {}

type fakeLoader struct {
	loads []shader.Paths
	err   error
}

func (l *fakeLoader) Load(ctx context.Context, paths shader.Paths) (shader.Source, error) {
	l.loads = append(l.loads, paths)
	if l.err != nil {
		return shader.Source{}, l.err
	}
	return shader.Source{Paths: paths, Vertex: "v", Fragment: "f"}, nil
}

func (l *fakeLoader) LoadAll(ctx context.Context, programs map[string]shader.Paths) (map[string]shader.Source, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make(map[string]shader.Source, len(programs))
	for key, p := range programs {
		out[key] = shader.Source{Paths: p, Vertex: "v", Fragment: "f"}
	}
	return out, nil
}

type fakeWatcher struct {
	files  []string
	events chan string
	errors chan error
	closed bool
}

func (w *fakeWatcher) Events() <-chan string { return w.events }
func (w *fakeWatcher) Errors() <-chan error { return w.errors }

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}
