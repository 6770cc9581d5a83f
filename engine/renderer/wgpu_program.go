package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// wgpuProgram stages uniform values on the CPU. Every draw copies the block into its
// own slot of the backend's dynamic-offset uniform buffer.
type wgpuProgram struct {
	key   string
	block *shader.UniformBlock

	// pass is the pass the pipeline was built for; sampling selects the scene pass bind group.
	pass     Pass
	sampling light.LightType
	pipeline *wgpu.RenderPipeline

	modules []*wgpu.ShaderModule
}

var _ Program = &wgpuProgram{}

func (p *wgpuProgram) Key() string {
	return p.key
}

func (p *wgpuProgram) HasUniform(name string) bool {
	_, ok := p.block.Layout().Field(name)
	return ok
}

func (p *wgpuProgram) SetBool(name string, value bool) {
	p.block.SetBool(name, value)
}

func (p *wgpuProgram) SetInt(name string, value int32) {
	p.block.SetInt(name, value)
}

func (p *wgpuProgram) SetFloat(name string, value float32) {
	p.block.SetFloat(name, value)
}

func (p *wgpuProgram) SetVec2(name string, v mgl32.Vec2) {
	p.block.SetVec2(name, v)
}

func (p *wgpuProgram) SetVec3(name string, v mgl32.Vec3) {
	p.block.SetVec3(name, v)
}

func (p *wgpuProgram) SetVec4(name string, v mgl32.Vec4) {
	p.block.SetVec4(name, v)
}

func (p *wgpuProgram) SetMat2(name string, m mgl32.Mat2) {
	p.block.SetMat2(name, m)
}

func (p *wgpuProgram) SetMat3(name string, m mgl32.Mat3) {
	p.block.SetMat3(name, m)
}

func (p *wgpuProgram) SetMat4(name string, m mgl32.Mat4) {
	p.block.SetMat4(name, m)
}

func (p *wgpuProgram) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	for _, m := range p.modules {
		m.Release()
	}
	p.modules = nil
}

type wgpuMesh struct {
	label       string
	buffer      *wgpu.Buffer
	vertexCount int
}

var _ Mesh = &wgpuMesh{}

func (m *wgpuMesh) VertexCount() int {
	return m.vertexCount
}

func (m *wgpuMesh) Release() {
	if m.buffer != nil {
		m.buffer.Release()
		m.buffer = nil
	}
}

// wgpuShadowTarget is a Depth32Float texture with one layer (directional) or six
// layers (point). Each layer is rendered through its own 2D view; the scene pass
// samples the whole texture through a 2D or cube view.
type wgpuShadowTarget struct {
	lightType light.LightType
	width     int
	height    int

	texture    *wgpu.Texture
	layerViews []*wgpu.TextureView
	sampleView *wgpu.TextureView
	sampler    *wgpu.Sampler
	bindGroup  *wgpu.BindGroup
}

var _ ShadowTarget = &wgpuShadowTarget{}

func (t *wgpuShadowTarget) LightType() light.LightType {
	return t.lightType
}

func (t *wgpuShadowTarget) Size() (width, height int) {
	return t.width, t.height
}

func (t *wgpuShadowTarget) Release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
		t.bindGroup = nil
	}
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
	if t.sampleView != nil {
		t.sampleView.Release()
		t.sampleView = nil
	}
	for _, v := range t.layerViews {
		v.Release()
	}
	t.layerViews = nil
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
