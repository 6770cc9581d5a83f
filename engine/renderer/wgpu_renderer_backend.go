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
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// wgpuUniformStride is the size of one per-draw uniform slot. It is a multiple of the
	// 256 byte dynamic offset alignment and bounds the size of a program's uniform struct.
	wgpuUniformStride = 1024

	wgpuSceneDepthFormat  = wgpu.TextureFormatDepth24Plus
	wgpuShadowDepthFormat = wgpu.TextureFormatDepth32Float
)

// wgpuDraw is one recorded draw; passes are encoded when they end.
type wgpuDraw struct {
	pipeline    *wgpu.RenderPipeline
	buffer      *wgpu.Buffer
	vertexCount uint32
	offset      uint32
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	logger common.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	presentMode      wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	width            int
	height           int
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	// Group 0 of every pipeline: one uniform buffer addressed with a dynamic offset per draw.
	uniformLayout  *wgpu.BindGroupLayout
	uniformBuffer  *wgpu.Buffer
	uniformGroup   *wgpu.BindGroup
	uniformStaging []byte
	uniformSlots   int
	usedSlots      int

	// Group 1 of scene pipelines: the shadow texture and its sampler, per light type.
	shadowLayouts map[light.LightType]*wgpu.BindGroupLayout

	// Frame state, valid between BeginFrame and EndFrame.
	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Pass state, valid between Begin*Pass and End*Pass.
	pass       Pass
	passTarget *wgpuShadowTarget
	clear      wgpu.Color
	layerDraws [][]wgpuDraw
	sceneDraws []wgpuDraw
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, uniformSlots int, logger common.Logger) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("wgpu backend needs a window surface")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		logger:        logger,
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		uniformSlots:  uniformSlots,
		shadowLayouts: make(map[light.LightType]*wgpu.BindGroupLayout),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.initUniforms(); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

// initUniforms creates the dynamic-offset uniform buffer shared by every program.
func (b *wgpuRendererBackendImpl) initUniforms() error {
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Uniforms Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform bind group layout: %w", err)
	}
	b.uniformLayout = layout

	size := uint64(b.uniformSlots) * wgpuUniformStride
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniforms Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}
	b.uniformBuffer = buf
	b.uniformStaging = make([]byte, size)

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Uniforms Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpuUniformStride,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform bind group: %w", err)
	}
	b.uniformGroup = group
	return nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) Info() BackendInfo {
	info := b.adapter.GetInfo()
	return BackendInfo{
		Backend:         BackendTypeWGPU,
		Vendor:          info.VendorName,
		Renderer:        info.Name,
		Version:         fmt.Sprintf("%v %s", info.BackendType, info.DriverDescription),
		ShadingLanguage: "WGSL",
	}
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configureSurface(width, height)
}

// configureSurface (re)creates the swapchain and the scene depth buffer. Callers hold b.mu.
func (b *wgpuRendererBackendImpl) configureSurface(width, height int) {
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.width, b.height = width, height

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuSceneDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		b.logger.Errorf("depth texture %dx%d: %v", width, height, err)
		return
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		b.logger.Errorf("depth texture view: %v", err)
		return
	}
	b.depthTexture, b.depthTextureView = depthTexture, view
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) CompileProgram(key string, src shader.Source) (Program, error) {
	if src.HasGeometry() {
		return nil, fmt.Errorf("%w: WGSL has no geometry stage", shader.ErrCompile)
	}

	layout, err := shader.ParseUniformLayout(src.Vertex)
	if err == nil && layout == nil {
		layout, err = shader.ParseUniformLayout(src.Fragment)
	}
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: %v", shader.ErrCompile, err)
	case layout == nil:
		return nil, fmt.Errorf("%w: no var<uniform> declared", shader.ErrCompile)
	case layout.Group != 0 || layout.Binding != 0:
		return nil, fmt.Errorf("%w: uniform %s must be bound at @group(0) @binding(0)", shader.ErrCompile, layout.Var)
	case layout.Size > wgpuUniformStride:
		return nil, fmt.Errorf("%w: uniform struct %s is %d bytes, limit %d", shader.ErrCompile, layout.Struct, layout.Size, wgpuUniformStride)
	}

	vertexEntry := shader.ParseEntryPoint(src.Vertex, shader.StageVertex)
	if vertexEntry == "" {
		return nil, fmt.Errorf("%w: no @vertex entry point", shader.ErrCompile)
	}
	fragmentEntry := shader.ParseEntryPoint(src.Fragment, shader.StageFragment)

	p := &wgpuProgram{
		key:   key,
		block: shader.NewUniformBlock(layout),
		pass:  PassShadow,
	}
	switch shader.ParseDepthTexture(src.Fragment) {
	case shader.DepthTextureCube:
		p.pass, p.sampling = PassScene, light.LightTypePoint
	case shader.DepthTexture2D:
		p.pass, p.sampling = PassScene, light.LightTypeDirectional
	}
	if p.pass == PassScene && fragmentEntry == "" {
		return nil, fmt.Errorf("%w: no @fragment entry point", shader.ErrCompile)
	}

	vs, err := b.createModule(key+" vertex", src.Vertex)
	if err != nil {
		return nil, err
	}
	p.modules = append(p.modules, vs)
	fs := vs
	if src.Fragment != src.Vertex {
		if fs, err = b.createModule(key+" fragment", src.Fragment); err != nil {
			p.Release()
			return nil, err
		}
		p.modules = append(p.modules, fs)
	}

	if p.pipeline, err = b.createPipeline(p, vs, vertexEntry, fs, fragmentEntry); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (b *wgpuRendererBackendImpl) createModule(label, code string) (*wgpu.ShaderModule, error) {
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shader.ErrCompile, label, err)
	}
	return m, nil
}

// createPipeline builds the render pipeline for the pass the program was written for.
// Shadow pipelines render depth only into Depth32Float; scene pipelines add the surface
// colour target and the shadow sampling group. Culling is off in both, matching the
// unculled cubes of the GL backend and the mirrored cube faces.
func (b *wgpuRendererBackendImpl) createPipeline(p *wgpuProgram, vs *wgpu.ShaderModule, vertexEntry string, fs *wgpu.ShaderModule, fragmentEntry string) (*wgpu.RenderPipeline, error) {
	bindGroupLayouts := []*wgpu.BindGroupLayout{b.uniformLayout}
	if p.pass == PassScene {
		shadowLayout, err := b.shadowLayout(p.sampling)
		if err != nil {
			return nil, err
		}
		bindGroupLayouts = append(bindGroupLayouts, shadowLayout)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.key,
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pipeline layout: %v", shader.ErrLink, err)
	}
	defer pipelineLayout.Release()

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key + " " + p.pass.String() + " Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexEntry,
			Buffers:    wgpuVertexLayouts(),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpuSceneDepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	}

	if p.pass == PassShadow {
		desc.DepthStencil.Format = wgpuShadowDepthFormat
		if fragmentEntry != "" {
			desc.Fragment = &wgpu.FragmentState{
				Module:     fs,
				EntryPoint: fragmentEntry,
			}
		}
	} else {
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shader.ErrLink, desc.Label, err)
	}
	return created, nil
}

// wgpuVertexLayouts describes model.GPUVertex.
func wgpuVertexLayouts() []wgpu.VertexBufferLayout {
	attributes := make([]wgpu.VertexAttribute, 0, len(model.VertexAttributes))
	for _, a := range model.VertexAttributes {
		attributes = append(attributes, wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x3,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		})
	}
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: model.VertexStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attributes,
		},
	}
}

// shadowLayout returns the group 1 layout for sampling a light's shadow target.
func (b *wgpuRendererBackendImpl) shadowLayout(lightType light.LightType) (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l, ok := b.shadowLayouts[lightType]; ok {
		return l, nil
	}

	viewDimension := wgpu.TextureViewDimension2D
	samplerType := wgpu.SamplerBindingTypeComparison
	if lightType == light.LightTypePoint {
		viewDimension = wgpu.TextureViewDimensionCube
		samplerType = wgpu.SamplerBindingTypeNonFiltering
	}

	l, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: lightType.String() + " Shadow Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeDepth,
					ViewDimension: viewDimension,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: samplerType,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shadow bind group layout: %w", err)
	}
	b.shadowLayouts[lightType] = l
	return l, nil
}

func (b *wgpuRendererBackendImpl) UploadMesh(label string, vertexData []byte, vertexCount int) (Mesh, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) == 0 {
		return nil, errors.New("mesh has no vertices")
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, vertexData)

	return &wgpuMesh{label: label, buffer: buf, vertexCount: vertexCount}, nil
}

func (b *wgpuRendererBackendImpl) CreateShadowTarget(lightType light.LightType, width, height int) (ShadowTarget, error) {
	layout, err := b.shadowLayout(lightType)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layers := 1
	sampleDimension := wgpu.TextureViewDimension2D
	if lightType == light.LightTypePoint {
		layers = light.CubeFaceCount
		sampleDimension = wgpu.TextureViewDimensionCube
	}

	t := &wgpuShadowTarget{lightType: lightType, width: width, height: height}
	t.texture, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: lightType.String() + " Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuShadowDepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow depth texture: %w", err)
	}

	for layer := range layers {
		view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("Shadow Layer %d", layer),
			Format:          wgpuShadowDepthFormat,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(layer),
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if err != nil {
			t.Release()
			return nil, fmt.Errorf("failed to create shadow layer view: %w", err)
		}
		t.layerViews = append(t.layerViews, view)
	}

	t.sampleView, err = t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Shadow Sample View",
		Format:          wgpuShadowDepthFormat,
		Dimension:       sampleDimension,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(layers),
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to create shadow sample view: %w", err)
	}

	if t.sampler, err = b.createShadowSampler(lightType); err != nil {
		t.Release()
		return nil, err
	}

	t.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  lightType.String() + " Shadow Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: t.sampleView},
			{Binding: 1, Sampler: t.sampler},
		},
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to create shadow bind group: %w", err)
	}

	b.logger.Infof("%s shadow target %dx%d, %d layer(s)", lightType, width, height, layers)
	return t, nil
}

// createShadowSampler returns a nearest sampler for the point cubemap (distances are
// compared in the shader) or a comparison sampler for the directional map.
func (b *wgpuRendererBackendImpl) createShadowSampler(lightType light.LightType) (*wgpu.Sampler, error) {
	desc := &wgpu.SamplerDescriptor{
		Label:         "Shadow Point Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	}
	if lightType == light.LightTypeDirectional {
		desc.Label = "Shadow Comparison Sampler"
		desc.MagFilter = wgpu.FilterModeLinear
		desc.MinFilter = wgpu.FilterModeLinear
		desc.Compare = wgpu.CompareFunctionLess
	}

	samp, err := b.device.CreateSampler(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow sampler: %w", err)
	}
	return samp, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		// the binding hides the acquisition status, so every failure is treated as an
		// outdated or lost surface
		if b.width > 0 && b.height > 0 {
			b.configureSurface(b.width, b.height)
		}
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	b.usedSlots = 0
	return nil
}

func (b *wgpuRendererBackendImpl) BeginShadowPass(target ShadowTarget) error {
	t, ok := target.(*wgpuShadowTarget)
	if !ok {
		return fmt.Errorf("%w: shadow target %T", ErrForeignResource, target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pass = PassShadow
	b.passTarget = t
	b.layerDraws = make([][]wgpuDraw, len(t.layerViews))
	return nil
}

func (b *wgpuRendererBackendImpl) EndShadowPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for layer, view := range b.passTarget.layerViews {
		pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: nil,
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore, // sampled by the scene pass
				DepthClearValue: 1.0,
			},
		})
		b.encodeDraws(pass, b.layerDraws[layer], nil)
		pass.End()
	}
	b.layerDraws = nil
	return nil
}

func (b *wgpuRendererBackendImpl) BeginScenePass(shadow ShadowTarget, clear [4]float32) error {
	t, ok := shadow.(*wgpuShadowTarget)
	if !ok {
		return fmt.Errorf("%w: shadow target %T", ErrForeignResource, shadow)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.pass = PassScene
	b.passTarget = t
	b.clear = wgpu.Color{R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3])}
	b.sceneDraws = b.sceneDraws[:0]
	return nil
}

func (b *wgpuRendererBackendImpl) EndScenePass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.depthTextureView == nil {
		return errors.New("scene depth texture missing")
	}
	pass := b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.frameView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: b.clear,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	b.encodeDraws(pass, b.sceneDraws, b.passTarget.bindGroup)
	pass.End()
	return nil
}

func (b *wgpuRendererBackendImpl) encodeDraws(pass *wgpu.RenderPassEncoder, draws []wgpuDraw, shadowGroup *wgpu.BindGroup) {
	for _, d := range draws {
		pass.SetPipeline(d.pipeline)
		pass.SetBindGroup(0, b.uniformGroup, []uint32{d.offset})
		if shadowGroup != nil {
			pass.SetBindGroup(1, shadowGroup, nil)
		}
		pass.SetVertexBuffer(0, d.buffer, 0, wgpu.WholeSize)
		pass.Draw(d.vertexCount, 1, 0, 0)
	}
}

// Draw snapshots the program's uniforms and records the draw. In a point light shadow
// pass the draw is recorded once per cube face with the "face" uniform set to the layer.
func (b *wgpuRendererBackendImpl) Draw(p Program, m Mesh) error {
	wp, ok := p.(*wgpuProgram)
	if !ok {
		return fmt.Errorf("%w: program %T", ErrForeignResource, p)
	}
	wm, ok := m.(*wgpuMesh)
	if !ok {
		return fmt.Errorf("%w: mesh %T", ErrForeignResource, m)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if wp.pass != b.pass {
		return fmt.Errorf("program %s was built for the %s pass, not %s", wp.key, wp.pass, b.pass)
	}

	draw := wgpuDraw{pipeline: wp.pipeline, buffer: wm.buffer, vertexCount: uint32(wm.vertexCount)}

	if b.pass == PassScene {
		if wp.sampling != b.passTarget.lightType {
			return fmt.Errorf("program %s samples a %s shadow target, bound target is %s", wp.key, wp.sampling, b.passTarget.lightType)
		}
		offset, err := b.stageUniforms(wp.block.Bytes())
		if err != nil {
			return err
		}
		draw.offset = offset
		b.sceneDraws = append(b.sceneDraws, draw)
		return nil
	}

	for layer := range b.layerDraws {
		if len(b.layerDraws) > 1 {
			wp.block.SetInt("face", int32(layer))
		}
		offset, err := b.stageUniforms(wp.block.Bytes())
		if err != nil {
			return err
		}
		draw.offset = offset
		b.layerDraws[layer] = append(b.layerDraws[layer], draw)
	}
	return nil
}

// stageUniforms copies data into the next free uniform slot and returns its offset.
func (b *wgpuRendererBackendImpl) stageUniforms(data []byte) (uint32, error) {
	if b.usedSlots >= b.uniformSlots {
		return 0, fmt.Errorf("%w: %d draws per frame", ErrUniformCapacity, b.uniformSlots)
	}
	offset := b.usedSlots * wgpuUniformStride
	copy(b.uniformStaging[offset:offset+wgpuUniformStride], data)
	b.usedSlots++
	return uint32(offset), nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	defer b.releaseFrame()

	if b.usedSlots > 0 {
		b.queue.WriteBuffer(b.uniformBuffer, 0, b.uniformStaging[:b.usedSlots*wgpuUniformStride])
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) releaseFrame() {
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	b.passTarget = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrame()
	for _, l := range b.shadowLayouts {
		l.Release()
	}
	b.shadowLayouts = nil
	if b.uniformGroup != nil {
		b.uniformGroup.Release()
	}
	if b.uniformBuffer != nil {
		b.uniformBuffer.Release()
	}
	if b.uniformLayout != nil {
		b.uniformLayout.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
