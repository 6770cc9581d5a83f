package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/config"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownProgram is returned by ReloadProgram for keys the engine did not load.
var ErrUnknownProgram = errors.New("unknown program")

// engine implements the Engine interface.
// Runs setup and the frame loop on the calling thread, which must own the window.
type engine struct {
	mu *sync.Mutex

	cfg    config.Config
	window window.Window
	r      renderer.Renderer
	loader shader.Loader
	logger common.Logger

	profiler   *profiler.Profiler
	newWatcher func(logger common.Logger, files ...string) (shader.Watcher, error)
	watcher    shader.Watcher

	now   func() time.Time
	sleep func(time.Duration)
	start time.Time

	frameInterval time.Duration
	clearColor    [4]float32

	lightType    light.LightType
	programPaths map[string]shader.Paths
	controller   camera.CameraController
	scene        scene.Scene
	mesh         renderer.Mesh
	target       renderer.ShadowTarget
	ready        bool

	frames      uint64
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
}

// Engine is the frame driver of the shadow demos.
// It loads the programs, builds the scene and runs the two-pass frame loop:
// update, shadow pass into the light's depth target, scene pass sampling it, present, throttle.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer the engine draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the scene, or nil before Setup.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Config returns the configuration the engine was created with.
	//
	// Returns:
	//   - config.Config: the configuration
	Config() config.Config

	// Setup loads the programs, uploads the cube, creates the shadow target and the scene,
	// writes the startup report and starts the shader watcher. Run calls it if needed.
	//
	// Parameters:
	//   - ctx: cancels shader loading
	//
	// Returns:
	//   - error: the first setup failure
	Setup(ctx context.Context) error

	// RenderFrame advances the scene by dt seconds and draws one frame. A frame whose
	// surface texture is unavailable is skipped and not counted.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - error: any renderer error
	RenderFrame(dt float32) error

	// ReloadProgram reads a program's files again and replaces it in the renderer.
	// The previous program stays active if loading or compiling fails.
	//
	// Parameters:
	//   - ctx: cancels shader loading
	//   - key: ProgramDepth or ProgramLit
	//
	// Returns:
	//   - error: ErrUnknownProgram, or the load or compile failure
	ReloadProgram(ctx context.Context, key string) error

	// Frames returns the number of frames drawn so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// Run sets up the engine if needed and runs the frame loop until the window closes,
	// ctx is cancelled or Quit is called. Resources created by Setup are released on return.
	//
	// Parameters:
	//   - ctx: stops the loop when done
	//
	// Returns:
	//   - error: setup or frame failure; nil on a normal stop
	Run(ctx context.Context) error

	// Quit stops the frame loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine drawing into win with r.
// The renderer must have been created for win; both stay owned by the caller.
//
// Parameters:
//   - win: the window
//   - r: the renderer
//   - cfg: the validated demo configuration
//   - options: functional options for engine configuration (logger, clock, loader, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(win window.Window, r renderer.Renderer, cfg config.Config, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		cfg:         cfg,
		window:      win,
		r:           r,
		newWatcher:  shader.NewWatcher,
		now:         time.Now,
		sleep:       time.Sleep,
		quitChannel: make(chan struct{}),
	}
	if cfg.Frame.TargetFPS > 0 {
		e.frameInterval = time.Duration(float64(time.Second) / cfg.Frame.TargetFPS)
	}

	for _, opt := range options {
		opt(e)
	}

	if e.logger == nil {
		e.logger = common.NewDefaultLogger("engine", cfg.Debug)
	}
	if e.loader == nil {
		e.loader = shader.NewLoader(shader.WithLogger(e.logger))
	}
	if e.start.IsZero() {
		e.start = e.now()
	}
	if e.profiler == nil {
		opts := []profiler.ProfilerBuilderOption{
			profiler.WithClock(e.now),
			profiler.WithInterval(time.Duration(cfg.Frame.FPSIntervalSeconds * float64(time.Second))),
			profiler.WithReportCallback(e.onReport),
			profiler.WithMemoryStats(cfg.Debug),
		}
		if cfg.Stats.Enabled {
			opts = append(opts, profiler.WithStatsFile(cfg.Stats.File))
		}
		e.profiler = profiler.NewProfiler(opts...)
	}

	e.controller = camera.NewCameraController(camera.WithSpeed(cfg.Camera.Speed))
	e.window.SetKeyDownCallback(e.keyDown)
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetResizeCallback(func(width, height int) {
		e.r.Resize(width, height)
	})

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.r
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) keyDown(keyCode uint32) {
	if keyCode == common.KeyEsc {
		e.Quit()
		return
	}
	e.controller.KeyDown(keyCode)
}

func (e *engine) onReport(r profiler.Report) {
	e.window.SetTitle(fmt.Sprintf("FPS: %d", r.Frames))
	if err := e.profiler.StatsError(); err != nil {
		e.logger.Warnf("%v", err)
	}
}

func (e *engine) Setup(ctx context.Context) error {
	if e.ready {
		return nil
	}

	lightType, err := light.ParseLightType(e.cfg.Mode)
	if err != nil {
		return err
	}
	e.lightType = lightType

	dir, err := filepath.Abs(e.cfg.Shaders.Dir)
	if err != nil {
		return fmt.Errorf("resolve shader dir: %w", err)
	}
	e.programPaths = make(map[string]shader.Paths)
	for key, p := range ProgramPaths(e.r.Backend(), lightType) {
		e.programPaths[key] = p.Join(dir)
	}

	sources, err := e.loader.LoadAll(ctx, e.programPaths)
	if err != nil {
		return fmt.Errorf("load shaders: %w", err)
	}
	for _, key := range common.SortedKeys(sources) {
		if _, err := e.r.NewProgram(key, sources[key]); err != nil {
			return err
		}
	}

	mesh, err := e.r.UploadMesh(model.NewCube())
	if err != nil {
		return err
	}
	e.mesh = mesh

	lc := e.cfg.Light
	l := light.NewLight(lightType,
		light.WithPosition(lc.Position[0], lc.Position[1], lc.Position[2]),
		light.WithUp(lc.Up[0], lc.Up[1], lc.Up[2]),
		light.WithPlanes(lc.Near, lc.Far),
		light.WithHalfExtent(lc.HalfExtent),
		light.WithShadowSize(lc.ShadowWidth, lc.ShadowHeight),
	)
	target, err := e.r.NewShadowTarget(lightType, lc.ShadowWidth, lc.ShadowHeight)
	if err != nil {
		return err
	}
	e.target = target

	cc := e.cfg.Camera
	cam := camera.NewCamera(
		camera.WithDistance(cc.Distance),
		camera.WithFov(mgl32.DegToRad(cc.FovDegrees)),
		camera.WithPlanes(cc.Near, cc.Far),
		camera.WithController(e.controller),
	)
	e.scene = scene.NewScene(cam, l, mesh, scene.WithName(e.cfg.Mode))

	if e.cfg.Stats.Enabled {
		took := e.now().Sub(e.start)
		if err := profiler.WriteStartupReport(e.cfg.Stats.File, took); err != nil {
			return err
		}
		e.logger.Infof("Time taken: %d ms", took.Milliseconds())
	}

	if e.cfg.Shaders.HotReload {
		var files []string
		for _, p := range e.programPaths {
			files = append(files, p.Files()...)
		}
		w, err := e.newWatcher(e.logger, files...)
		if err != nil {
			e.logger.Warnf("shader hot reload disabled: %v", err)
		} else {
			e.watcher = w
		}
	}

	e.ready = true
	return nil
}

func (e *engine) RenderFrame(dt float32) error {
	depth := e.r.Program(ProgramDepth)
	lit := e.r.Program(ProgramLit)
	if depth == nil || lit == nil {
		return fmt.Errorf("%w: programs not loaded", ErrUnknownProgram)
	}

	e.scene.Update(dt)

	if err := e.r.BeginFrame(); err != nil {
		if errors.Is(err, renderer.ErrSurfaceUnavailable) {
			e.logger.Debugf("skipping frame: %v", err)
			return nil
		}
		return fmt.Errorf("begin frame: %w", err)
	}

	if err := e.r.BeginShadowPass(e.target); err != nil {
		return err
	}
	if err := e.scene.Draw(e.r, depth, renderer.PassShadow); err != nil {
		return err
	}
	if err := e.r.EndShadowPass(); err != nil {
		return err
	}

	if err := e.r.BeginScenePass(e.target, e.clearColor); err != nil {
		return err
	}
	if err := e.scene.Draw(e.r, lit, renderer.PassScene); err != nil {
		return err
	}
	if err := e.r.EndScenePass(); err != nil {
		return err
	}

	if err := e.r.EndFrame(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}

	e.mu.Lock()
	e.frames++
	e.mu.Unlock()
	return nil
}

func (e *engine) ReloadProgram(ctx context.Context, key string) error {
	paths, ok := e.programPaths[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, key)
	}
	src, err := e.loader.Load(ctx, paths)
	if err != nil {
		return fmt.Errorf("reload %s: %w", key, err)
	}
	if _, err := e.r.NewProgram(key, src); err != nil {
		return fmt.Errorf("reload %s: %w", key, err)
	}
	return nil
}

// reloadChanged drains the watcher and rebuilds every program whose files changed.
// Failures are logged and the previous program keeps drawing.
func (e *engine) reloadChanged(ctx context.Context) {
	if e.watcher == nil {
		return
	}

	changed := make(map[string]struct{})
drain:
	for {
		select {
		case file, ok := <-e.watcher.Events():
			if !ok {
				e.watcher = nil
				break drain
			}
			for key, p := range e.programPaths {
				if p.Contains(file) {
					changed[key] = struct{}{}
				}
			}
		case err, ok := <-e.watcher.Errors():
			if ok {
				e.logger.Warnf("shader watcher: %v", err)
			}
		default:
			break drain
		}
	}

	for _, key := range common.SortedKeys(changed) {
		if err := e.ReloadProgram(ctx, key); err != nil {
			e.logger.Errorf("%v", err)
		}
	}
}

func (e *engine) Run(ctx context.Context) error {
	defer e.release()

	if err := e.Setup(ctx); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	e.profiler.Reset()
	lastFrame := e.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.quitChannel:
			return nil
		default:
		}
		if !e.window.IsRunning() {
			return nil
		}

		e.window.PollEvents()

		now := e.now()
		dt := now.Sub(lastFrame)
		lastFrame = now

		e.reloadChanged(ctx)
		if err := e.RenderFrame(float32(dt.Seconds())); err != nil {
			return err
		}
		e.profiler.Tick()

		if e.frameInterval > 0 && dt < e.frameInterval {
			e.sleep(e.frameInterval - dt)
		}
	}
}

// release frees what Setup created. The renderer and window belong to the caller.
func (e *engine) release() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			e.logger.Warnf("close shader watcher: %v", err)
		}
		e.watcher = nil
	}
	if e.target != nil {
		e.target.Release()
		e.target = nil
	}
	if e.mesh != nil {
		e.mesh.Release()
		e.mesh = nil
	}
	e.ready = false
}
