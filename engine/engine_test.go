package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/config"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	Engine
	win    *fakeWindow
	r      *fakeRenderer
	loader *fakeLoader
	clock  *fakeClock
	cfg    config.Config
}

func newTestEngine(t *testing.T, frames int, cfg config.Config, options ...EngineBuilderOption) *testEngine {
	t.Helper()
	cfg.Backend = config.BackendGL
	cfg.Stats.File = filepath.Join(t.TempDir(), "fps.txt")
	cfg.Shaders.Dir = t.TempDir()

	te := &testEngine{
		win:    &fakeWindow{maxPolls: frames},
		r:      newFakeRenderer(),
		loader: &fakeLoader{},
		clock:  newFakeClock(),
		cfg:    cfg,
	}
	opts := append([]EngineBuilderOption{
		WithLogger(common.NewNopLogger()),
		WithLoader(te.loader),
		WithClock(te.clock.now, te.clock.sleep),
	}, options...)
	te.Engine = NewEngine(te.win, te.r, cfg, opts...)
	return te
}

func frameCalls(program string) []string {
	calls := []string{"begin frame", "shadow"}
	for i := 0; i < 3; i++ {
		calls = append(calls, "draw depth")
	}
	calls = append(calls, "/shadow", "scene")
	for i := 0; i < 3; i++ {
		calls = append(calls, "draw "+program)
	}
	return append(calls, "/scene", "present")
}

func TestRunDrawsTwoPassFrames(t *testing.T) {
	te := newTestEngine(t, 2, config.Default())

	require.NoError(t, te.Run(context.Background()))

	want := []string{"program depth", "program lit", "upload cube", "target point 640x640"}
	want = append(want, frameCalls("lit")...)
	want = append(want, frameCalls("lit")...)
	assert.Equal(t, want, te.r.calls)
	assert.Equal(t, uint64(2), te.Frames())

	data, err := os.ReadFile(te.cfg.Stats.File)
	require.NoError(t, err)
	assert.Equal(t, "Time taken: 0\n", string(data))

	assert.True(t, te.r.mesh.released)
	assert.True(t, te.r.target.released)
}

func TestRunDirectionalMode(t *testing.T) {
	te := newTestEngine(t, 1, config.DefaultDirectional())

	require.NoError(t, te.Run(context.Background()))
	assert.Contains(t, te.r.calls, "target directional 640x640")
	assert.Equal(t, "directional", te.Scene().Name())
	assert.Equal(t, light.LightTypeDirectional, te.Scene().Light().Type())
}

func TestRunThrottlesToTargetInterval(t *testing.T) {
	te := newTestEngine(t, 4, config.Default())

	require.NoError(t, te.Run(context.Background()))

	// dt alternates between 0 and the 20ms that was slept
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 20 * time.Millisecond}, te.clock.sleeps)
	cube1, _ := te.Scene().Angles()
	assert.InDelta(t, 0.5*0.04, cube1, 1e-5)
}

func TestRunUncapped(t *testing.T) {
	cfg := config.Default()
	cfg.Frame.TargetFPS = 0
	te := newTestEngine(t, 3, cfg)

	require.NoError(t, te.Run(context.Background()))
	assert.Empty(t, te.clock.sleeps)
	assert.Equal(t, uint64(3), te.Frames())
}

func TestRunReportsFPS(t *testing.T) {
	cfg := config.Default()
	cfg.Frame.FPSIntervalSeconds = 0.04
	te := newTestEngine(t, 4, cfg)

	require.NoError(t, te.Run(context.Background()))
	assert.Equal(t, "FPS: 4", te.win.Title())

	data, err := os.ReadFile(te.cfg.Stats.File)
	require.NoError(t, err)
	assert.Equal(t, "Time taken: 0\n4\n", string(data))
}

func TestStartupReportMeasuresFromStart(t *testing.T) {
	clock := newFakeClock()
	start := clock.t.Add(-1500 * time.Millisecond)
	te := newTestEngine(t, 0, config.Default(), WithStartTime(start), WithClock(clock.now, clock.sleep))

	require.NoError(t, te.Run(context.Background()))
	data, err := os.ReadFile(te.cfg.Stats.File)
	require.NoError(t, err)
	assert.Equal(t, "Time taken: 1500\n", string(data))
}

func TestStatsDisabledWritesNothing(t *testing.T) {
	cfg := config.Default()
	cfg.Stats.Enabled = false
	te := newTestEngine(t, 1, cfg)

	require.NoError(t, te.Run(context.Background()))
	_, err := os.Stat(te.cfg.Stats.File)
	assert.True(t, os.IsNotExist(err))
}

func TestStopConditions(t *testing.T) {
	tests := []struct {
		name   string
		onPoll func(te *testEngine, cancel context.CancelFunc, n int)
		frames uint64
	}{
		{
			name:   "quit",
			onPoll: func(te *testEngine, _ context.CancelFunc, n int) { te.Quit() },
			frames: 1,
		},
		{
			name: "escape key",
			onPoll: func(te *testEngine, _ context.CancelFunc, n int) {
				te.win.keyDown(common.KeyEsc)
			},
			frames: 1,
		},
		{
			name: "context cancelled",
			onPoll: func(te *testEngine, cancel context.CancelFunc, n int) {
				if n == 2 {
					cancel()
				}
			},
			frames: 2,
		},
		{
			name: "window closed",
			onPoll: func(te *testEngine, _ context.CancelFunc, n int) {
				if n == 3 {
					te.win.RequestClose()
				}
			},
			frames: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEngine(t, 10, config.Default())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			te.win.onPoll = func(n int) { tt.onPoll(te, cancel, n) }

			require.NoError(t, te.Run(ctx))
			assert.Equal(t, tt.frames, te.Frames())
		})
	}
}

func TestQuitTwice(t *testing.T) {
	te := newTestEngine(t, 1, config.Default())
	assert.NotPanics(t, func() {
		te.Quit()
		te.Quit()
	})
	require.NoError(t, te.Run(context.Background()))
	assert.Zero(t, te.Frames())
}

func TestArrowKeysRotateCamera(t *testing.T) {
	te := newTestEngine(t, 4, config.Default())
	te.win.onPoll = func(n int) {
		if n == 1 {
			te.win.keyDown(common.KeyRight)
		}
	}

	require.NoError(t, te.Run(context.Background()))
	assert.InDelta(t, 0.04, te.Scene().Camera().AngleY(), 1e-5)
	assert.Zero(t, te.Scene().Camera().AngleX())
}

func TestResizeReachesRenderer(t *testing.T) {
	te := newTestEngine(t, 0, config.Default())
	te.win.resize(800, 600)
	assert.Equal(t, [2]int{800, 600}, te.r.resized)
}

func TestSetupFailures(t *testing.T) {
	t.Run("compile", func(t *testing.T) {
		te := newTestEngine(t, 5, config.Default())
		te.r.compileErr = shader.ErrCompile

		err := te.Run(context.Background())
		require.ErrorIs(t, err, shader.ErrCompile)
		assert.Zero(t, te.win.polls)
	})

	t.Run("load", func(t *testing.T) {
		te := newTestEngine(t, 5, config.Default())
		te.loader.err = shader.ErrShaderNotFound

		err := te.Run(context.Background())
		require.ErrorIs(t, err, shader.ErrShaderNotFound)
		assert.Contains(t, err.Error(), "load shaders")
	})

	t.Run("mode", func(t *testing.T) {
		cfg := config.Default()
		cfg.Mode = "spot"
		te := newTestEngine(t, 5, cfg)

		assert.Error(t, te.Run(context.Background()))
	})
}

func TestRenderFrameNeedsPrograms(t *testing.T) {
	te := newTestEngine(t, 0, config.Default())
	assert.ErrorIs(t, te.RenderFrame(0.02), ErrUnknownProgram)
}

func TestReloadProgram(t *testing.T) {
	te := newTestEngine(t, 0, config.Default())
	ctx := context.Background()
	require.NoError(t, te.Setup(ctx))
	first := te.r.Program(ProgramLit)

	require.NoError(t, te.ReloadProgram(ctx, ProgramLit))
	assert.Equal(t, 2, te.r.compiled[ProgramLit])
	assert.Equal(t, 1, te.r.compiled[ProgramDepth])
	require.Len(t, te.loader.loads, 1)
	assert.True(t, strings.HasSuffix(te.loader.loads[0].Vertex, filepath.Join("gl", "point_lit.vert")))
	assert.NotSame(t, first, te.r.Program(ProgramLit))

	assert.ErrorIs(t, te.ReloadProgram(ctx, "shadow"), ErrUnknownProgram)

	current := te.r.Program(ProgramLit)
	te.loader.err = shader.ErrEmptySource
	assert.ErrorIs(t, te.ReloadProgram(ctx, ProgramLit), shader.ErrEmptySource)
	assert.Same(t, current, te.r.Program(ProgramLit))
}

func TestHotReloadRebuildsChangedProgram(t *testing.T) {
	w := &fakeWatcher{events: make(chan string, 4), errors: make(chan error, 1)}
	cfg := config.Default()
	cfg.Shaders.HotReload = true
	te := newTestEngine(t, 2, cfg, WithWatcherFactory(func(_ common.Logger, files ...string) (shader.Watcher, error) {
		w.files = files
		return w, nil
	}))
	te.win.onPoll = func(n int) {
		if n != 1 {
			return
		}
		for _, f := range w.files {
			if strings.HasSuffix(f, "point_depth.geom") {
				w.events <- f
			}
		}
	}

	require.NoError(t, te.Run(context.Background()))
	assert.Len(t, w.files, 5)
	assert.Equal(t, 2, te.r.compiled[ProgramDepth])
	assert.Equal(t, 1, te.r.compiled[ProgramLit])
	assert.True(t, w.closed)
}

func TestProgramPaths(t *testing.T) {
	glPoint := ProgramPaths(renderer.BackendTypeGL, light.LightTypePoint)
	assert.Equal(t, shader.Paths{
		Vertex:   "gl/point_depth.vert",
		Fragment: "gl/point_depth.frag",
		Geometry: "gl/point_depth.geom",
	}, glPoint[ProgramDepth])
	assert.Equal(t, "gl/point_lit.frag", glPoint[ProgramLit].Fragment)

	glDirectional := ProgramPaths(renderer.BackendTypeGL, light.LightTypeDirectional)
	assert.Empty(t, glDirectional[ProgramDepth].Geometry)
	assert.Equal(t, "gl/directional_lit.vert", glDirectional[ProgramLit].Vertex)

	wgslPoint := ProgramPaths(renderer.BackendTypeWGPU, light.LightTypePoint)
	assert.Equal(t, shader.Paths{Vertex: "wgsl/point_depth.wgsl", Fragment: "wgsl/point_depth.wgsl"}, wgslPoint[ProgramDepth])
	assert.Equal(t, "wgsl/point_lit.wgsl", wgslPoint[ProgramLit].Fragment)
}

func TestProgramPathsExistInAssets(t *testing.T) {
	dir := filepath.Join("..", "examples", "assets", "shaders")
	for _, backend := range []renderer.RendererBackendType{renderer.BackendTypeGL, renderer.BackendTypeWGPU} {
		for _, lt := range []light.LightType{light.LightTypePoint, light.LightTypeDirectional} {
			for key, paths := range ProgramPaths(backend, lt) {
				for _, f := range paths.Join(dir).Files() {
					_, err := os.Stat(f)
					assert.NoError(t, err, "%s %s", lt, key)
				}
			}
		}
	}
}

func TestRunSkipsFrameWhenSurfaceUnavailable(t *testing.T) {
	te := newTestEngine(t, 3, config.Default())
	te.r.beginErrs = []error{fmt.Errorf("%w: outdated", renderer.ErrSurfaceUnavailable)}

	require.NoError(t, te.Run(context.Background()))

	want := []string{"program depth", "program lit", "upload cube", "target point 640x640", "begin frame"}
	want = append(want, frameCalls("lit")...)
	want = append(want, frameCalls("lit")...)
	assert.Equal(t, want, te.r.calls)
	assert.Equal(t, uint64(2), te.Frames())
}

func TestRunStopsOnOtherBeginFrameErrors(t *testing.T) {
	te := newTestEngine(t, 3, config.Default())
	te.r.beginErrs = []error{errors.New("device lost")}

	err := te.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "device lost")
	assert.Equal(t, uint64(0), te.Frames())
}

func TestRunReportsFPSWithMemoryStats(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true
	cfg.Frame.FPSIntervalSeconds = 0.04
	te := newTestEngine(t, 4, cfg)

	require.NoError(t, te.Run(context.Background()))
	assert.Equal(t, "FPS: 4", te.win.Title())
}
