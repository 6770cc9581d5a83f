package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the engine logger. Defaults to a DefaultLogger with the "engine" prefix.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger common.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithLoader replaces the shader loader.
//
// Parameters:
//   - loader: the loader used by Setup and ReloadProgram
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(loader shader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = loader
	}
}

// WithProfiler replaces the FPS profiler. The default reports every
// frame.fps_interval_seconds, appends to the stats file and sets the window title.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithClock replaces time.Now and time.Sleep for the frame delta and the throttle.
//
// Parameters:
//   - now: the clock
//   - sleep: the sleep function
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time, sleep func(time.Duration)) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithStartTime sets the time the startup report measures from. Defaults to the
// time NewEngine was called.
//
// Parameters:
//   - start: the process start time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStartTime(start time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.start = start
	}
}

// WithClearColor sets the scene pass clear colour. Defaults to transparent black.
//
// Parameters:
//   - rgba: the clear colour
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(rgba [4]float32) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = rgba
	}
}

// WithWatcherFactory replaces shader.NewWatcher for hot reload.
//
// Parameters:
//   - factory: creates a watcher for the program files
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatcherFactory(factory func(logger common.Logger, files ...string) (shader.Watcher, error)) EngineBuilderOption {
	return func(e *engine) {
		e.newWatcher = factory
	}
}
