package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// defaultUniformSlots is the number of per-draw uniform snapshots a WebGPU frame can hold.
// The point shadow frame uses 3 draws x 6 faces + 3 scene draws.
const defaultUniformSlots = 64

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Ignored by the GL backend.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithUniformSlots sets how many draws a WebGPU frame may issue.
//
// Parameters:
//   - slots: the per-frame draw capacity (ignored if below 1)
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity option to a renderer
func WithUniformSlots(slots int) RendererBuilderOption {
	return func(r *renderer) {
		if slots > 0 {
			r.uniformSlots = slots
		}
	}
}

// WithLogger sets the logger for device info and program reloads.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger common.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
