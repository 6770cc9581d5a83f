package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Mode names accepted in the mode field.
const (
	ModePoint       = "point"
	ModeDirectional = "directional"
)

// Backend names accepted in the backend field.
const (
	BackendWGPU = "wgpu"
	BackendGL   = "gl"
)

// Config is the full demo configuration. Keys missing from a TOML file keep the
// value of the base config they are decoded over.
type Config struct {
	Mode    string        `toml:"mode"`
	Backend string        `toml:"backend"`
	Debug   bool          `toml:"debug"`
	Window  WindowConfig  `toml:"window"`
	Camera  CameraConfig  `toml:"camera"`
	Light   LightConfig   `toml:"light"`
	Frame   FrameConfig   `toml:"frame"`
	Stats   StatsConfig   `toml:"stats"`
	Shaders ShadersConfig `toml:"shaders"`
	GPU     GPUConfig     `toml:"gpu"`
}

// WindowConfig configures the glfw window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

// CameraConfig configures the orbit camera and its keyboard controller.
type CameraConfig struct {
	Distance   float32 `toml:"distance"`
	FovDegrees float32 `toml:"fov_degrees"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	Speed      float32 `toml:"speed"`
}

// LightConfig configures the shadow-casting light and its shadow target.
type LightConfig struct {
	Position     [3]float32 `toml:"position"`
	Up           [3]float32 `toml:"up"`
	Near         float32    `toml:"near"`
	Far          float32    `toml:"far"`
	HalfExtent   float32    `toml:"half_extent"`
	ShadowWidth  int        `toml:"shadow_width"`
	ShadowHeight int        `toml:"shadow_height"`
}

// FrameConfig configures the frame loop.
type FrameConfig struct {
	TargetFPS          float64 `toml:"target_fps"`
	FPSIntervalSeconds float64 `toml:"fps_interval_seconds"`
}

// StatsConfig configures the fps stats file.
type StatsConfig struct {
	Enabled bool   `toml:"enabled"`
	File    string `toml:"file"`
}

// ShadersConfig locates shader sources.
type ShadersConfig struct {
	Dir       string `toml:"dir"`
	HotReload bool   `toml:"hot_reload"`
}

// GPUConfig tunes the WebGPU backend. The GL backend ignores it.
type GPUConfig struct {
	// Software requests the fallback (CPU) adapter.
	Software bool `toml:"software"`
	// UniformSlots is the number of draws one frame may issue.
	UniformSlots int `toml:"uniform_slots"`
}

// Default returns the configuration of the point light demo.
//
// Returns:
//   - Config: defaults for a 640x640 window, 640x640 shadow map and a 50 fps throttle
func Default() Config {
	return Config{
		Mode:    ModePoint,
		Backend: BackendWGPU,
		Window: WindowConfig{
			Title:  "My Window!!!",
			Width:  640,
			Height: 640,
		},
		Camera: CameraConfig{
			Distance:   3.5,
			FovDegrees: 45,
			Near:       0.1,
			Far:        10,
			Speed:      1,
		},
		Light: LightConfig{
			Position:     [3]float32{-1, 4, 1},
			Up:           [3]float32{0, 3, 0},
			Near:         0.1,
			Far:          10,
			HalfExtent:   10,
			ShadowWidth:  640,
			ShadowHeight: 640,
		},
		Frame: FrameConfig{
			TargetFPS:          50,
			FPSIntervalSeconds: 1,
		},
		Stats: StatsConfig{
			Enabled: true,
			File:    "fps_pointshadow.txt",
		},
		Shaders: ShadersConfig{
			Dir: "examples/assets/shaders",
		},
		GPU: GPUConfig{
			UniformSlots: 64,
		},
	}
}

// DefaultDirectional returns the configuration of the directional light demo.
//
// Returns:
//   - Config: Default() switched to the directional light
func DefaultDirectional() Config {
	c := Default()
	c.Mode = ModeDirectional
	c.Light.Up = [3]float32{0, 1, 0}
	c.Stats.File = "fps_shadowmapping.txt"
	return c
}

// Load decodes the TOML file at path over base and validates the result.
// An empty path returns base after validation. Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file path, or "" for none
//   - base: the configuration the file overrides
//
// Returns:
//   - Config: the merged configuration
//   - error: read, decode or validation failure
func Load(path string, base Config) (Config, error) {
	cfg := base
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return base, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(data, &cfg); err != nil {
			return base, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Decode strictly decodes TOML data into cfg.
//
// Parameters:
//   - data: the TOML document
//   - cfg: the configuration to decode into
//
// Returns:
//   - error: decode failure, including unknown keys
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Encode renders cfg as a TOML document.
//
// Parameters:
//   - cfg: the configuration to encode
//
// Returns:
//   - []byte: the TOML document
//   - error: encode failure
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate checks every field and normalizes the mode and backend names.
//
// Returns:
//   - error: an ErrInvalidConfig wrapped error naming the first bad field
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))

	switch {
	case c.Mode != ModePoint && c.Mode != ModeDirectional:
		return fmt.Errorf("%w: mode %q", ErrInvalidConfig, c.Mode)
	case c.Backend != BackendWGPU && c.Backend != BackendGL:
		return fmt.Errorf("%w: backend %q", ErrInvalidConfig, c.Backend)
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Light.ShadowWidth <= 0 || c.Light.ShadowHeight <= 0:
		return fmt.Errorf("%w: shadow size %dx%d", ErrInvalidConfig, c.Light.ShadowWidth, c.Light.ShadowHeight)
	case c.Light.HalfExtent <= 0:
		return fmt.Errorf("%w: light half extent %v", ErrInvalidConfig, c.Light.HalfExtent)
	case degenerateLightView(c.Light.Position, c.Light.Up):
		return fmt.Errorf("%w: light up %v is zero or parallel to position %v", ErrInvalidConfig, c.Light.Up, c.Light.Position)
	case c.Light.Near <= 0 || c.Light.Far <= c.Light.Near:
		return fmt.Errorf("%w: light planes %v..%v", ErrInvalidConfig, c.Light.Near, c.Light.Far)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera planes %v..%v", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: camera fov %v", ErrInvalidConfig, c.Camera.FovDegrees)
	case c.Frame.TargetFPS < 0:
		return fmt.Errorf("%w: target fps %v", ErrInvalidConfig, c.Frame.TargetFPS)
	case c.Frame.FPSIntervalSeconds <= 0:
		return fmt.Errorf("%w: fps interval %v", ErrInvalidConfig, c.Frame.FPSIntervalSeconds)
	case c.Stats.Enabled && c.Stats.File == "":
		return fmt.Errorf("%w: stats enabled without a file", ErrInvalidConfig)
	case c.GPU.UniformSlots <= 0:
		return fmt.Errorf("%w: uniform slots %d", ErrInvalidConfig, c.GPU.UniformSlots)
	}
	return nil
}

// degenerateLightView reports whether lookAt(position, origin, up) has no valid basis:
// the light sits on the origin, up is zero, or up points along the view direction.
func degenerateLightView(position, up [3]float32) bool {
	dir := mgl32.Vec3(position)
	u := mgl32.Vec3(up)
	if dir.Len() < 1e-6 || u.Len() < 1e-6 {
		return true
	}
	return dir.Normalize().Cross(u.Normalize()).Len() < 1e-4
}
