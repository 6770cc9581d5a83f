package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

// Program keys the engine registers with the renderer.
const (
	// ProgramDepth renders the shadow pass.
	ProgramDepth = "depth"

	// ProgramLit renders the scene pass.
	ProgramLit = "lit"
)

// ProgramPaths returns the stage files of the depth and lit programs for a backend and
// light type, relative to the shader directory. OpenGL programs live under gl/ with one
// file per stage; the point depth program adds a geometry stage. WebGPU programs live
// under wgsl/ with both entry points in one file.
//
// Parameters:
//   - backend: the renderer backend
//   - lightType: point or directional
//
// Returns:
//   - map[string]shader.Paths: paths keyed by ProgramDepth and ProgramLit
func ProgramPaths(backend renderer.RendererBackendType, lightType light.LightType) map[string]shader.Paths {
	prefix := lightType.String()

	if backend == renderer.BackendTypeGL {
		depth := shader.Paths{
			Vertex:   fmt.Sprintf("gl/%s_depth.vert", prefix),
			Fragment: fmt.Sprintf("gl/%s_depth.frag", prefix),
		}
		if lightType == light.LightTypePoint {
			depth.Geometry = fmt.Sprintf("gl/%s_depth.geom", prefix)
		}
		return map[string]shader.Paths{
			ProgramDepth: depth,
			ProgramLit: {
				Vertex:   fmt.Sprintf("gl/%s_lit.vert", prefix),
				Fragment: fmt.Sprintf("gl/%s_lit.frag", prefix),
			},
		}
	}

	depth := fmt.Sprintf("wgsl/%s_depth.wgsl", prefix)
	lit := fmt.Sprintf("wgsl/%s_lit.wgsl", prefix)
	return map[string]shader.Paths{
		ProgramDepth: {Vertex: depth, Fragment: depth},
		ProgramLit:   {Vertex: lit, Fragment: lit},
	}
}
