package shader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assetDir = filepath.Join("..", "..", "..", "examples", "assets", "shaders")

func readAsset(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(assetDir, name))
	require.NoError(t, err)
	return string(data)
}

func TestWGSLAssets(t *testing.T) {
	tests := []struct {
		file     string
		depth    DepthTexture
		fragment string
		size     uint64
		fields   map[string]uint64
	}{
		{
			file:     "wgsl/point_depth.wgsl",
			depth:    DepthTextureNone,
			fragment: "fs_main",
			size:     480,
			fields:   map[string]uint64{"modelMat": 0, "shadowMatrices[5]": 384, "lightPos": 448, "far_plane": 460, "face": 464},
		},
		{
			file:     "wgsl/point_lit.wgsl",
			depth:    DepthTextureCube,
			fragment: "fs_main",
			size:     240,
			fields:   map[string]uint64{"projMat": 128, "lightPos": 192, "far_plane": 204, "diffuseColour": 208, "emissiveColour": 224},
		},
		{
			file:   "wgsl/directional_depth.wgsl",
			depth:  DepthTextureNone,
			size:   128,
			fields: map[string]uint64{"modelMat": 0, "lightSpaceMatrix": 64},
		},
		{
			file:     "wgsl/directional_lit.wgsl",
			depth:    DepthTexture2D,
			fragment: "fs_main",
			size:     304,
			fields:   map[string]uint64{"lightSpaceMatrix": 192, "lightPos": 256, "diffuseColour": 272, "emissiveColour": 288},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src := readAsset(t, tt.file)
			assert.Equal(t, tt.depth, ParseDepthTexture(src))
			assert.Equal(t, "vs_main", ParseEntryPoint(src, StageVertex))
			assert.Equal(t, tt.fragment, ParseEntryPoint(src, StageFragment))

			layout, err := ParseUniformLayout(src)
			require.NoError(t, err)
			require.NotNil(t, layout)
			assert.Equal(t, "u", layout.Var)
			assert.Equal(t, tt.size, layout.Size)
			for name, offset := range tt.fields {
				f, ok := layout.Field(name)
				require.True(t, ok, name)
				assert.Equal(t, offset, f.Offset, name)
			}
		})
	}
}

func TestGLSLAssetsLoad(t *testing.T) {
	loader := NewLoader()
	point, err := loader.Load(context.Background(), Paths{
		Vertex:   "gl/point_depth.vert",
		Geometry: "gl/point_depth.geom",
		Fragment: "gl/point_depth.frag",
	}.Join(assetDir))
	require.NoError(t, err)
	assert.True(t, point.HasGeometry())
	assert.Contains(t, point.Stage(StageGeometry), "shadowMatrices[face]")

	directional, err := loader.Load(context.Background(), Paths{
		Vertex:   "gl/directional_lit.vert",
		Fragment: "gl/directional_lit.frag",
	}.Join(assetDir))
	require.NoError(t, err)
	assert.False(t, directional.HasGeometry())
	assert.Contains(t, directional.Stage(StageFragment), "sampler2D depthMap")
}
