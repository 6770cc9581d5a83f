package shader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	p := Paths{Vertex: "depth.vert", Fragment: "depth.frag"}
	assert.NoError(t, p.Validate())
	assert.Equal(t, []string{"depth.vert", "depth.frag"}, p.Files())

	p.Geometry = "depth.geom"
	joined := p.Join("shaders")
	assert.Equal(t, filepath.Join("shaders", "depth.geom"), joined.Path(StageGeometry))
	assert.True(t, joined.Contains("shaders/./depth.frag"))
	assert.False(t, joined.Contains("shaders/lit.frag"))

	assert.ErrorIs(t, Paths{Fragment: "a"}.Validate(), ErrMissingStage)
	assert.ErrorIs(t, Paths{Vertex: "a"}.Validate(), ErrMissingStage)
	assert.Equal(t, "", Paths{Vertex: "a"}.Join("dir").Fragment)
}

func TestSourceStages(t *testing.T) {
	var s Source
	s.set(StageVertex, "v")
	s.set(StageFragment, "f")
	assert.Equal(t, "v", s.Stage(StageVertex))
	assert.Equal(t, "f", s.Stage(StageFragment))
	assert.False(t, s.HasGeometry())

	s.set(StageGeometry, "g")
	assert.True(t, s.HasGeometry())
	assert.Equal(t, "geometry", StageGeometry.String())
}
