package shader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestLoaderLoadsAllStages(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Vertex:   writeFile(t, dir, "depth.vert", "vertex"),
		Fragment: writeFile(t, dir, "depth.frag", "fragment"),
		Geometry: writeFile(t, dir, "depth.geom", "geometry"),
	}

	src, err := NewLoader(WithWorkers(2)).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "vertex", src.Vertex)
	assert.Equal(t, "fragment", src.Fragment)
	assert.Equal(t, "geometry", src.Geometry)
	assert.Equal(t, p, src.Paths)
}

func TestLoaderGeometryIsOptional(t *testing.T) {
	dir := t.TempDir()
	p := Paths{
		Vertex:   writeFile(t, dir, "lit.vert", "v"),
		Fragment: writeFile(t, dir, "lit.frag", "f"),
	}

	src, err := NewLoader().Load(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, src.HasGeometry())
}

func TestLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	var reads atomic.Int32
	read := func(path string) ([]byte, error) {
		reads.Add(1)
		return os.ReadFile(path)
	}
	p := Paths{
		Vertex:   writeFile(t, dir, "lit.vert", "v"),
		Fragment: filepath.Join(dir, "missing.frag"),
	}

	_, err := NewLoader(WithReadFile(read), WithRetries(5)).Load(context.Background(), p)
	require.ErrorIs(t, err, ErrShaderNotFound)
	assert.Contains(t, err.Error(), "fragment stage")
	// a missing file is permanent: one read per stage
	assert.Equal(t, int32(2), reads.Load())
}

func TestLoaderRetriesEmptyFile(t *testing.T) {
	var calls atomic.Int32
	read := func(path string) ([]byte, error) {
		if path == "lit.frag" && calls.Add(1) < 3 {
			return nil, nil
		}
		return []byte(path), nil
	}
	l := NewLoader(WithReadFile(read), WithRetries(5), WithInitialBackoff(time.Millisecond))

	src, err := l.Load(context.Background(), Paths{Vertex: "lit.vert", Fragment: "lit.frag"})
	require.NoError(t, err)
	assert.Equal(t, "lit.frag", src.Fragment)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoaderEmptyFileGivesUp(t *testing.T) {
	read := func(path string) ([]byte, error) {
		return []byte{}, nil
	}
	l := NewLoader(WithReadFile(read), WithRetries(1), WithInitialBackoff(time.Millisecond))

	_, err := l.Load(context.Background(), Paths{Vertex: "a", Fragment: "b"})
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	programs := map[string]Paths{
		"depth": {Vertex: writeFile(t, dir, "d.vert", "dv"), Fragment: writeFile(t, dir, "d.frag", "df")},
		"lit":   {Vertex: writeFile(t, dir, "l.vert", "lv"), Fragment: writeFile(t, dir, "l.frag", "lf")},
	}

	all, err := NewLoader().LoadAll(context.Background(), programs)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "df", all["depth"].Fragment)
	assert.Equal(t, "lv", all["lit"].Vertex)

	programs["broken"] = Paths{Vertex: "only-vertex"}
	_, err = NewLoader().LoadAll(context.Background(), programs)
	assert.ErrorIs(t, err, ErrMissingStage)
	assert.Contains(t, err.Error(), "program broken")
}

func TestLoaderReadErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	read := func(string) ([]byte, error) {
		return nil, boom
	}
	l := NewLoader(WithReadFile(read), WithRetries(0))

	_, err := l.Load(context.Background(), Paths{Vertex: "a", Fragment: "b"})
	assert.ErrorIs(t, err, boom)
}
