package shader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(data []byte, offset uint64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func newTestBlock(t *testing.T) *UniformBlock {
	t.Helper()
	layout, err := ParseUniformLayout(`
struct U {
    model: mat4x4<f32>,
    normalMat: mat3x3<f32>,
    tint: vec4<f32>,
    offset: vec2<f32>,
    near: f32,
    flag: u32,
    rot: mat2x2<f32>,
}
@group(0) @binding(0) var<uniform> u: U;
`)
	require.NoError(t, err)
	return NewUniformBlock(layout)
}

func TestUniformBlockSetters(t *testing.T) {
	b := newTestBlock(t)
	assert.Len(t, b.Bytes(), int(b.Layout().Size))

	assert.True(t, b.SetMat4("model", mgl32.Translate3D(1, 2, 3)))
	assert.Equal(t, float32(1), floatAt(b.Bytes(), 48))
	assert.Equal(t, float32(3), floatAt(b.Bytes(), 56))

	assert.True(t, b.SetVec4("tint", mgl32.Vec4{0.1, 0.2, 0.3, 0.4}))
	f, _ := b.Layout().Field("tint")
	assert.Equal(t, float32(0.4), floatAt(b.Bytes(), f.Offset+12))

	assert.True(t, b.SetFloat("near", 0.1))
	f, _ = b.Layout().Field("near")
	assert.Equal(t, float32(0.1), floatAt(b.Bytes(), f.Offset))

	assert.True(t, b.SetBool("flag", true))
	f, _ = b.Layout().Field("flag")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b.Bytes()[f.Offset:]))

	assert.True(t, b.SetVec2("offset", mgl32.Vec2{5, 6}))
	f, _ = b.Layout().Field("offset")
	assert.Equal(t, float32(6), floatAt(b.Bytes(), f.Offset+4))

	assert.True(t, b.SetMat2("rot", mgl32.Mat2{1, 2, 3, 4}))
	f, ok := b.Layout().Field("rot")
	require.True(t, ok)
	assert.Equal(t, uint64(144), f.Offset)
	for i, want := range []float32{1, 2, 3, 4} {
		assert.Equal(t, want, floatAt(b.Bytes(), f.Offset+uint64(i)*4))
	}
}

func TestUniformBlockMat3ColumnsArePadded(t *testing.T) {
	b := newTestBlock(t)
	m := mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.True(t, b.SetMat3("normalMat", m))

	f, _ := b.Layout().Field("normalMat")
	assert.Equal(t, float32(4), floatAt(b.Bytes(), f.Offset+16))
	assert.Equal(t, float32(9), floatAt(b.Bytes(), f.Offset+40))
}

func TestUniformBlockIgnoresUnknownAndMismatched(t *testing.T) {
	b := newTestBlock(t)
	before := append([]byte(nil), b.Bytes()...)

	assert.False(t, b.SetFloat("missing", 1))
	assert.False(t, b.SetVec3("tint", mgl32.Vec3{1, 1, 1}))
	assert.False(t, b.SetMat4("near", mgl32.Ident4()))
	assert.Equal(t, before, b.Bytes())
}

func TestUniformBlockSetIntOnFloatField(t *testing.T) {
	b := newTestBlock(t)
	require.True(t, b.SetInt("near", 3))
	f, _ := b.Layout().Field("near")
	assert.Equal(t, float32(3), floatAt(b.Bytes(), f.Offset))
}
