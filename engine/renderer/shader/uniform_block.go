package shader

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformBlock is a CPU-side staging copy of a uniform struct.
// Setters write by field name following OpenGL semantics: unknown names and
// mismatched types are ignored and reported through the boolean result.
type UniformBlock struct {
	layout *UniformLayout
	data   []byte
}

// NewUniformBlock allocates a zeroed block for layout.
//
// Parameters:
//   - layout: the parsed uniform layout
//
// Returns:
//   - *UniformBlock: the block
func NewUniformBlock(layout *UniformLayout) *UniformBlock {
	return &UniformBlock{
		layout: layout,
		data:   make([]byte, layout.Size),
	}
}

// Layout returns the block's layout.
func (b *UniformBlock) Layout() *UniformLayout {
	return b.layout
}

// Bytes returns the staged bytes. The slice is reused; copy it before the next write
// if it must outlive the call.
func (b *UniformBlock) Bytes() []byte {
	return b.data
}

func (b *UniformBlock) slot(name string, kinds ...UniformKind) (UniformField, bool) {
	f, ok := b.layout.Field(name)
	if !ok {
		return UniformField{}, false
	}
	for _, k := range kinds {
		if f.Kind == k {
			return f, true
		}
	}
	return UniformField{}, false
}

func (b *UniformBlock) putFloats(offset uint64, values ...float32) {
	copy(b.data[offset:], common.Float32Bytes(values...))
}

// SetBool writes 1 or 0 into an i32 or u32 field.
func (b *UniformBlock) SetBool(name string, value bool) bool {
	var v int32
	if value {
		v = 1
	}
	return b.SetInt(name, v)
}

// SetInt writes into an i32 or u32 field, or converts to float for an f32 field.
func (b *UniformBlock) SetInt(name string, value int32) bool {
	f, ok := b.slot(name, UniformKindInt, UniformKindUint, UniformKindFloat)
	if !ok {
		return false
	}
	if f.Kind == UniformKindFloat {
		b.putFloats(f.Offset, float32(value))
		return true
	}
	binary.LittleEndian.PutUint32(b.data[f.Offset:], uint32(value))
	return true
}

// SetFloat writes into an f32 field.
func (b *UniformBlock) SetFloat(name string, value float32) bool {
	f, ok := b.slot(name, UniformKindFloat)
	if !ok {
		return false
	}
	b.putFloats(f.Offset, value)
	return true
}

// SetVec2 writes into a vec2<f32> field.
func (b *UniformBlock) SetVec2(name string, v mgl32.Vec2) bool {
	f, ok := b.slot(name, UniformKindVec2)
	if !ok {
		return false
	}
	b.putFloats(f.Offset, v[:]...)
	return true
}

// SetVec3 writes into a vec3<f32> field.
func (b *UniformBlock) SetVec3(name string, v mgl32.Vec3) bool {
	f, ok := b.slot(name, UniformKindVec3)
	if !ok {
		return false
	}
	b.putFloats(f.Offset, v[:]...)
	return true
}

// SetVec4 writes into a vec4<f32> field.
func (b *UniformBlock) SetVec4(name string, v mgl32.Vec4) bool {
	f, ok := b.slot(name, UniformKindVec4)
	if !ok {
		return false
	}
	b.putFloats(f.Offset, v[:]...)
	return true
}

// SetMat2 writes into a mat2x2<f32> field.
func (b *UniformBlock) SetMat2(name string, m mgl32.Mat2) bool {
	f, ok := b.slot(name, UniformKindMat2)
	if !ok {
		return false
	}
	// two vec2 columns packed back to back
	b.putFloats(f.Offset, m[:]...)
	return true
}

// SetMat3 writes into a mat3x3<f32> field, padding every column to 16 bytes.
func (b *UniformBlock) SetMat3(name string, m mgl32.Mat3) bool {
	f, ok := b.slot(name, UniformKindMat3)
	if !ok {
		return false
	}
	for col := 0; col < 3; col++ {
		b.putFloats(f.Offset+uint64(col)*16, m[col*3], m[col*3+1], m[col*3+2])
	}
	return true
}

// SetMat4 writes into a mat4x4<f32> field.
func (b *UniformBlock) SetMat4(name string, m mgl32.Mat4) bool {
	f, ok := b.slot(name, UniformKindMat4)
	if !ok {
		return false
	}
	copy(b.data[f.Offset:], common.Mat4Bytes(m))
	return true
}
