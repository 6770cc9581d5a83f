package model

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// GPUVertex is the GPU-aligned representation of a single cube vertex.
// Matches the vertex input of every shader: location 0 position, location 1 normal.
// Size: 24 bytes, tightly packed.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: outward face normal (12 bytes)
}

// VertexStride is the byte distance between consecutive vertices.
const VertexStride = 24

// VertexAttribute describes one float vector inside GPUVertex.
type VertexAttribute struct {
	Location   uint32
	Offset     uint64
	Components int
}

// VertexAttributes lists the GPUVertex attributes in shader location order.
var VertexAttributes = []VertexAttribute{
	{Location: 0, Offset: 0, Components: 3},
	{Location: 1, Offset: 12, Components: 3},
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 24-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	return common.Float32Bytes(append(g.Position[:], g.Normal[:]...)...)
}
