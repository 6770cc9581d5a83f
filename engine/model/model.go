package model

// Model is a static, non-indexed triangle mesh drawn with a single call.
type Model interface {
	// Name returns the key the mesh is uploaded under.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns the triangle list, three vertices per triangle.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// VertexCount returns the number of vertices to draw.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Bytes returns the packed vertex data for GPU upload.
	//
	// Returns:
	//   - []byte: VertexCount()*VertexStride bytes
	Bytes() []byte
}

type modelImpl struct {
	name     string
	size     float32
	vertices []GPUVertex
}

var _ Model = &modelImpl{}

// cubeFace describes one face of the cube by its normal and two in-plane axes
// chosen so that u × v = normal (counter-clockwise winding seen from outside).
type cubeFace struct {
	normal [3]float32
	u      [3]float32
	v      [3]float32
}

var cubeFaces = [6]cubeFace{
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
}

// NewCube builds a cube centred at the origin, one unit per side unless WithSize is given.
// Each face is two triangles with its own normals: 36 vertices in total.
//
// Parameters:
//   - options: functional options to configure the cube
//
// Returns:
//   - Model: the cube mesh
func NewCube(options ...ModelBuilderOption) Model {
	m := &modelImpl{
		name: "cube",
		size: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	m.vertices = buildCube(m.size / 2)
	return m
}

func (m *modelImpl) Name() string {
	return m.name
}

func (m *modelImpl) Vertices() []GPUVertex {
	return m.vertices
}

func (m *modelImpl) VertexCount() int {
	return len(m.vertices)
}

func (m *modelImpl) Bytes() []byte {
	buf := make([]byte, 0, len(m.vertices)*VertexStride)
	for i := range m.vertices {
		buf = append(buf, m.vertices[i].Marshal()...)
	}
	return buf
}

// buildCube emits the four corners of every face as two triangles: 0,1,2 and 0,2,3.
func buildCube(h float32) []GPUVertex {
	vertices := make([]GPUVertex, 0, 36)
	for _, f := range cubeFaces {
		corner := func(su, sv float32) GPUVertex {
			var p [3]float32
			for i := 0; i < 3; i++ {
				p[i] = (f.normal[i] + su*f.u[i] + sv*f.v[i]) * h
			}
			return GPUVertex{Position: p, Normal: f.normal}
		}
		c0 := corner(-1, -1)
		c1 := corner(1, -1)
		c2 := corner(1, 1)
		c3 := corner(-1, 1)
		vertices = append(vertices, c0, c1, c2, c0, c2, c3)
	}
	return vertices
}
