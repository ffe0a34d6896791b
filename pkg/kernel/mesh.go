package kernel

// Mesh is a triangle mesh produced by Kernel.Mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which design part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddTriangle appends an unshared triangle with a flat normal computed
// from its winding.
func (m *Mesh) AddTriangle(a, b, c Vec3) {
	n := b.Sub(a).Cross(c.Sub(a)).Unit()
	base := uint32(m.VertexCount())
	for _, v := range [3]Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) [3]Vec3 {
	var t [3]Vec3
	for j := 0; j < 3; j++ {
		k := int(m.Indices[i*3+j]) * 3
		t[j] = Vec3{X: float64(m.Vertices[k]), Y: float64(m.Vertices[k+1]), Z: float64(m.Vertices[k+2])}
	}
	return t
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero bounds.
func (m *Mesh) Bounds() (min, max [3]float64) {
	for i := 0; i < m.VertexCount(); i++ {
		for j := 0; j < 3; j++ {
			v := float64(m.Vertices[i*3+j])
			if i == 0 || v < min[j] {
				min[j] = v
			}
			if i == 0 || v > max[j] {
				max[j] = v
			}
		}
	}
	return min, max
}
