package manifold

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// defaultSegments is the circular resolution of spheres, cylinders and cones.
const defaultSegments = 64

const backend = "manifold"

// columns flattens a row-major [L | t] matrix into the column-major order
// manifold_transform takes: the three columns of L, then t.
func columns(m [3][4]float64) [12]float64 {
	var out [12]float64
	for c := 0; c < 4; c++ {
		for r := 0; r < 3; r++ {
			out[c*3+r] = m[r][c]
		}
	}
	return out
}

// axisFrame returns the matrix taking the +Z axis through the origin onto ax.
func axisFrame(ax kernel.Axis) [3][4]float64 {
	d := ax.Dir.Unit()
	axis := kernel.UnitZ.Cross(d)
	var m [3][4]float64
	switch {
	case axis.Length() > 1e-12:
		m = kernel.Rotation(math.Atan2(axis.Length(), d.Z), axis).Matrix()
	case d.Z < 0:
		m = kernel.Rotation(math.Pi, kernel.UnitX).Matrix()
	default:
		m = kernel.Translation(kernel.Vec3{}).Matrix()
	}
	m[0][3], m[1][3], m[2][3] = ax.Origin.X, ax.Origin.Y, ax.Origin.Z
	return m
}

// computeFlatNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex. This is a fallback when MeshGL
// does not include normals in the vertex properties.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	at := func(i uint32) kernel.Vec3 {
		return kernel.Vec3{X: float64(vertices[i*3]), Y: float64(vertices[i*3+1]), Z: float64(vertices[i*3+2])}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := at(i0)
		// Unnormalized, so larger triangles weigh more.
		n := at(i1).Sub(a).Cross(at(i2).Sub(a))
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx*3+0] += float32(n.X)
			normals[idx*3+1] += float32(n.Y)
			normals[idx*3+2] += float32(n.Z)
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		n := kernel.Vec3{X: float64(normals[i]), Y: float64(normals[i+1]), Z: float64(normals[i+2])}
		if l := n.Length(); l > 1e-12 {
			normals[i], normals[i+1], normals[i+2] = float32(n.X/l), float32(n.Y/l), float32(n.Z/l)
		}
	}
	return normals
}
