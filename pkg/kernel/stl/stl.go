// Package stl writes kernel meshes as STL, the triangle soup format
// consumed by slicers and viewers. Binary files and reading go through
// sdfx's render package; sdfx has no ASCII writer, so that one lives here.
package stl

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// EncodeASCII writes m as an ASCII STL solid named name.
func EncodeASCII(w io.Writer, name string, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		n := facetNormal(t)
		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
		bw.WriteString("    outer loop\n")
		for _, v := range t {
			fmt.Fprintf(bw, "      vertex %e %e %e\n", v.X, v.Y, v.Z)
		}
		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// Triangles converts m to the triangle list sdfx's render package writes.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, m.TriangleCount())
	for i := range out {
		t := m.Triangle(i)
		out[i] = &sdf.Triangle3{
			v3.Vec{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
			v3.Vec{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
			v3.Vec{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
		}
	}
	return out
}

// WriteFile encodes m to path in the given mode. Errors are returned as
// *kernel.IOError.
func WriteFile(path string, m *kernel.Mesh, mode kernel.STLMode) error {
	if m == nil || m.IsEmpty() {
		return &kernel.IOError{Op: "write-stl", Path: path, Err: fmt.Errorf("%w: empty mesh", kernel.ErrInvalidShape)}
	}
	if mode == kernel.STLBinary {
		if err := render.SaveSTL(path, Triangles(m)); err != nil {
			return &kernel.IOError{Op: "write-stl", Path: path, Err: err}
		}
		return nil
	}
	return writeASCII(path, m)
}

func writeASCII(path string, m *kernel.Mesh) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &kernel.IOError{Op: "write-stl", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &kernel.IOError{Op: "write-stl", Path: path, Err: cerr}
		}
	}()

	name := m.PartName
	if name == "" {
		name = "csgstep"
	}
	if err := EncodeASCII(f, name, m); err != nil {
		return &kernel.IOError{Op: "write-stl", Path: path, Err: err}
	}
	return nil
}

// ReadFile loads an ASCII or binary STL file into a mesh with one vertex
// per triangle corner. Errors are returned as *kernel.IOError.
func ReadFile(path string) (*kernel.Mesh, error) {
	tris, err := render.LoadSTL(path)
	if err != nil {
		return nil, &kernel.IOError{Op: "read-stl", Path: path, Err: err}
	}
	m := &kernel.Mesh{}
	for _, t := range tris {
		m.AddTriangle(
			kernel.Vec3{X: t[0].X, Y: t[0].Y, Z: t[0].Z},
			kernel.Vec3{X: t[1].X, Y: t[1].Y, Z: t[1].Z},
			kernel.Vec3{X: t[2].X, Y: t[2].Y, Z: t[2].Z},
		)
	}
	return m, nil
}

// facetNormal recomputes the normal from the winding so that shared-vertex
// meshes with smoothed normals still export flat facets.
func facetNormal(t [3]kernel.Vec3) kernel.Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if l := n.Length(); l > 0 && !math.IsInf(l, 0) {
		return n.Scale(1 / l)
	}
	return kernel.Vec3{}
}
