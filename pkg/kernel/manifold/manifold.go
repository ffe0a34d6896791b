//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations.
//
// Manifold works on closed triangle meshes only: solids, booleans, affine
// transforms, meshing and STL are supported. Planar profiles, curves, sweeps,
// BRep topology, features and STEP report kernel.ErrUnsupported.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/stl"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Shape = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer.
type manifoldSolid struct {
	ptr  *C.ManifoldManifold
	kind kernel.ShapeKind
}

// Kind returns KindSolid, or KindCompound for grouped solids.
func (s *manifoldSolid) Kind() kernel.ShapeKind { return s.kind }

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr, kind: kernel.KindSolid}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Shape, op string) (*manifoldSolid, error) {
	ms, ok := s.(*manifoldSolid)
	if !ok || ms == nil {
		return nil, fmt.Errorf("manifold: %s: %w: unexpected handle %T", op, kernel.ErrInvalidShape, s)
	}
	return ms, nil
}

func invalid(op, format string, args ...any) error {
	return fmt.Errorf("manifold: %s: %w: %s", op, kernel.ErrInvalidShape, fmt.Sprintf(format, args...))
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct {
	segments int
}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{segments: defaultSegments}, nil
}

func (k *ManifoldKernel) transform(s *C.ManifoldManifold, m [3][4]float64) *C.ManifoldManifold {
	c := columns(m)
	alloc := C.manifold_alloc_manifold()
	return C.manifold_transform(alloc, s,
		C.double(c[0]), C.double(c[1]), C.double(c[2]),
		C.double(c[3]), C.double(c[4]), C.double(c[5]),
		C.double(c[6]), C.double(c[7]), C.double(c[8]),
		C.double(c[9]), C.double(c[10]), C.double(c[11]),
	)
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Sphere creates a sphere centered at the origin.
func (k *ManifoldKernel) Sphere(r float64) (kernel.Shape, error) {
	if r <= 0 {
		return nil, invalid("Sphere", "radius %g", r)
	}
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_sphere(alloc, C.double(r), C.int(k.segments))), nil
}

// Box creates an axis-aligned box with its minimum corner at origin.
func (k *ManifoldKernel) Box(size, origin kernel.Vec3) (kernel.Shape, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, invalid("Box", "size %v", size)
	}
	alloc := C.manifold_alloc_manifold()
	cube := C.manifold_cube(alloc,
		C.double(size.X), C.double(size.Y), C.double(size.Z),
		C.int(0), // center=false
	)
	defer C.manifold_delete_manifold(cube)
	alloc = C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, cube,
		C.double(origin.X), C.double(origin.Y), C.double(origin.Z),
	)
	return newSolid(ptr), nil
}

// Cylinder creates a cylinder standing on ax.Origin along ax.Dir.
func (k *ManifoldKernel) Cylinder(ax kernel.Axis, r, h float64) (kernel.Shape, error) {
	return k.Cone(ax, r, r, h)
}

// Cone creates a truncated cone with radius r1 at ax.Origin and r2 at
// height h along ax.Dir.
func (k *ManifoldKernel) Cone(ax kernel.Axis, r1, r2, h float64) (kernel.Shape, error) {
	if h <= 0 || r1 < 0 || r2 < 0 || (r1 == 0 && r2 == 0) || ax.Dir.IsZero() {
		return nil, invalid("Cone", "r1=%g r2=%g h=%g dir=%v", r1, r2, h, ax.Dir)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(h),
		C.double(r1), // radius_low
		C.double(r2), // radius_high
		C.int(k.segments),
		C.int(0), // center=false
	)
	defer C.manifold_delete_manifold(ptr)
	return newSolid(k.transform(ptr, axisFrame(ax))), nil
}

func (k *ManifoldKernel) Wedge(float64, float64, float64, float64, float64, float64, float64) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Wedge")
}

func (k *ManifoldKernel) Polygon([]kernel.Vec2) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Polygon")
}

func (k *ManifoldKernel) Circle(float64) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Circle")
}

func (k *ManifoldKernel) Ellipse(float64, float64) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Ellipse")
}

// ---------------------------------------------------------------------------
// Curves, sweeps, topology, features: meshes have none of these
// ---------------------------------------------------------------------------

func (k *ManifoldKernel) Segment(kernel.Vec3, kernel.Vec3) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Segment")
}

func (k *ManifoldKernel) Arc(kernel.Vec3, kernel.Vec3, kernel.Vec3) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Arc")
}

func (k *ManifoldKernel) Spline([]kernel.Vec3) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Spline")
}

func (k *ManifoldKernel) Wire(...kernel.Shape) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Wire")
}

func (k *ManifoldKernel) Face(kernel.Shape) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Face")
}

func (k *ManifoldKernel) Prism(kernel.Shape, kernel.Vec3) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Prism")
}

func (k *ManifoldKernel) Revolve(kernel.Shape, kernel.Axis, float64) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Revolve")
}

func (k *ManifoldKernel) Pipe(kernel.Shape, kernel.Shape) (kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Pipe")
}

func (k *ManifoldKernel) Edges(kernel.Shape) ([]kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Edges")
}

func (k *ManifoldKernel) Faces(kernel.Shape) ([]kernel.Face, error) {
	return nil, kernel.Unsupported(backend, "Faces")
}

func (k *ManifoldKernel) NewFillet(kernel.Shape) (kernel.FilletBuilder, error) {
	return nil, kernel.Unsupported(backend, "Fillet")
}

func (k *ManifoldKernel) NewChamfer(kernel.Shape) (kernel.ChamferBuilder, error) {
	return nil, kernel.Unsupported(backend, "Chamfer")
}

func (k *ManifoldKernel) NewDraft(kernel.Shape) (kernel.DraftBuilder, error) {
	return nil, kernel.Unsupported(backend, "Draft")
}

func (k *ManifoldKernel) ReadSTEP(path string) (kernel.Shape, error) {
	return nil, &kernel.IOError{Op: "read-step", Path: path, Err: kernel.Unsupported(backend, "ReadSTEP")}
}

func (k *ManifoldKernel) WriteSTEP(_ kernel.Shape, path string, _ kernel.STEPOptions) error {
	return &kernel.IOError{Op: "write-step", Path: path, Err: kernel.Unsupported(backend, "WriteSTEP")}
}

// ---------------------------------------------------------------------------
// Boolean operations and transforms
// ---------------------------------------------------------------------------

// Fuse returns the boolean union of two solids.
func (k *ManifoldKernel) Fuse(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := pair("Fuse", a, b)
	if err != nil {
		return nil, err
	}
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_union(alloc, sa.ptr, sb.ptr)), nil
}

// Cut returns the boolean difference (a minus b).
func (k *ManifoldKernel) Cut(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := pair("Cut", a, b)
	if err != nil {
		return nil, err
	}
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_difference(alloc, sa.ptr, sb.ptr)), nil
}

// Common returns the boolean intersection of two solids.
func (k *ManifoldKernel) Common(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := pair("Common", a, b)
	if err != nil {
		return nil, err
	}
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_intersection(alloc, sa.ptr, sb.ptr)), nil
}

func pair(op string, a, b kernel.Shape) (*manifoldSolid, *manifoldSolid, error) {
	sa, err := unwrap(a, op)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b, op)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

// VolumeUnion folds the solids through pairwise unions.
func (k *ManifoldKernel) VolumeUnion(shapes []kernel.Shape) (kernel.Shape, error) {
	return k.fold("VolumeUnion", shapes, kernel.KindSolid)
}

// Compound groups solids. A mesh has no notion of separate parts, so the
// parts are unioned and the result is tagged as a compound.
func (k *ManifoldKernel) Compound(shapes []kernel.Shape) (kernel.Shape, error) {
	return k.fold("Compound", shapes, kernel.KindCompound)
}

func (k *ManifoldKernel) fold(op string, shapes []kernel.Shape, kind kernel.ShapeKind) (kernel.Shape, error) {
	if len(shapes) == 0 {
		return nil, invalid(op, "no arguments")
	}
	acc, err := unwrap(shapes[0], op)
	if err != nil {
		return nil, err
	}
	for _, s := range shapes[1:] {
		next, err := unwrap(s, op)
		if err != nil {
			return nil, err
		}
		alloc := C.manifold_alloc_manifold()
		acc = newSolid(C.manifold_union(alloc, acc.ptr, next.ptr))
	}
	if len(shapes) == 1 {
		// Copy so the caller's handle keeps its kind.
		alloc := C.manifold_alloc_manifold()
		acc = newSolid(C.manifold_translate(alloc, acc.ptr, 0, 0, 0))
	}
	acc.kind = kind
	return acc, nil
}

// Apply maps the solid through op.
func (k *ManifoldKernel) Apply(s kernel.Shape, op kernel.Affine) (kernel.Shape, error) {
	ms, err := unwrap(s, "Apply")
	if err != nil {
		return nil, err
	}
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	out := newSolid(k.transform(ms.ptr, op.Matrix()))
	out.kind = ms.kind
	return out, nil
}

// ---------------------------------------------------------------------------
// Meshing
// ---------------------------------------------------------------------------

// Mesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Manifold solids are already meshes, so the deflection options
// are not consulted. Vertex positions and normals are interleaved in MeshGL;
// this method separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) Mesh(s kernel.Shape, _ kernel.MeshOptions) (*kernel.Mesh, error) {
	ms, err := unwrap(s, "Mesh")
	if err != nil {
		return nil, err
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// The first 3 properties are always position; normals, when present,
	// follow at indices 3, 4, 5.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}

	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}

	if !hasNormals {
		normals = computeFlatNormals(vertices, indices)
	}
	kernel.Logger().Debug("manifold: mesh", "vertices", numVert, "triangles", numTri)

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// WriteSTL meshes s and writes it with package stl.
func (k *ManifoldKernel) WriteSTL(s kernel.Shape, path string, opts kernel.STLOptions) error {
	opts = opts.WithDefaults()
	m, err := k.Mesh(s, opts.MeshOptions)
	if err != nil {
		return err
	}
	return stl.WriteFile(path, m, opts.Mode)
}
