// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Signed distance fields carry no boundary topology, so Edges, Faces, the
// feature builders and STEP exchange report kernel.ErrUnsupported. Everything
// needed to build, combine, sweep and mesh solids is supported.
package sdfx

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/stl"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

const backend = "sdfx"

// Marching cubes resolution bounds along the longest bounding box side.
const (
	minMeshCells = 16
	maxMeshCells = 400
)

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Sphere creates a sphere centered at the origin.
func (k *SdfxKernel) Sphere(r float64) (kernel.Shape, error) {
	s, err := sdf.Sphere3D(r)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Sphere3D: %w", err)
	}
	return solid(s), nil
}

// Box creates a box with its minimum corner at origin.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(size, origin kernel.Vec3) (kernel.Shape, error) {
	s, err := sdf.Box3D(vec(size), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Box3D: %w", err)
	}
	m := sdf.Translate3d(vec(origin.Add(size.Scale(0.5))))
	return solid(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder of radius r standing on ax.Origin along ax.Dir.
func (k *SdfxKernel) Cylinder(ax kernel.Axis, r, h float64) (kernel.Shape, error) {
	if ax.Dir.IsZero() {
		return nil, invalid("Cylinder", "zero axis")
	}
	s, err := sdf.Cylinder3D(h, r, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Cylinder3D: %w", err)
	}
	return solid(sdf.Transform3D(s, onAxis(ax, h))), nil
}

// Cone creates a truncated cone with radius r1 at ax.Origin and r2 at
// height h along ax.Dir.
func (k *SdfxKernel) Cone(ax kernel.Axis, r1, r2, h float64) (kernel.Shape, error) {
	if ax.Dir.IsZero() {
		return nil, invalid("Cone", "zero axis")
	}
	s, err := sdf.Cone3D(h, r1, r2, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Cone3D: %w", err)
	}
	return solid(sdf.Transform3D(s, onAxis(ax, h))), nil
}

// onAxis places a Z-centered body of height h so that its base sits on
// ax.Origin and it extends along ax.Dir.
func onAxis(ax kernel.Axis, h float64) sdf.M44 {
	return sdf.Translate3d(vec(ax.Origin)).
		Mul(alignZ(vec(ax.Dir))).
		Mul(sdf.Translate3d(v3.Vec{Z: h / 2}))
}

// Wedge creates a box whose +Y face is shrunk to [xmin,xmax] x [zmin,zmax].
func (k *SdfxKernel) Wedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (kernel.Shape, error) {
	s, err := newWedge(dx, dy, dz, xmin, zmin, xmax, zmax)
	if err != nil {
		return nil, err
	}
	return solid(s), nil
}

// Polygon creates a planar face in the XY plane.
func (k *SdfxKernel) Polygon(points []kernel.Vec2) (kernel.Shape, error) {
	vs := make([]v2.Vec, len(points))
	for i, p := range points {
		vs[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Polygon2D: %w", err)
	}
	return face(s, sdf.Identity3d()), nil
}

// Circle creates a disc in the XY plane.
func (k *SdfxKernel) Circle(r float64) (kernel.Shape, error) {
	s, err := sdf.Circle2D(r)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Circle2D: %w", err)
	}
	return face(s, sdf.Identity3d()), nil
}

// Ellipse creates an elliptical disc in the XY plane, major axis along X.
func (k *SdfxKernel) Ellipse(major, minor float64) (kernel.Shape, error) {
	if minor <= 0 || major < minor {
		return nil, invalid("Ellipse", "major=%g minor=%g", major, minor)
	}
	c, err := sdf.Circle2D(minor)
	if err != nil {
		return nil, fmt.Errorf("sdfx: Circle2D: %w", err)
	}
	s := sdf.Transform2D(c, sdf.Scale2d(v2.Vec{X: major / minor, Y: 1}))
	return face(s, sdf.Identity3d()), nil
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// operands unwraps two solids or two coplanar faces.
func operands(op string, a, b kernel.Shape) (*shape, *shape, error) {
	sa, err := unwrapKind(a, op, kernel.KindSolid, kernel.KindCompound, kernel.KindFace)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrapKind(b, op, kernel.KindSolid, kernel.KindCompound, kernel.KindFace)
	if err != nil {
		return nil, nil, err
	}
	if (sa.kind == kernel.KindFace) != (sb.kind == kernel.KindFace) {
		return nil, nil, invalid(op, "cannot combine %s with %s", sa.kind, sb.kind)
	}
	return sa, sb, nil
}

// inPlaneOf re-expresses face b in the local frame of face a.
func inPlaneOf(op string, a, b *shape) (sdf.SDF2, error) {
	na, nb := faceNormal(a), faceNormal(b)
	if na.Cross(nb).Length() > 1e-6 || math.Abs(faceOrigin(b).Sub(faceOrigin(a)).Dot(na)) > 1e-6 {
		return nil, invalid(op, "faces are not coplanar")
	}
	return &placed2{s: b.s2, m: b.place.Inverse().Mul(a.place), inv: a.place.Inverse().Mul(b.place)}, nil
}

// Fuse returns the boolean union of two shapes.
func (k *SdfxKernel) Fuse(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := operands("Fuse", a, b)
	if err != nil {
		return nil, err
	}
	if sa.kind == kernel.KindFace {
		s2, err := inPlaneOf("Fuse", sa, sb)
		if err != nil {
			return nil, err
		}
		return face(sdf.Union2D(sa.s2, s2), sa.place), nil
	}
	return solid(sdf.Union3D(sa.s3, sb.s3)), nil
}

// Common returns the boolean intersection of two shapes.
func (k *SdfxKernel) Common(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := operands("Common", a, b)
	if err != nil {
		return nil, err
	}
	if sa.kind == kernel.KindFace {
		s2, err := inPlaneOf("Common", sa, sb)
		if err != nil {
			return nil, err
		}
		return face(sdf.Intersect2D(sa.s2, s2), sa.place), nil
	}
	return solid(sdf.Intersect3D(sa.s3, sb.s3)), nil
}

// Cut returns the difference a - b.
func (k *SdfxKernel) Cut(a, b kernel.Shape) (kernel.Shape, error) {
	sa, sb, err := operands("Cut", a, b)
	if err != nil {
		return nil, err
	}
	if sa.kind == kernel.KindFace {
		s2, err := inPlaneOf("Cut", sa, sb)
		if err != nil {
			return nil, err
		}
		return face(sdf.Difference2D(sa.s2, s2), sa.place), nil
	}
	return solid(sdf.Difference3D(sa.s3, sb.s3)), nil
}

// VolumeUnion merges every solid into one.
func (k *SdfxKernel) VolumeUnion(shapes []kernel.Shape) (kernel.Shape, error) {
	s3, err := solids("VolumeUnion", shapes)
	if err != nil {
		return nil, err
	}
	if len(s3) == 1 {
		return solid(s3[0]), nil
	}
	return solid(sdf.Union3D(s3...)), nil
}

// Compound groups solids. Its field is the union of the parts.
func (k *SdfxKernel) Compound(shapes []kernel.Shape) (kernel.Shape, error) {
	s3, err := solids("Compound", shapes)
	if err != nil {
		return nil, err
	}
	parts := make([]*shape, len(shapes))
	for i, s := range shapes {
		parts[i] = s.(*shape)
	}
	return &shape{kind: kernel.KindCompound, s3: sdf.Union3D(s3...), parts: parts}, nil
}

func solids(op string, shapes []kernel.Shape) ([]sdf.SDF3, error) {
	if len(shapes) == 0 {
		return nil, invalid(op, "no arguments")
	}
	out := make([]sdf.SDF3, len(shapes))
	for i, s := range shapes {
		sh, err := unwrapKind(s, op, kernel.KindSolid, kernel.KindCompound)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = sh.s3
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Transforms
// ---------------------------------------------------------------------------

// matrix converts an affine operation to an sdfx matrix. A mirror is the
// half turn about its axis.
func matrix(op kernel.Affine) (sdf.M44, error) {
	if err := op.Validate(); err != nil {
		return sdf.M44{}, fmt.Errorf("sdfx: %w", err)
	}
	switch op.Kind {
	case kernel.AffineMirror:
		return sdf.Rotate3d(vec(op.Axis.Unit()), math.Pi), nil
	case kernel.AffineRotate:
		return sdf.Rotate3d(vec(op.Axis.Unit()), op.Angle), nil
	case kernel.AffineTranslate:
		return sdf.Translate3d(vec(op.Vector)), nil
	default:
		v := op.Vector
		if v.X == 0 || v.Y == 0 || v.Z == 0 {
			return sdf.M44{}, invalid("Apply", "singular scale %v", v)
		}
		return sdf.Scale3d(vec(v)), nil
	}
}

// Apply maps the shape through op.
func (k *SdfxKernel) Apply(s kernel.Shape, op kernel.Affine) (kernel.Shape, error) {
	sh, err := unwrap(s, "Apply")
	if err != nil {
		return nil, err
	}
	m, err := matrix(op)
	if err != nil {
		return nil, err
	}
	uniform := op.Kind == kernel.AffineScale && op.Vector.X == op.Vector.Y && op.Vector.Y == op.Vector.Z
	return transform(sh, m, uniform, op.Vector.X), nil
}

func transform(sh *shape, m sdf.M44, uniform bool, k float64) *shape {
	switch sh.kind {
	case kernel.KindSolid:
		if uniform && k > 0 {
			return solid(sdf.ScaleUniform3D(sh.s3, k))
		}
		return solid(sdf.Transform3D(sh.s3, m))
	case kernel.KindCompound:
		out := &shape{kind: kernel.KindCompound, s3: sdf.Transform3D(sh.s3, m)}
		for _, p := range sh.parts {
			out.parts = append(out.parts, transform(p, m, uniform, k))
		}
		return out
	case kernel.KindFace:
		return face(sh.s2, m.Mul(sh.place))
	default:
		pts := make([]v3.Vec, len(sh.pts))
		for i, p := range sh.pts {
			pts[i] = m.MulPosition(p)
		}
		return curve(sh.kind, pts)
	}
}

// ---------------------------------------------------------------------------
// Sweeps
// ---------------------------------------------------------------------------

// Prism sweeps a face along v.
func (k *SdfxKernel) Prism(s kernel.Shape, v kernel.Vec3) (kernel.Shape, error) {
	f, err := unwrapKind(s, "Prism", kernel.KindFace)
	if err != nil {
		return nil, err
	}
	dl := direction(f.place.Inverse(), vec(v))
	if math.Abs(dl.Z) < 1e-9 {
		return nil, invalid("Prism", "extrusion vector lies in the face plane")
	}
	if math.Hypot(dl.X, dl.Y) < 1e-9*math.Abs(dl.Z) {
		// Straight extrusion: sdf.Extrude3D is centered on z=0.
		e := sdf.Extrude3D(f.s2, math.Abs(dl.Z))
		m := f.place.Mul(sdf.Translate3d(v3.Vec{Z: dl.Z / 2}))
		return solid(sdf.Transform3D(e, m)), nil
	}
	return solid(sdf.Transform3D(newPrism(f.s2, dl), f.place)), nil
}

// Revolve sweeps a face about ax. The face must lie in a plane containing
// the axis.
func (k *SdfxKernel) Revolve(s kernel.Shape, ax kernel.Axis, angle float64) (kernel.Shape, error) {
	f, err := unwrapKind(s, "Revolve", kernel.KindFace)
	if err != nil {
		return nil, err
	}
	if ax.Dir.IsZero() || angle <= 0 {
		return nil, invalid("Revolve", "axis %v angle %g", ax.Dir, angle)
	}
	frame := sdf.Translate3d(vec(ax.Origin)).Mul(alignZ(vec(ax.Dir)))
	m, spin, err := newMeridian(f, frame)
	if err != nil {
		return nil, err
	}
	var r sdf.SDF3
	if angle >= kernel.Tau-1e-9 {
		r, err = sdf.Revolve3D(m)
	} else {
		r, err = sdf.RevolveTheta3D(m, angle)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: Revolve3D: %w", err)
	}
	return solid(sdf.Transform3D(r, frame.Mul(spin))), nil
}

// Pipe sweeps a face along a path.
func (k *SdfxKernel) Pipe(path, profile kernel.Shape) (kernel.Shape, error) {
	p, err := unwrapKind(path, "Pipe", kernel.KindEdge, kernel.KindWire)
	if err != nil {
		return nil, err
	}
	f, err := unwrap(profile, "Pipe")
	if err != nil {
		return nil, err
	}
	if f.kind != kernel.KindFace {
		// Sweeping a wire gives a shell, which has no interior to sample.
		return nil, kernel.Unsupported(backend, "Pipe of a "+f.kind.String())
	}
	s, err := newSweep(f, p.pts)
	if err != nil {
		return nil, err
	}
	kernel.Logger().Debug("sdfx: pipe", "segments", len(p.pts)-1)
	return solid(s), nil
}

// ---------------------------------------------------------------------------
// Topology, features and STEP: not expressible on distance fields
// ---------------------------------------------------------------------------

func (k *SdfxKernel) Edges(kernel.Shape) ([]kernel.Shape, error) {
	return nil, kernel.Unsupported(backend, "Edges")
}

func (k *SdfxKernel) Faces(kernel.Shape) ([]kernel.Face, error) {
	return nil, kernel.Unsupported(backend, "Faces")
}

func (k *SdfxKernel) NewFillet(kernel.Shape) (kernel.FilletBuilder, error) {
	return nil, kernel.Unsupported(backend, "Fillet")
}

func (k *SdfxKernel) NewChamfer(kernel.Shape) (kernel.ChamferBuilder, error) {
	return nil, kernel.Unsupported(backend, "Chamfer")
}

func (k *SdfxKernel) NewDraft(kernel.Shape) (kernel.DraftBuilder, error) {
	return nil, kernel.Unsupported(backend, "Draft")
}

func (k *SdfxKernel) ReadSTEP(path string) (kernel.Shape, error) {
	return nil, &kernel.IOError{Op: "read-step", Path: path, Err: kernel.Unsupported(backend, "ReadSTEP")}
}

func (k *SdfxKernel) WriteSTEP(_ kernel.Shape, path string, _ kernel.STEPOptions) error {
	return &kernel.IOError{Op: "write-step", Path: path, Err: kernel.Unsupported(backend, "WriteSTEP")}
}

// ---------------------------------------------------------------------------
// Meshing
// ---------------------------------------------------------------------------

// meshCells picks a marching cubes resolution so that a cell is no larger
// than the linear deflection.
func meshCells(bb sdf.Box3, deflection float64) int {
	size := bb.Max.Sub(bb.Min)
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	cells := int(math.Ceil(longest / deflection))
	if cells < minMeshCells {
		return minMeshCells
	}
	if cells > maxMeshCells {
		return maxMeshCells
	}
	return cells
}

// field returns the distance field to mesh and the marching cubes
// resolution for it.
func (k *SdfxKernel) field(s kernel.Shape, opts kernel.MeshOptions) (sdf.SDF3, int, error) {
	sh, err := unwrapKind(s, "Mesh", kernel.KindSolid, kernel.KindCompound)
	if err != nil {
		return nil, 0, err
	}
	opts = opts.WithDefaults()
	if opts.LinearDeflection <= 0 {
		return nil, 0, invalid("Mesh", "linear deflection %g", opts.LinearDeflection)
	}
	cells := meshCells(sh.s3.BoundingBox(), opts.LinearDeflection)
	kernel.Logger().Debug("sdfx: marching cubes", "cells", cells)
	return sh.s3, cells, nil
}

// Mesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) Mesh(s kernel.Shape, opts kernel.MeshOptions) (*kernel.Mesh, error) {
	s3, cells, err := k.field(s, opts)
	if err != nil {
		return nil, err
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s3, renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// WriteSTL meshes s and writes it. Binary output goes through sdfx's own
// writer; ASCII through package stl.
func (k *SdfxKernel) WriteSTL(s kernel.Shape, path string, opts kernel.STLOptions) error {
	opts = opts.WithDefaults()
	if opts.Mode == kernel.STLASCII {
		m, err := k.Mesh(s, opts.MeshOptions)
		if err != nil {
			return err
		}
		return stl.WriteFile(path, m, opts.Mode)
	}
	s3, cells, err := k.field(s, opts.MeshOptions)
	if err != nil {
		return err
	}
	triangles := render.ToTriangles(s3, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return &kernel.IOError{Op: "write-stl", Path: path, Err: errors.New("empty mesh")}
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		os.Remove(path)
		return &kernel.IOError{Op: "write-stl", Path: path, Err: err}
	}
	return nil
}
