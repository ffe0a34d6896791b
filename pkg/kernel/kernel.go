// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold, kerneltest) provide solid construction,
// boolean operations, sweeps, topology queries and file exchange behind
// this interface. The CSG layer in package csg composes operations on top
// of it and never reaches into a backend directly.
package kernel

import "fmt"

// ShapeKind is the topological kind of a shape handle.
type ShapeKind int

const (
	KindSolid     ShapeKind = iota // closed volume
	KindFace                       // bounded planar or curved surface
	KindWire                       // chain of connected edges
	KindEdge                       // single curve
	KindCompound                   // container of other shapes
)

func (k ShapeKind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindFace:
		return "face"
	case KindWire:
		return "wire"
	case KindEdge:
		return "edge"
	case KindCompound:
		return "compound"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is an opaque handle to kernel-owned geometry.
// A nil Shape is the empty handle. Handles are never mutated; every
// operation returns a new one.
type Shape interface {
	// Kind returns the topological kind of the shape.
	Kind() ShapeKind
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Face is a face of a shape as returned by Kernel.Faces.
type Face interface {
	Shape
	// Planar reports whether the underlying surface is a plane.
	Planar() bool
	// Normal returns the outward unit normal sampled at one boundary edge.
	Normal() (Vec3, error)
}

// FilletBuilder accumulates edges to round.
type FilletBuilder interface {
	Add(radius float64, edge Shape)
	Build() (Shape, error)
}

// ChamferBuilder accumulates edges to bevel.
type ChamferBuilder interface {
	Add(distance float64, edge Shape)
	Build() (Shape, error)
}

// DraftBuilder accumulates faces to taper.
type DraftBuilder interface {
	Add(face Face, direction Vec3, angle float64, neutral Plane)
	Build() (Shape, error)
}

// Kernel is the abstract geometry kernel interface.
// Every method returns a new handle or an error; nothing is validated
// in advance, misuse is reported by the implementation.
type Kernel interface {
	// Primitives
	Sphere(r float64) (Shape, error)
	Box(size, origin Vec3) (Shape, error)
	Cylinder(ax Axis, r, h float64) (Shape, error)
	Cone(ax Axis, r1, r2, h float64) (Shape, error)
	Wedge(dx, dy, dz, xmin, zmin, xmax, zmax float64) (Shape, error)
	Polygon(points []Vec2) (Shape, error) // closed face in the XY plane
	Circle(r float64) (Shape, error)      // disc in the XY plane
	Ellipse(major, minor float64) (Shape, error)

	// Curves and wires
	Segment(p1, p2 Vec3) (Shape, error)
	Arc(p1, p2, p3 Vec3) (Shape, error)
	Spline(points []Vec3) (Shape, error) // degree-3 interpolating curve
	Wire(parts ...Shape) (Shape, error)
	Face(wire Shape) (Shape, error)

	// Boolean operations
	Fuse(a, b Shape) (Shape, error)
	Common(a, b Shape) (Shape, error)
	Cut(a, b Shape) (Shape, error)
	VolumeUnion(shapes []Shape) (Shape, error)
	Compound(shapes []Shape) (Shape, error)

	// Transforms
	Apply(s Shape, op Affine) (Shape, error)

	// Sweeps
	Prism(s Shape, v Vec3) (Shape, error)
	Revolve(s Shape, ax Axis, angle float64) (Shape, error) // angle >= Tau is a full turn
	Pipe(path, profile Shape) (Shape, error)

	// Topology
	Edges(s Shape) ([]Shape, error)
	Faces(s Shape) ([]Face, error)

	// Feature builders
	NewFillet(s Shape) (FilletBuilder, error)
	NewChamfer(s Shape) (ChamferBuilder, error)
	NewDraft(s Shape) (DraftBuilder, error)

	// Meshing and exchange
	Mesh(s Shape, opts MeshOptions) (*Mesh, error)
	ReadSTEP(path string) (Shape, error)
	WriteSTEP(s Shape, path string, opts STEPOptions) error
	WriteSTL(s Shape, path string, opts STLOptions) error
}
