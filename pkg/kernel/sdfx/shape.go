package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// shape is the sdfx shape handle. Which fields are set depends on kind:
//
//	solid     s3
//	compound  s3 (union of parts) and parts
//	face      s2 in the local XY plane and place, local to world
//	edge/wire pts, a world space polyline
type shape struct {
	kind  kernel.ShapeKind
	s3    sdf.SDF3
	s2    sdf.SDF2
	place sdf.M44
	pts   []v3.Vec
	parts []*shape
}

// Kind returns the topological kind.
func (s *shape) Kind() kernel.ShapeKind { return s.kind }

// BoundingBox returns the axis-aligned bounding box.
func (s *shape) BoundingBox() (min, max [3]float64) {
	var bb sdf.Box3
	switch s.kind {
	case kernel.KindSolid, kernel.KindCompound:
		bb = s.s3.BoundingBox()
	case kernel.KindFace:
		bb = s.place.MulBox(flatBox(s.s2.BoundingBox()))
	default:
		bb = pointsBox(s.pts)
	}
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

func solid(s sdf.SDF3) *shape {
	return &shape{kind: kernel.KindSolid, s3: s}
}

func face(s sdf.SDF2, place sdf.M44) *shape {
	return &shape{kind: kernel.KindFace, s2: s, place: place}
}

func curve(kind kernel.ShapeKind, pts []v3.Vec) *shape {
	return &shape{kind: kind, pts: pts}
}

// unwrap extracts the sdfx shape from a kernel.Shape.
func unwrap(s kernel.Shape, op string) (*shape, error) {
	if s == nil {
		return nil, fmt.Errorf("sdfx: %s: %w: empty shape", op, kernel.ErrInvalidShape)
	}
	sh, ok := s.(*shape)
	if !ok {
		return nil, fmt.Errorf("sdfx: %s: %w: foreign handle %T", op, kernel.ErrInvalidShape, s)
	}
	return sh, nil
}

func unwrapKind(s kernel.Shape, op string, kinds ...kernel.ShapeKind) (*shape, error) {
	sh, err := unwrap(s, op)
	if err != nil {
		return nil, err
	}
	for _, k := range kinds {
		if sh.kind == k {
			return sh, nil
		}
	}
	return nil, invalid(op, "unexpected %s", sh.kind)
}

func invalid(op, format string, args ...any) error {
	return fmt.Errorf("sdfx: %s: %w: %s", op, kernel.ErrInvalidShape, fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------------
// Vector helpers
// ---------------------------------------------------------------------------

func vec(v kernel.Vec3) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func unvec(v v3.Vec) kernel.Vec3 { return kernel.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// direction maps a free vector through m, ignoring translation.
func direction(m sdf.M44, v v3.Vec) v3.Vec {
	return m.MulPosition(v).Sub(m.MulPosition(v3.Vec{}))
}

// alignZ returns the rotation taking +Z onto dir.
func alignZ(dir v3.Vec) sdf.M44 {
	return rotateOnto(v3.Vec{Z: 1}, dir.Normalize())
}

// rotateOnto returns the smallest rotation taking unit vector a onto b.
func rotateOnto(a, b v3.Vec) sdf.M44 {
	axis := a.Cross(b)
	s, c := axis.Length(), a.Dot(b)
	if s < 1e-12 {
		if c > 0 {
			return sdf.Identity3d()
		}
		// Antiparallel: half turn about any perpendicular.
		p := a.Cross(v3.Vec{X: 1})
		if p.Length() < 1e-6 {
			p = a.Cross(v3.Vec{Y: 1})
		}
		return sdf.Rotate3d(p.Normalize(), math.Pi)
	}
	return sdf.Rotate3d(axis.Normalize(), math.Atan2(s, c))
}

// flatBox lifts a 2-D box into the z=0 plane.
func flatBox(b sdf.Box2) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: b.Min.X, Y: b.Min.Y},
		Max: v3.Vec{X: b.Max.X, Y: b.Max.Y},
	}
}

func pointsBox(pts []v3.Vec) sdf.Box3 {
	var bb sdf.Box3
	for i, p := range pts {
		if i == 0 {
			bb = sdf.Box3{Min: p, Max: p}
			continue
		}
		bb = sdf.Box3{Min: bb.Min.Min(p), Max: bb.Max.Max(p)}
	}
	return bb
}

func unionBox3(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// boxDistance returns the distance from p to b, zero inside.
func boxDistance(b sdf.Box3, p v3.Vec) float64 {
	d := b.Min.Sub(p).Max(p.Sub(b.Max)).Max(v3.Vec{})
	return d.Length()
}

func near(a, b v3.Vec) bool {
	return a.Sub(b).Length() <= 1e-7*math.Max(1, math.Max(a.Length(), b.Length()))
}

// faceNormal returns the world normal of a placed face.
func faceNormal(s *shape) v3.Vec {
	return direction(s.place, v3.Vec{Z: 1}).Normalize()
}

// faceOrigin returns the world position of the face's local origin.
func faceOrigin(s *shape) v3.Vec {
	return s.place.MulPosition(v3.Vec{})
}

// toLocal2 maps a world point into the face's local XY coordinates.
func toLocal2(inv sdf.M44, p v3.Vec) v2.Vec {
	q := inv.MulPosition(p)
	return v2.Vec{X: q.X, Y: q.Y}
}
