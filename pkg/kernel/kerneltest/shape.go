package kerneltest

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// Shape is the in-memory shape handle. Fields are exported so tests can
// inspect results and so STEP files can round-trip through JSON.
type Shape struct {
	ID        int              `json:"id"`
	Type      kernel.ShapeKind `json:"kind"`
	Op        string           `json:"op"`
	Min       [3]float64       `json:"min"`
	Max       [3]float64       `json:"max"`
	FaceList  []*Face          `json:"faces,omitempty"`
	EdgeCount int              `json:"edges"`

	// Points is the polyline of an edge or wire, or the boundary of a
	// polygonal face.
	Points []kernel.Vec3 `json:"points,omitempty"`
	Curved bool          `json:"curved,omitempty"` // face bounded by a smooth curve

	Children []*Shape `json:"children,omitempty"`

	// Feature results.
	Drafted    []kernel.Vec3 `json:"drafted,omitempty"` // normals of drafted faces
	Filleted   int           `json:"filleted,omitempty"`
	Chamfered  int           `json:"chamfered,omitempty"`
	SweepAngle float64       `json:"sweep_angle,omitempty"`
}

// Kind returns the topological kind.
func (s *Shape) Kind() kernel.ShapeKind { return s.Type }

// BoundingBox returns the axis-aligned bounding box.
func (s *Shape) BoundingBox() (min, max [3]float64) { return s.Min, s.Max }

// Face is one face of a Shape.
type Face struct {
	Plane bool        `json:"planar"`
	N     kernel.Vec3 `json:"normal"`
	Min   [3]float64  `json:"min"`
	Max   [3]float64  `json:"max"`
}

func (f *Face) Kind() kernel.ShapeKind             { return kernel.KindFace }
func (f *Face) BoundingBox() (min, max [3]float64) { return f.Min, f.Max }
func (f *Face) Planar() bool                       { return f.Plane }
func (f *Face) Normal() (kernel.Vec3, error)       { return f.N, nil }

// Compile-time interface checks.
var (
	_ kernel.Shape = (*Shape)(nil)
	_ kernel.Face  = (*Face)(nil)
)

// clone returns a copy with fresh face records. Children are shared;
// nothing mutates them.
func (s *Shape) clone() *Shape {
	c := *s
	c.FaceList = make([]*Face, len(s.FaceList))
	for i, f := range s.FaceList {
		fc := *f
		c.FaceList[i] = &fc
	}
	c.Points = append([]kernel.Vec3(nil), s.Points...)
	c.Drafted = append([]kernel.Vec3(nil), s.Drafted...)
	return &c
}

// isVolume reports whether booleans and features treat s as 3-D.
func (s *Shape) isVolume() bool {
	return s.Type == kernel.KindSolid || s.Type == kernel.KindCompound
}

// radius returns the largest distance from c to a corner of the box.
func (s *Shape) radius(c kernel.Vec3) float64 {
	var r float64
	for i := 0; i < 8; i++ {
		p := kernel.Vec3{X: s.Min[0], Y: s.Min[1], Z: s.Min[2]}
		if i&1 != 0 {
			p.X = s.Max[0]
		}
		if i&2 != 0 {
			p.Y = s.Max[1]
		}
		if i&4 != 0 {
			p.Z = s.Max[2]
		}
		r = math.Max(r, p.Sub(c).Length())
	}
	return r
}

// boundsOf returns the box around pts.
func boundsOf(pts []kernel.Vec3) (min, max [3]float64) {
	for i, p := range pts {
		v := [3]float64{p.X, p.Y, p.Z}
		for j := 0; j < 3; j++ {
			if i == 0 || v[j] < min[j] {
				min[j] = v[j]
			}
			if i == 0 || v[j] > max[j] {
				max[j] = v[j]
			}
		}
	}
	return min, max
}

// unionBox returns the box around both boxes.
func unionBox(amin, amax, bmin, bmax [3]float64) (min, max [3]float64) {
	for j := 0; j < 3; j++ {
		min[j] = math.Min(amin[j], bmin[j])
		max[j] = math.Max(amax[j], bmax[j])
	}
	return min, max
}

// intersectBox returns the overlap of both boxes, collapsed to zero size
// where they do not overlap.
func intersectBox(amin, amax, bmin, bmax [3]float64) (min, max [3]float64) {
	for j := 0; j < 3; j++ {
		min[j] = math.Max(amin[j], bmin[j])
		max[j] = math.Min(amax[j], bmax[j])
		if max[j] < min[j] {
			max[j] = min[j]
		}
	}
	return min, max
}

// planarFace returns a planar face with the given normal spanning the box.
func planarFace(n kernel.Vec3, min, max [3]float64) *Face {
	return &Face{Plane: true, N: n.Unit(), Min: min, Max: max}
}

// curvedFace returns a non-planar face spanning the box.
func curvedFace(min, max [3]float64) *Face {
	return &Face{Plane: false, N: kernel.UnitZ, Min: min, Max: max}
}

func nearlyEqual(a, b kernel.Vec3) bool {
	return a.Sub(b).Length() <= 1e-7*math.Max(1, math.Max(a.Length(), b.Length()))
}
