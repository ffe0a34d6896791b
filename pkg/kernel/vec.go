package kernel

import "math"

// Tau is one full turn in radians.
const Tau = 2 * math.Pi

// Vec3 is a point or direction in 3-D space.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a point in the XY plane.
type Vec2 struct {
	X, Y float64
}

// Unit basis vectors.
var (
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale multiplies every component by k.
func (a Vec3) Scale(k float64) Vec3 { return Vec3{a.X * k, a.Y * k, a.Z * k} }

// Mul multiplies componentwise.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Length returns the Euclidean norm.
func (a Vec3) Length() float64 { return math.Sqrt(a.Dot(a)) }

// Unit returns a scaled to length 1. The zero vector is returned unchanged.
func (a Vec3) Unit() Vec3 {
	l := a.Length()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// IsZero reports whether all components are zero.
func (a Vec3) IsZero() bool { return a == Vec3{} }

// Axis is a point and a direction, the axis of a cylinder, cone or revolution.
type Axis struct {
	Origin Vec3
	Dir    Vec3
}

// AxisZ is the global Z axis through the origin.
var AxisZ = Axis{Dir: UnitZ}

// Plane is a point and a normal.
type Plane struct {
	Origin Vec3
	Normal Vec3
}

// PlaneXY is the XY plane through the origin.
var PlaneXY = Plane{Normal: UnitZ}
