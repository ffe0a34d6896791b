package kernel

import (
	"fmt"
	"math"
)

// AffineKind selects the family of an affine operation.
type AffineKind int

const (
	AffineMirror    AffineKind = iota // half turn about an axis through the origin
	AffineRotate                      // rotation about an axis through the origin
	AffineTranslate                   // translation by a vector
	AffineScale                       // general linear scale along X, Y, Z
)

func (k AffineKind) String() string {
	switch k {
	case AffineMirror:
		return "mirror"
	case AffineRotate:
		return "rotate"
	case AffineTranslate:
		return "translate"
	case AffineScale:
		return "scale"
	default:
		return fmt.Sprintf("AffineKind(%d)", int(k))
	}
}

// Affine is a single affine operation. It is built by Mirror, Rotation,
// Translation or Scaling and applied once through Kernel.Apply; operations
// are never composed symbolically.
type Affine struct {
	Kind   AffineKind
	Axis   Vec3    // mirror and rotate
	Angle  float64 // rotate, radians, right hand rule
	Vector Vec3    // translate offset or scale factors
}

// Mirror returns the symmetry about the line through the origin along axis.
func Mirror(axis Vec3) Affine {
	return Affine{Kind: AffineMirror, Axis: axis}
}

// Rotation returns a rotation by angle about the line through the origin
// along axis.
func Rotation(angle float64, axis Vec3) Affine {
	return Affine{Kind: AffineRotate, Axis: axis, Angle: angle}
}

// Translation returns a translation by v.
func Translation(v Vec3) Affine {
	return Affine{Kind: AffineTranslate, Vector: v}
}

// Scaling returns the linear map diag(v.X, v.Y, v.Z).
func Scaling(v Vec3) Affine {
	return Affine{Kind: AffineScale, Vector: v}
}

func (a Affine) String() string {
	switch a.Kind {
	case AffineMirror:
		return fmt.Sprintf("mirror(%v)", a.Axis)
	case AffineRotate:
		return fmt.Sprintf("rotate(%.6g, %v)", a.Angle, a.Axis)
	case AffineTranslate:
		return fmt.Sprintf("translate(%v)", a.Vector)
	case AffineScale:
		return fmt.Sprintf("scale(%v)", a.Vector)
	}
	return a.Kind.String()
}

// Validate reports operations no kernel can apply: a zero axis for mirror
// and rotation. Degenerate scales are left to the kernel.
func (a Affine) Validate() error {
	switch a.Kind {
	case AffineMirror, AffineRotate:
		if a.Axis.IsZero() {
			return fmt.Errorf("%w: %s about a zero axis", ErrInvalidShape, a.Kind)
		}
	case AffineTranslate, AffineScale:
	default:
		return fmt.Errorf("%w: unknown affine kind %d", ErrInvalidShape, int(a.Kind))
	}
	return nil
}

// Matrix returns the operation as a row-major 3x4 matrix [L | t].
func (a Affine) Matrix() [3][4]float64 {
	var m [3][4]float64
	switch a.Kind {
	case AffineMirror:
		// Half turn about u: 2uu^T - I.
		u := a.Axis.Unit()
		c := [3]float64{u.X, u.Y, u.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				m[i][j] = 2 * c[i] * c[j]
			}
			m[i][i] -= 1
		}
	case AffineRotate:
		// Rodrigues: cI + s[u]x + (1-c)uu^T.
		u := a.Axis.Unit()
		c, s := math.Cos(a.Angle), math.Sin(a.Angle)
		t := 1 - c
		m[0] = [4]float64{c + t*u.X*u.X, t*u.X*u.Y - s*u.Z, t*u.X*u.Z + s*u.Y, 0}
		m[1] = [4]float64{t*u.X*u.Y + s*u.Z, c + t*u.Y*u.Y, t*u.Y*u.Z - s*u.X, 0}
		m[2] = [4]float64{t*u.X*u.Z - s*u.Y, t*u.Y*u.Z + s*u.X, c + t*u.Z*u.Z, 0}
	case AffineTranslate:
		m[0] = [4]float64{1, 0, 0, a.Vector.X}
		m[1] = [4]float64{0, 1, 0, a.Vector.Y}
		m[2] = [4]float64{0, 0, 1, a.Vector.Z}
	case AffineScale:
		m[0][0], m[1][1], m[2][2] = a.Vector.X, a.Vector.Y, a.Vector.Z
	}
	return m
}

// Point applies the operation to a point.
func (a Affine) Point(p Vec3) Vec3 {
	m := a.Matrix()
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// Normal maps a surface normal through the operation and renormalises it.
// Normals transform by the inverse transpose of the linear part, which for
// mirror and rotation is the operation itself.
func (a Affine) Normal(n Vec3) Vec3 {
	switch a.Kind {
	case AffineTranslate:
		return n
	case AffineScale:
		inv := func(f float64) float64 {
			if f == 0 {
				return 0
			}
			return 1 / f
		}
		return n.Mul(Vec3{inv(a.Vector.X), inv(a.Vector.Y), inv(a.Vector.Z)}).Unit()
	}
	return a.Point(n).Unit()
}

// BoundingBox maps an axis-aligned box and returns the box around the
// eight transformed corners.
func (a Affine) BoundingBox(min, max [3]float64) (nmin, nmax [3]float64) {
	first := true
	for i := 0; i < 8; i++ {
		c := Vec3{min[0], min[1], min[2]}
		if i&1 != 0 {
			c.X = max[0]
		}
		if i&2 != 0 {
			c.Y = max[1]
		}
		if i&4 != 0 {
			c.Z = max[2]
		}
		p := a.Point(c)
		v := [3]float64{p.X, p.Y, p.Z}
		for j := 0; j < 3; j++ {
			if first || v[j] < nmin[j] {
				nmin[j] = v[j]
			}
			if first || v[j] > nmax[j] {
				nmax[j] = v[j]
			}
		}
		first = false
	}
	return nmin, nmax
}
