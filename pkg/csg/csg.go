// Package csg is a constructive solid geometry layer over a kernel.Kernel.
//
// Geometry is held in three immutable value types: Solid (a volume or a
// compound of volumes), Profile (a planar face) and Wire (a chain of
// edges). Every operation returns a new value and leaves its receiver
// untouched, so values may be shared freely. The zero value of each type
// is empty and acts as the identity for unions and wire chaining.
//
// Values are created by a Modeler bound to one kernel:
//
//	m := csg.New(sdfx.New())
//	cube, _ := m.Cube(csg.Uniform(1), true)
//	ball, _ := m.Sphere(0.65)
//	part, _ := cube.Difference(ball)
//	_ = part.WriteSTL("cubeminus.stl", kernel.DefaultSTLOptions())
package csg

import (
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// Vec3 and Vec2 are the kernel's vector types.
type (
	Vec3 = kernel.Vec3
	Vec2 = kernel.Vec2
)

// Tau is one full turn in radians.
const Tau = kernel.Tau

// Unit axes.
var (
	UX = kernel.UnitX
	UY = kernel.UnitY
	UZ = kernel.UnitZ
)

// Uniform returns the size vector with every component f.
func Uniform(f float64) Vec3 { return Vec3{X: f, Y: f, Z: f} }

// Uniform2 returns the 2-D size vector with both components f.
func Uniform2(f float64) Vec2 { return Vec2{X: f, Y: f} }

// Deg converts degrees to radians.
func Deg(d float64) float64 { return d * math.Pi / 180 }
