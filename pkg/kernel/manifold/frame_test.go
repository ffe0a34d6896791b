package manifold

import (
	"math"
	"testing"

	"github.com/chazu/csgstep/pkg/kernel"
)

func TestColumns(t *testing.T) {
	m := kernel.Translation(kernel.Vec3{X: 7, Y: 8, Z: 9}).Matrix()
	want := [12]float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 7, 8, 9}
	if got := columns(m); got != want {
		t.Errorf("columns = %v, want %v", got, want)
	}
}

func apply(m [3][4]float64, p kernel.Vec3) kernel.Vec3 {
	return kernel.Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

func TestAxisFrame(t *testing.T) {
	tests := []struct {
		name string
		ax   kernel.Axis
		want kernel.Vec3 // image of (0, 0, 1)
	}{
		{"z", kernel.AxisZ, kernel.Vec3{Z: 1}},
		{"minus z", kernel.Axis{Dir: kernel.Vec3{Z: -2}}, kernel.Vec3{Z: -1}},
		{"x offset", kernel.Axis{Origin: kernel.Vec3{Y: 5}, Dir: kernel.UnitX}, kernel.Vec3{X: 1, Y: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(axisFrame(tt.ax), kernel.UnitZ)
			if got.Sub(tt.want).Length() > 1e-9 {
				t.Errorf("frame maps +Z to %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeFlatNormals(t *testing.T) {
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := computeFlatNormals(vertices, []uint32{0, 1, 2})
	for i := 0; i < 3; i++ {
		if math.Abs(float64(normals[i*3+2])-1) > 1e-6 {
			t.Errorf("normal %d = %v, want +Z", i, normals[i*3:i*3+3])
		}
	}
}
