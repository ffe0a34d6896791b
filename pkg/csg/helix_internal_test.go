package csg

import (
	"math"
	"testing"
)

func TestHelixSpans(t *testing.T) {
	tests := []struct {
		name  string
		twist float64
		want  int
	}{
		{"one turn exactly", Tau, 1},
		{"half turn", math.Pi, 1},
		{"just over one turn", Tau + 0.01, 2},
		{"5.1 turns", Tau * 5.1, 6},
		{"three turns", 3 * Tau, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := helixSpans(tt.twist)
			if len(spans) != tt.want {
				t.Fatalf("got %d spans, want %d", len(spans), tt.want)
			}
			for i, s := range spans {
				if s.U1 != float64(i)*Tau {
					t.Errorf("span %d starts at %g, want %g", i, s.U1, float64(i)*Tau)
				}
				if s.U2-s.U1 > Tau+1e-12 {
					t.Errorf("span %d covers %g rad, more than a turn", i, s.U2-s.U1)
				}
			}
			if last := spans[len(spans)-1].U2; math.Abs(last-tt.twist) > 1e-12 {
				t.Errorf("last span ends at %g, want %g", last, tt.twist)
			}
		})
	}
}

func TestHelixSamples(t *testing.T) {
	full := helixSpan{U1: 2 * Tau, U2: 3 * Tau}.samples(8, 1)
	if len(full) != 41 {
		t.Errorf("full turn has %d samples, want 41", len(full))
	}
	if full[0] != (Vec3{}) {
		t.Errorf("first sample = %v, want origin", full[0])
	}
	// A full turn returns to the start radius one pitch higher.
	last := full[len(full)-1]
	if math.Abs(last.X) > 1e-9 || math.Abs(last.Y) > 1e-9 || math.Abs(last.Z-1) > 1e-9 {
		t.Errorf("last sample = %v, want (0, 0, 1)", last)
	}

	// Quarter turn: ceil(10) + 1 samples.
	quarter := helixSpan{U1: 0, U2: Tau / 4}.samples(2, 4)
	if len(quarter) != 11 {
		t.Errorf("quarter turn has %d samples, want 11", len(quarter))
	}
	end := quarter[len(quarter)-1]
	want := Vec3{X: -2, Y: 2, Z: 1}
	if end.Sub(want).Length() > 1e-9 {
		t.Errorf("quarter turn end = %v, want %v", end, want)
	}

	// Fractional spans round the sample count up.
	if n := len((helixSpan{U1: 0, U2: 0.11 * Tau}).samples(1, 1)); n != 6 {
		t.Errorf("0.11 turn has %d samples, want 6", n)
	}
}
