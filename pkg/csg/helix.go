package csg

import (
	"fmt"
	"math"

	"github.com/chazu/csgstep/pkg/kernel"
)

// helixStep is the angular sampling step of the helix path, 40 samples
// per turn.
const helixStep = Tau / 40

// HelixParams configures HelixExtrude.
type HelixParams struct {
	Radius float64 // distance from the helix axis to the profile origin
	Height float64 // total rise
	Pitch  float64 // rise per turn
	Center bool    // center the result on Z = 0 instead of starting there
}

// helixSpan is one sweep of at most a full turn, [U1, U2] in radians.
type helixSpan struct {
	U1, U2 float64
}

// helixSpans splits [0, twist] into spans of one turn, the last one
// possibly shorter. Spans start at whole turns.
func helixSpans(twist float64) []helixSpan {
	n := int(math.Ceil(twist/Tau - 1e-9))
	spans := make([]helixSpan, 0, n)
	for i := 0; i < n; i++ {
		u1 := float64(i) * Tau
		spans = append(spans, helixSpan{U1: u1, U2: math.Min(twist, u1+Tau)})
	}
	return spans
}

// samples returns the helix points over the span, re-based so the first
// one is the origin.
func (s helixSpan) samples(radius, pitch float64) []Vec3 {
	n := int(math.Ceil((s.U2-s.U1)/helixStep-1e-9)) + 1
	if n < 2 {
		n = 2
	}
	at := func(u float64) Vec3 {
		return Vec3{X: radius * math.Cos(u), Y: radius * math.Sin(u), Z: u / Tau * pitch}
	}
	p0 := at(s.U1)
	pts := make([]Vec3, n)
	for i := range pts {
		u := s.U1 + (s.U2-s.U1)*float64(i)/float64(n-1)
		pts[i] = at(u).Sub(p0)
	}
	return pts
}

// HelixExtrude sweeps p along a helix about the Z axis, like a thread.
//
// The profile, drawn in the XY plane at the origin, is tilted by the lead
// angle so it stays across the helix tangent. The sweep is built one turn
// at a time: each turn is a spline sweep fitted near the origin and lifted
// to its height, and the turns are merged by volume reconstruction. The
// result is finally moved out by the radius so the helix axis is the Z
// axis. A zero radius is not checked.
func (p Profile) HelixExtrude(hp HelixParams) (Solid, error) {
	if p.IsEmpty() {
		return Solid{}, empty("helix-extrude")
	}
	twist := Tau * hp.Height / hp.Pitch
	if math.IsNaN(twist) || math.IsInf(twist, 0) || twist <= 0 {
		return Solid{}, wrap("helix-extrude", fmt.Errorf("%w: height %g pitch %g", kernel.ErrInvalidShape, hp.Height, hp.Pitch))
	}
	theta := math.Atan(hp.Pitch / (Tau * hp.Radius))
	prof, err := p.RotateX(math.Pi/2 + theta)
	if err != nil {
		return Solid{}, err
	}

	spans := helixSpans(twist)
	turns := make([]Solid, 0, len(spans))
	for i, span := range spans {
		pts := span.samples(hp.Radius, hp.Pitch)
		Logger().Debug("helix span", "index", i, "u1", span.U1, "u2", span.U2, "samples", len(pts))
		turn, err := prof.SplineExtrude(pts)
		if err != nil {
			return Solid{}, fmt.Errorf("csg: helix-extrude: turn %d: %w", i, err)
		}
		if turn, err = turn.TranslateZ(span.U1 / Tau * hp.Pitch); err != nil {
			return Solid{}, err
		}
		turns = append(turns, turn)
	}

	out, err := UnionAll(turns...)
	if err != nil {
		return Solid{}, err
	}
	if out, err = out.TranslateX(hp.Radius); err != nil {
		return Solid{}, err
	}
	if hp.Center {
		return out.TranslateZ(-hp.Height / 2)
	}
	return out, nil
}
