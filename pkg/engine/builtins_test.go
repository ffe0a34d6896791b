package engine

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/csgstep/pkg/design"
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/kerneltest"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cube 10 :center true)`,
			expect: `(cube 10 "__kw_center" true)`,
		},
		{
			name:   "multiple keywords",
			input:  `(helix-extrude p :radius 8 :pitch 1)`,
			expect: `(helix_extrude p "__kw_radius" 8 "__kw_pitch" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`rotate-x :k`",
			expect: "`rotate-x :k`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(translate-x (cube 1) 5)`,
			expect: `(translate_x (cube 1) 5)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 x-1 0)`,
			expect: `(vec3 -1 x-1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "comment keeps following line",
			input:  "; note\n(sphere 1)",
			expect: "// note\n(sphere 1)",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// evalOK evaluates source on a fresh in-memory kernel and fails the test
// on any error.
func evalOK(t *testing.T, source string) (*design.Design, *kerneltest.Kernel) {
	t.Helper()
	eng, k := newTestEngine()
	d, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return d, k
}

func partShape(t *testing.T, d *design.Design, name string) *kerneltest.Shape {
	t.Helper()
	p := d.Lookup(name)
	if p == nil {
		t.Fatalf("no part %q, have %v", name, d.Names())
	}
	sh, ok := p.Solid.Handle().(*kerneltest.Shape)
	if !ok {
		t.Fatalf("part %q handle is %T", name, p.Solid.Handle())
	}
	return sh
}

func nearBox(got, want [3]float64) bool {
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

func TestImplicitMainPart(t *testing.T) {
	d, k := evalOK(t, `(difference (cube 1 :center true) (sphere 0.65))`)

	if d.Len() != 1 {
		t.Fatalf("parts = %v, want [main]", d.Names())
	}
	sh := partShape(t, d, design.DefaultPartName)
	if sh.Kind() != kernel.KindSolid {
		t.Errorf("main kind = %s, want solid", sh.Kind())
	}
	if k.Count("Cut") != 1 {
		t.Errorf("Cut calls = %d, want 1", k.Count("Cut"))
	}
	if !nearBox(sh.Min, [3]float64{-0.5, -0.5, -0.5}) || !nearBox(sh.Max, [3]float64{0.5, 0.5, 0.5}) {
		t.Errorf("bounds = %v %v, want the centered unit cube", sh.Min, sh.Max)
	}
}

func TestDefpartAndPart(t *testing.T) {
	d, _ := evalOK(t, `
(defpart "base" (cube (vec3 10 10 2)))
(defpart "post" (translate-z (cylinder 1 8) 2))
(defpart "all" (union (part "base") (part "post")))
`)
	if got := strings.Join(d.Names(), ","); got != "base,post,all" {
		t.Fatalf("parts = %s, want base,post,all", got)
	}
	if d.Lookup(design.DefaultPartName) != nil {
		t.Error("main should not be registered when defpart ran")
	}
	all := partShape(t, d, "all")
	if all.Max[2] != 10 {
		t.Errorf("assembly top = %g, want 10", all.Max[2])
	}
}

func TestDefpartErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"duplicate", `(defpart "a" (sphere 1)) (defpart "a" (sphere 2))`, "duplicate part name"},
		{"missing part", `(part "nope")`, `no part named "nope"`},
		{"not a solid", `(defpart "d" (circle 1))`, "expected solid"},
		{"no body", `(defpart "x")`, "requires a name and a body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine()
			d, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if d != nil {
				t.Error("expected nil design")
			}
			if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("errors = %v, want %q", evalErrs, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Modelling builtins
// ---------------------------------------------------------------------------

func TestPrimitiveBuiltins(t *testing.T) {
	tests := []struct {
		source   string
		min, max [3]float64
	}{
		{`(sphere 2)`, [3]float64{-2, -2, -2}, [3]float64{2, 2, 2}},
		{`(cube 2)`, [3]float64{0, 0, 0}, [3]float64{2, 2, 2}},
		{`(cube (vec3 4 2 1) :center true)`, [3]float64{-2, -1, -0.5}, [3]float64{2, 1, 0.5}},
		{`(cylinder 1 4)`, [3]float64{-1, -1, 0}, [3]float64{1, 1, 4}},
		{`(cylinder 1 4 :center true)`, [3]float64{-1, -1, -2}, [3]float64{1, 1, 2}},
		{`(cone 2 1 3)`, [3]float64{-2, -2, 0}, [3]float64{2, 2, 3}},
		{`(wedge 4 2 3)`, [3]float64{0, 0, 0}, [3]float64{4, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			d, _ := evalOK(t, tt.source)
			sh := partShape(t, d, design.DefaultPartName)
			if !nearBox(sh.Min, tt.min) || !nearBox(sh.Max, tt.max) {
				t.Errorf("bounds = %v %v, want %v %v", sh.Min, sh.Max, tt.min, tt.max)
			}
		})
	}
}

func TestTransformBuiltins(t *testing.T) {
	tests := []struct {
		source   string
		min, max [3]float64
	}{
		{`(translate (cube 1) (vec3 1 2 3))`, [3]float64{1, 2, 3}, [3]float64{2, 3, 4}},
		{`(translate-x (cube 1) 5)`, [3]float64{5, 0, 0}, [3]float64{6, 1, 1}},
		{`(translate-y (cube 1) 5)`, [3]float64{0, 5, 0}, [3]float64{1, 6, 1}},
		{`(translate-z (cube 1) -5)`, [3]float64{0, 0, -5}, [3]float64{1, 1, -4}},
		{`(scale (cube 1) 3)`, [3]float64{0, 0, 0}, [3]float64{3, 3, 3}},
		{`(scale (cube 1) (vec3 1 2 3))`, [3]float64{0, 0, 0}, [3]float64{1, 2, 3}},
		{`(mirror-x (cube 1))`, [3]float64{0, -1, -1}, [3]float64{1, 0, 0}},
		{`(mirror (cube 1) (vec3 0 0 1))`, [3]float64{-1, -1, 0}, [3]float64{0, 0, 1}},
		{`(rotate-z (cube 2) (deg 90))`, [3]float64{-2, 0, 0}, [3]float64{0, 2, 2}},
		{`(rotate (cube 2) (deg 180) (vec3 1 0 0))`, [3]float64{0, -2, -2}, [3]float64{2, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			d, k := evalOK(t, tt.source)
			sh := partShape(t, d, design.DefaultPartName)
			if !nearBox(sh.Min, tt.min) || !nearBox(sh.Max, tt.max) {
				t.Errorf("bounds = %v %v, want %v %v", sh.Min, sh.Max, tt.min, tt.max)
			}
			if n := k.Count("Apply"); n != 1 {
				t.Errorf("Apply calls = %d, want 1", n)
			}
		})
	}
}

func TestBottleScript(t *testing.T) {
	d, k := evalOK(t, `
(def w 50.0)
(def h 70.0)
(def th 30.0)
(def half
  (wire (segment (vec3 (- 0 (/ w 2)) 0 0) (vec3 (- 0 (/ w 2)) (- 0 (/ th 4)) 0))
        (arc (vec3 (- 0 (/ w 2)) (- 0 (/ th 4)) 0) (vec3 0 (- 0 (/ th 2)) 0) (vec3 (/ w 2) (- 0 (/ th 4)) 0))
        (segment (vec3 (/ w 2) (- 0 (/ th 4)) 0) (vec3 (/ w 2) 0 0))))
(def body (linear-extrude (face (wire half (mirror-x half))) h))
(def neck (translate-z (cylinder (/ th 4) (/ h 10)) h))
(defpart "bottle" (union body neck))
`)
	sh := partShape(t, d, "bottle")
	if sh.Kind() != kernel.KindSolid {
		t.Errorf("kind = %s, want solid", sh.Kind())
	}
	if k.Count("VolumeUnion") != 1 {
		t.Errorf("VolumeUnion calls = %d, want 1", k.Count("VolumeUnion"))
	}
	want := struct{ min, max [3]float64 }{
		min: [3]float64{-25, -15, 0},
		max: [3]float64{25, 15, 77},
	}
	if !nearBox(sh.Min, want.min) || !nearBox(sh.Max, want.max) {
		t.Errorf("bounds = %v %v, want %v %v", sh.Min, sh.Max, want.min, want.max)
	}
}

func TestSweepBuiltins(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		d, k := evalOK(t, `(linear-extrude (square 2 :center true) 5)`)
		sh := partShape(t, d, design.DefaultPartName)
		if !nearBox(sh.Min, [3]float64{-1, -1, 0}) || !nearBox(sh.Max, [3]float64{1, 1, 5}) {
			t.Errorf("bounds = %v %v", sh.Min, sh.Max)
		}
		if k.Count("Prism") != 1 {
			t.Errorf("Prism calls = %d, want 1", k.Count("Prism"))
		}
	})

	t.Run("rotate partial", func(t *testing.T) {
		d, _ := evalOK(t, `(rotate-extrude (translate-x (circle 1) 3) :angle (deg 45))`)
		sh := partShape(t, d, design.DefaultPartName)
		if math.Abs(sh.SweepAngle-math.Pi/4) > 1e-12 {
			t.Errorf("sweep angle = %g, want pi/4", sh.SweepAngle)
		}
	})

	t.Run("spline", func(t *testing.T) {
		_, k := evalOK(t, `(spline-extrude (circle 0.5) (vec3 0 0 0) (vec3 1 1 5) (vec3 0 2 10))`)
		if k.Count("Spline") != 1 || k.Count("Pipe") != 1 {
			t.Errorf("calls = %v, want one Spline and one Pipe", k.Calls())
		}
	})

	t.Run("helix", func(t *testing.T) {
		d, k := evalOK(t, `(helix-extrude (square 0.1 :center true) :radius 8 :height 5.1 :pitch 1)`)
		if n := k.Count("Pipe"); n != 6 {
			t.Errorf("segments = %d, want 6", n)
		}
		sh := partShape(t, d, design.DefaultPartName)
		if sh.Max[0] < 8 || sh.Max[0] > 8.2 {
			t.Errorf("radial extent = %g, want within (8, 8.2]", sh.Max[0])
		}
	})
}

func TestFeatureBuiltins(t *testing.T) {
	d, _ := evalOK(t, `
(defpart "round" (fillet (cube 10) 1))
(defpart "bevel" (chamfer (cube 10) 1))
(defpart "taper" (draft (cube 10) (deg 5)))
`)
	if n := partShape(t, d, "round").Filleted; n != 12 {
		t.Errorf("filleted edges = %d, want 12", n)
	}
	if n := partShape(t, d, "bevel").Chamfered; n != 12 {
		t.Errorf("chamfered edges = %d, want 12", n)
	}
	if n := len(partShape(t, d, "taper").Drafted); n != 4 {
		t.Errorf("drafted faces = %d, want 4", n)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"arity", `(cube)`, "cube: expected 1 arguments, got 0"},
		{"not a number", `(sphere "big")`, "expected number"},
		{"not a profile", `(linear-extrude (cube 1) 2)`, "linear-extrude: expected profile"},
		{"missing helix keyword", `(helix-extrude (circle 1) :radius 2 :pitch 1)`, "missing :height"},
		{"kernel failure", `(sphere -1)`, "sphere"},
		{"bad bool", `(cube 1 :center 3)`, "center: expected true or false"},
		{"transform target", `(translate 3 (vec3 1 0 0))`, "expected solid, profile or wire"},
		{"mixed union", `(union (cube 1) (circle 1))`, "argument 2: expected solid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine()
			_, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("errors = %v, want %q", evalErrs, tt.want)
			}
		})
	}
}

func TestExampleScripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.csg"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example scripts")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			eng, _ := newTestEngine()
			res, err := eng.Run(string(src))
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			if len(res.Errors) > 0 {
				t.Fatalf("errors: %v", res.Errors)
			}
			if res.Design.Len() == 0 {
				t.Error("example defines no parts")
			}
		})
	}
}
