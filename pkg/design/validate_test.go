package design

import (
	"strings"
	"testing"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/kernel"
	"github.com/chazu/csgstep/pkg/kernel/kerneltest"
)

func TestValidate(t *testing.T) {
	k := kerneltest.New()
	m := csg.New(k)

	disc, err := m.Circle(1)
	if err != nil {
		t.Fatal(err)
	}
	flat := csg.Wrap(k, &kerneltest.Shape{Type: kernel.KindSolid, Max: [3]float64{1, 1, 0}})

	tests := []struct {
		name     string
		build    func(d *Design)
		errors   []string
		warnings []string
	}{
		{
			name:   "no parts",
			build:  func(d *Design) {},
			errors: []string{"design has no parts"},
		},
		{
			name:  "valid",
			build: func(d *Design) { d.Add("box", cube(t, m, 1)) },
		},
		{
			name:   "empty part",
			build:  func(d *Design) { d.Add("nothing", csg.Solid{}) },
			errors: []string{"part nothing: part is empty"},
		},
		{
			name:   "face is not a solid",
			build:  func(d *Design) { d.Add("disc", csg.Wrap(k, disc.Handle())) },
			errors: []string{"part disc: part is a face, not a solid"},
		},
		{
			name:     "flat bounds",
			build:    func(d *Design) { d.Add("sheet", flat) },
			warnings: []string{"part sheet: bounding box is flat along z"},
		},
		{
			name: "mixed kernels",
			build: func(d *Design) {
				d.Add("a", cube(t, m, 1))
				d.Add("b", cube(t, csg.New(kerneltest.New()), 1))
			},
			errors: []string{"part b: part was built on a different kernel"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			tt.build(d)
			res := Validate(d)
			check := func(kind string, got []ValidationError, want []string) {
				t.Helper()
				if len(got) != len(want) {
					t.Fatalf("%s = %v, want %v", kind, got, want)
				}
				for i, e := range got {
					if !strings.Contains(e.Error(), want[i]) {
						t.Errorf("%s[%d] = %q, want it to contain %q", kind, i, e.Error(), want[i])
					}
				}
			}
			check("errors", res.Errors, tt.errors)
			check("warnings", res.Warnings, tt.warnings)
			if res.OK() != (len(tt.errors) == 0) {
				t.Errorf("OK() = %v with errors %v", res.OK(), res.Errors)
			}
		})
	}
}

func TestValidationSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Error("unexpected severity names")
	}
	if got := ValidationSeverity(7).String(); got != "ValidationSeverity(7)" {
		t.Errorf("unknown severity = %q", got)
	}
}
