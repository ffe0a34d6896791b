package design

import (
	"fmt"
	"math"

	"github.com/chazu/csgstep/pkg/csg"
	"github.com/chazu/csgstep/pkg/kernel"
)

// degenerateExtent is the smallest bounding box side, in mm, below which
// a part is reported as flat.
const degenerateExtent = 1e-6

// ValidationSeverity indicates whether a finding blocks export or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Part     string             // which part has the problem (empty if design-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] part %s: %s", e.Severity, e.Part, e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate checks every part of d. It is read-only. Warnings are also
// logged at warn level.
func Validate(d *Design) ValidationResult {
	var findings []ValidationError
	findings = append(findings, validateNotEmpty(d)...)
	findings = append(findings, validateKinds(d)...)
	findings = append(findings, validateBounds(d)...)
	findings = append(findings, validateKernels(d)...)

	var res ValidationResult
	for _, f := range findings {
		if f.Severity == SeverityError {
			res.Errors = append(res.Errors, f)
			continue
		}
		csg.Logger().Warn("design validation", "part", f.Part, "message", f.Message)
		res.Warnings = append(res.Warnings, f)
	}
	return res
}

// validateNotEmpty reports a design without parts and parts without
// geometry.
func validateNotEmpty(d *Design) []ValidationError {
	if d.Len() == 0 {
		return []ValidationError{{Message: "design has no parts", Severity: SeverityError}}
	}
	var errs []ValidationError
	for _, p := range d.parts {
		if p.Solid.IsEmpty() {
			errs = append(errs, ValidationError{
				Part:     p.Name,
				Message:  "part is empty",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateKinds reports parts whose handle is not a volume. Exporters
// only accept solids and compounds of solids.
func validateKinds(d *Design) []ValidationError {
	var errs []ValidationError
	for _, p := range d.parts {
		if p.Solid.IsEmpty() {
			continue
		}
		if k := p.Kind(); !isSolidKind(k) {
			errs = append(errs, ValidationError{
				Part:     p.Name,
				Message:  fmt.Sprintf("part is a %s, not a solid", k),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func isSolidKind(k kernel.ShapeKind) bool {
	return k == kernel.KindSolid || k == kernel.KindCompound
}

// validateBounds reports non-finite bounds as errors and flat bounds as
// warnings. Parts that are not solids are left to validateKinds.
func validateBounds(d *Design) []ValidationError {
	var errs []ValidationError
	for _, p := range d.parts {
		if p.Solid.IsEmpty() || !isSolidKind(p.Kind()) {
			continue
		}
		min, max := p.Solid.BoundingBox()
		finite := true
		for i := 0; i < 3; i++ {
			if math.IsNaN(min[i]) || math.IsNaN(max[i]) || math.IsInf(min[i], 0) || math.IsInf(max[i], 0) {
				finite = false
			}
		}
		if !finite {
			errs = append(errs, ValidationError{
				Part:     p.Name,
				Message:  fmt.Sprintf("bounding box is not finite: %v %v", min, max),
				Severity: SeverityError,
			})
			continue
		}
		for i, axis := range [3]string{"x", "y", "z"} {
			if max[i]-min[i] < degenerateExtent {
				errs = append(errs, ValidationError{
					Part:     p.Name,
					Message:  fmt.Sprintf("bounding box is flat along %s", axis),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}
	return errs
}

// validateKernels reports parts built on a different kernel than the
// first part.
func validateKernels(d *Design) []ValidationError {
	var (
		errs  []ValidationError
		first kernel.Kernel
	)
	for _, p := range d.parts {
		if p.Solid.IsEmpty() {
			continue
		}
		if first == nil {
			first = p.Solid.Kernel()
			continue
		}
		if p.Solid.Kernel() != first {
			errs = append(errs, ValidationError{
				Part:     p.Name,
				Message:  "part was built on a different kernel",
				Severity: SeverityError,
			})
		}
	}
	return errs
}
