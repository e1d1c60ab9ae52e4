package eval

import (
	"fmt"

	"github.com/gnolang/noreturn/internal/document"
	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

// Transformation is one rewritten binding to verify.
type Transformation struct {
	Component  string
	Binding    string
	Original   expr.Expression
	Rewritten  expr.Expression
	ReturnType tt.Type
	Properties []document.Property
}

// TransformationResult holds the result of verifying a single transformation.
type TransformationResult struct {
	Context Transformation
	Report  VerificationReport
}

// BatchVerificationReport summarizes the results of batch verification.
type BatchVerificationReport struct {
	Total         int
	Equivalent    int
	NotEquivalent int
	Unknown       int
	Results       []TransformationResult
}

// BatchVerify verifies multiple transformations and returns a summary.
func (v *Verifier) BatchVerify(transformations []Transformation) BatchVerificationReport {
	report := BatchVerificationReport{
		Total:   len(transformations),
		Results: make([]TransformationResult, len(transformations)),
	}

	for i, t := range transformations {
		vr := v.CheckEquivalence(t.Original, t.Rewritten, t.ReturnType, propertyTypes(t.Properties))
		report.Results[i] = TransformationResult{Context: t, Report: vr}

		switch vr.Result {
		case Equivalent:
			report.Equivalent++
		case NotEquivalent:
			report.NotEquivalent++
		case Unknown:
			report.Unknown++
		}
	}

	return report
}

func propertyTypes(props []document.Property) map[string]tt.Type {
	out := make(map[string]tt.Type, len(props))
	for _, p := range props {
		out[p.Name] = p.Type
	}
	return out
}

// Summary returns a human-readable summary of the batch verification.
func (r BatchVerificationReport) Summary() string {
	return fmt.Sprintf(
		"Verified %d rewrites: %d equivalent, %d not equivalent, %d unknown",
		r.Total, r.Equivalent, r.NotEquivalent, r.Unknown,
	)
}

// Failures returns the transformations that failed verification.
func (r BatchVerificationReport) Failures() []TransformationResult {
	failed := make([]TransformationResult, 0)
	for _, res := range r.Results {
		if res.Report.Result == NotEquivalent {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether no transformation was disproved.
func (r BatchVerificationReport) OK() bool {
	return r.NotEquivalent == 0
}
