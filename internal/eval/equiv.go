package eval

import (
	"fmt"
	"sort"

	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

// VerificationResult represents the result of equivalence verification.
type VerificationResult int

const (
	_ VerificationResult = iota
	// Equivalent indicates the rewritten root behaves like the original.
	Equivalent
	// NotEquivalent indicates an input on which they differ was found.
	NotEquivalent
	// Unknown indicates equivalence cannot be determined.
	Unknown
)

func (r VerificationResult) String() string {
	switch r {
	case Equivalent:
		return "Equivalent"
	case NotEquivalent:
		return "NotEquivalent"
	case Unknown:
		return "Unknown"
	default:
		return "?"
	}
}

// ReasonCode provides a reason for the verification result.
type ReasonCode int

const (
	ReasonNone ReasonCode = iota
	ReasonSameResult
	ReasonDifferentValue
	ReasonDifferentCalls
	ReasonLeftoverReturn
	ReasonUnknownInput
	ReasonTooManyInputs
)

func (r ReasonCode) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonSameResult:
		return "same result for all inputs"
	case ReasonDifferentValue:
		return "different values"
	case ReasonDifferentCalls:
		return "different call sequences"
	case ReasonLeftoverReturn:
		return "rewritten expression still returns"
	case ReasonUnknownInput:
		return "evaluation produced unknown result"
	case ReasonTooManyInputs:
		return "too many inputs to enumerate"
	default:
		return "unknown"
	}
}

// VerificationReport provides detailed information about verification.
type VerificationReport struct {
	Result VerificationResult
	Reason ReasonCode
	Detail string
	// Inputs is the assignment that disproved equivalence, if any.
	Inputs *Env
	// Checked is the number of input assignments evaluated.
	Checked int
}

// Config controls verification.
type Config struct {
	// MaxInputs caps the number of bool properties enumerated.
	MaxInputs int
}

// DefaultConfig returns the default verification configuration.
func DefaultConfig() Config {
	return Config{MaxInputs: 12}
}

// Verifier checks that a rewritten root is equivalent to its original.
type Verifier struct {
	evaluator *Evaluator
	config    Config
}

// NewVerifier creates a new verifier with the given configuration.
func NewVerifier(config Config) *Verifier {
	return &Verifier{
		evaluator: NewEvaluator(),
		config:    config,
	}
}

// CheckEquivalenceWithEnv evaluates both roots with the inputs of env.
//
// The original may return or complete normally; its final value is
// compared to the completion value of the rewritten root, which must not
// return. Values are not compared when retTy is Void or Invalid. Call
// sequences must always match.
func (v *Verifier) CheckEquivalenceWithEnv(original, rewritten expr.Expression, retTy tt.Type, env *Env) VerificationReport {
	r1 := v.evaluator.Eval(original, env)
	r2 := v.evaluator.Eval(rewritten, env)

	if r1.Kind == ResultUnknown || r2.Kind == ResultUnknown {
		detail := r1.Detail
		if detail == "" {
			detail = r2.Detail
		}
		return VerificationReport{Result: Unknown, Reason: ReasonUnknownInput, Detail: detail, Inputs: env.Inputs(), Checked: 1}
	}

	if r2.Kind == ResultReturn {
		return VerificationReport{
			Result:  NotEquivalent,
			Reason:  ReasonLeftoverReturn,
			Detail:  "rewritten expression returned " + r2.Value.String(),
			Inputs:  env.Inputs(),
			Checked: 1,
		}
	}

	if !tt.IsVoidOrInvalid(retTy) && !r1.Final().Equal(r2.Final()) {
		return VerificationReport{
			Result:  NotEquivalent,
			Reason:  ReasonDifferentValue,
			Detail:  fmt.Sprintf("values differ: %s vs %s", r1.Final(), r2.Final()),
			Inputs:  env.Inputs(),
			Checked: 1,
		}
	}

	if !callSequencesEqual(r1.Calls, r2.Calls) {
		return VerificationReport{
			Result:  NotEquivalent,
			Reason:  ReasonDifferentCalls,
			Detail:  fmt.Sprintf("call sequences differ: %v vs %v", r1.Calls, r2.Calls),
			Inputs:  env.Inputs(),
			Checked: 1,
		}
	}

	return VerificationReport{
		Result:  Equivalent,
		Reason:  ReasonSameResult,
		Detail:  "expressions produce identical results",
		Checked: 1,
	}
}

// CheckEquivalence checks both roots under every assignment of the bool
// properties in props. Other properties take their zero value.
func (v *Verifier) CheckEquivalence(original, rewritten expr.Expression, retTy tt.Type, props map[string]tt.Type) VerificationReport {
	envs, err := v.Assignments(props)
	if err != nil {
		return VerificationReport{Result: Unknown, Reason: ReasonTooManyInputs, Detail: err.Error()}
	}

	checked := 0
	for _, env := range envs {
		report := v.CheckEquivalenceWithEnv(original, rewritten, retTy, env)
		checked++
		if report.Result != Equivalent {
			report.Checked = checked
			return report
		}
	}
	return VerificationReport{
		Result:  Equivalent,
		Reason:  ReasonSameResult,
		Detail:  fmt.Sprintf("identical results for %d inputs", checked),
		Checked: checked,
	}
}

// Assignments enumerates every assignment of the bool properties of props,
// in a deterministic order.
func (v *Verifier) Assignments(props map[string]tt.Type) ([]*Env, error) {
	base := NewEnv()
	var bools []string
	for name, ty := range props {
		if _, ok := ty.(tt.Bool); ok {
			bools = append(bools, name)
			continue
		}
		base.SetProperty(name, ZeroValue(ty))
	}
	sort.Strings(bools)

	if v.config.MaxInputs > 0 && len(bools) > v.config.MaxInputs {
		return nil, fmt.Errorf("%d bool inputs exceed the limit of %d", len(bools), v.config.MaxInputs)
	}

	n := 1 << len(bools)
	envs := make([]*Env, 0, n)
	for mask := 0; mask < n; mask++ {
		env := base.Clone()
		for i, name := range bools {
			env.SetProperty(name, BoolValue{Val: mask&(1<<i) != 0})
		}
		envs = append(envs, env)
	}
	return envs, nil
}
