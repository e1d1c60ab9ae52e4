package eval

import (
	"fmt"
	"strings"
)

// ResultKind represents the kind of evaluation result.
type ResultKind int

const (
	// ResultContinue indicates the root completed normally.
	ResultContinue ResultKind = iota
	// ResultReturn indicates a return statement was executed.
	ResultReturn
	// ResultUnknown indicates the result cannot be determined.
	ResultUnknown
)

func (k ResultKind) String() string {
	switch k {
	case ResultContinue:
		return "Continue"
	case ResultReturn:
		return "Return"
	case ResultUnknown:
		return "Unknown"
	default:
		return "?"
	}
}

// Result represents the outcome of evaluating a root expression.
type Result struct {
	Kind ResultKind
	// Value is the completion value for Continue and the returned value for
	// Return. A return without a value yields VoidValue.
	Value Value
	Calls []CallRecord
	// Detail explains an Unknown result.
	Detail string
}

// CallRecord represents a function call that was executed.
type CallRecord struct {
	Func string
	Args []Value
}

func (c CallRecord) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

// ContinueResult creates a Continue result.
func ContinueResult(val Value, calls []CallRecord) Result {
	return Result{Kind: ResultContinue, Value: val, Calls: calls}
}

// ReturnResult creates a Return result.
func ReturnResult(val Value, calls []CallRecord) Result {
	return Result{Kind: ResultReturn, Value: val, Calls: calls}
}

// UnknownResult creates an Unknown result.
func UnknownResult(detail string) Result {
	return Result{Kind: ResultUnknown, Detail: detail}
}

// Final returns the value the root produces to its caller, whether it
// returned or completed normally.
func (r Result) Final() Value {
	return r.Value
}

// CalledFuncs returns the names of the recorded calls in order.
func (r Result) CalledFuncs() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Func
	}
	return names
}

// String returns a string representation of the result.
func (r Result) String() string {
	switch r.Kind {
	case ResultContinue:
		return fmt.Sprintf("Continue(%s)", r.Value)
	case ResultReturn:
		return fmt.Sprintf("Return(%s)", r.Value)
	case ResultUnknown:
		return "Unknown(" + r.Detail + ")"
	default:
		return "?"
	}
}

func callsEqual(a, b CallRecord) bool {
	if a.Func != b.Func || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(b.Args[i]) {
			return false
		}
	}
	return true
}

func callSequencesEqual(a, b []CallRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !callsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
