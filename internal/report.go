package internal

import (
	"github.com/gnolang/noreturn/internal/eval"
	"github.com/gnolang/noreturn/internal/passes"
)

// Rewrite describes one binding whose return statements were removed.
type Rewrite struct {
	Component   string
	Binding     string
	ReturnType  string
	Temporaries []string
	Before      string
	After       string

	// Verification is empty when the rewrite was not verified.
	Verification string
	Reason       string
	Detail       string

	// Problems lists structural errors found in the output.
	Problems []string
}

// Verified reports whether the rewrite was proven equivalent.
func (r Rewrite) Verified() bool {
	return r.Verification == eval.Equivalent.String()
}

// Failed reports whether the rewrite was disproved or is malformed.
func (r Rewrite) Failed() bool {
	return r.Verification == eval.NotEquivalent.String() || len(r.Problems) > 0
}

// Report is the outcome of lowering one document.
type Report struct {
	Filename string
	Document string
	// Bindings is the number of bindings visited.
	Bindings int
	Rewrites []Rewrite
	// Output is the rewritten document encoded as YAML.
	Output []byte
}

// Failed reports whether any rewrite failed.
func (r *Report) Failed() bool {
	for _, rw := range r.Rewrites {
		if rw.Failed() {
			return true
		}
	}
	return false
}

// Temporaries returns the number of temporaries created in the document.
func (r *Report) Temporaries() int {
	n := 0
	for _, rw := range r.Rewrites {
		n += len(rw.Temporaries)
	}
	return n
}

func newRewrite(c passes.Change) Rewrite {
	rw := Rewrite{
		Component:   c.Component,
		Binding:     c.Binding,
		Temporaries: c.Temporaries,
	}
	if c.ReturnType != nil {
		rw.ReturnType = c.ReturnType.String()
	}
	if c.Original != nil {
		rw.Before = c.Original.String()
	}
	return rw
}
