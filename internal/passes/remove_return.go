package passes

import (
	"fmt"

	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

// Record field names. A record of type {condition: bool, actual: T,
// returned: R} stands for `if condition { actual } else { return returned }`.
const (
	FieldCondition = "condition"
	FieldActual    = "actual"
	FieldReturned  = "returned"
)

type resultKind int

const (
	// resultPlain: no return is reachable.
	resultPlain resultKind = iota
	// resultUnconditional: the expression always returns.
	resultUnconditional
	// resultGuarded: a conditional where exactly one arm returns.
	resultGuarded
	// resultMerged: a record expression, see FieldCondition.
	resultMerged
)

func (k resultKind) String() string {
	switch k {
	case resultPlain:
		return "Plain"
	case resultUnconditional:
		return "Unconditional"
	case resultGuarded:
		return "Guarded"
	case resultMerged:
		return "Merged"
	default:
		return "?"
	}
}

// result is the classification of a processed sub-expression. Absent
// values are nil.
type result struct {
	kind resultKind

	// value is the expression for Plain, the returned value for
	// Unconditional and the record for Merged.
	value expr.Expression

	// Guarded only. cond is true when execution continues.
	pre      []expr.Expression
	cond     expr.Expression
	returned expr.Expression
	actual   expr.Expression

	// Merged only.
	hasValue       bool
	hasReturnValue bool
}

// actualType is the value type of the arm of a Guarded result that
// continues.
func (res result) actualType() tt.Type {
	if res.actual == nil {
		return tt.Void{}
	}
	return res.actual.Ty()
}

func plain(e expr.Expression) result {
	return result{kind: resultPlain, value: e}
}

func unconditional(v expr.Expression) result {
	return result{kind: resultUnconditional, value: v}
}

func merged(record expr.Expression, hasValue, hasReturnValue bool) result {
	return result{kind: resultMerged, value: record, hasValue: hasValue, hasReturnValue: hasReturnValue}
}

// remover rewrites one root expression.
type remover struct {
	retTy tt.Type
	names *Namer
	// temps lists the temporaries minted for this root.
	temps []string
}

// processExpression classifies e. want is the type of the position e is
// evaluated in, or nil when e is not the value of an enclosing expression.
// An e that always returns, or whose value is discarded, takes want as its
// type so that records built for it match those of its siblings.
func (r *remover) processExpression(e expr.Expression, want tt.Type) result {
	ty := e.Ty()
	if want != nil && (tt.IsInvalid(ty) || tt.IsVoid(want)) {
		ty = want
	}
	switch e := e.(type) {
	case expr.ReturnStatement:
		return unconditional(e.Value)

	case expr.CodeBlock:
		return r.processCodeBlock(e.Stmts, ty)

	case expr.Condition:
		te := r.processExpression(e.True, ty)
		fe := r.processExpression(e.False, ty)
		switch {
		case te.kind == resultPlain && fe.kind == resultPlain:
			return plain(expr.Condition{Cond: e.Cond, True: te.value, False: fe.value})
		case te.kind == resultPlain && fe.kind == resultUnconditional:
			return result{
				kind:     resultGuarded,
				cond:     e.Cond,
				returned: fe.value,
				actual:   cleanupEmptyBlock(te.value),
			}
		case te.kind == resultUnconditional && fe.kind == resultPlain:
			return result{
				kind:     resultGuarded,
				cond:     expr.Not(e.Cond),
				returned: te.value,
				actual:   cleanupEmptyBlock(fe.value),
			}
		case te.kind == resultUnconditional && fe.kind == resultUnconditional:
			return unconditional(expr.If(e.Cond, orEmptyBlock(te.value), orEmptyBlock(fe.value)))
		default:
			record := expr.Condition{
				Cond:  e.Cond,
				True:  r.intoReturnObject(te, ty),
				False: r.intoReturnObject(fe, ty),
			}
			return merged(record, !tt.IsVoidOrInvalid(ty), !tt.IsVoidOrInvalid(r.retTy))
		}

	default:
		// returns never appear inside other kinds; the driver checks the
		// output for leftovers
		return plain(e)
	}
}

// cleanupEmptyBlock returns nil for an empty code block and e otherwise.
func cleanupEmptyBlock(e expr.Expression) expr.Expression {
	if expr.IsEmptyBlock(e) {
		return nil
	}
	return e
}

// orEmptyBlock returns an empty code block for nil and e otherwise.
func orEmptyBlock(e expr.Expression) expr.Expression {
	if e == nil {
		return expr.Block()
	}
	return e
}

// processCodeBlock folds the statements of a block of type ty left to right.
func (r *remover) processCodeBlock(stmts []expr.Expression, ty tt.Type) result {
	out := make([]expr.Expression, 0, len(stmts))
	for i, s := range stmts {
		last := i == len(stmts)-1
		var want tt.Type
		if last {
			want = ty
		}
		res := r.processExpression(s, want)
		switch res.kind {
		case resultPlain:
			out = append(out, res.value)

		case resultUnconditional:
			// everything after the return is dead
			if res.value != nil {
				out = append(out, res.value)
			}
			if len(out) == 0 {
				return unconditional(nil)
			}
			return unconditional(expr.CodeBlock{Stmts: out})

		case resultGuarded:
			out = append(out, res.pre...)
			if last {
				res.pre = out
				return res
			}
			res.pre = nil
			// only condition and returned are read back from this record
			record := r.intoReturnObject(res, res.actualType())
			return r.continueCodeBlock(stmts[i+1:], ty, record, out,
				!tt.IsVoidOrInvalid(r.retTy), !tt.IsVoidOrInvalid(ty))

		case resultMerged:
			if last {
				return merged(codeBlockWithExpr(out, res.value), res.hasValue, res.hasReturnValue)
			}
			// the continuing value now comes from the rest of the block
			return r.continueCodeBlock(stmts[i+1:], ty, res.value, out,
				res.hasReturnValue, !tt.IsVoidOrInvalid(ty))

		default:
			panic(fmt.Sprintf("passes: unhandled result kind %s", res.kind))
		}
	}
	return plain(expr.CodeBlock{Stmts: out})
}

// continueCodeBlock stores record in a fresh temporary and runs rest only
// when the record says execution continues.
func (r *remover) continueCodeBlock(
	rest []expr.Expression,
	ty tt.Type,
	record expr.Expression,
	stmts []expr.Expression,
	hasReturnValue, hasValue bool,
) result {
	restRecord := r.intoReturnObject(r.processCodeBlock(rest, ty), ty)

	name := r.names.MergeName()
	r.temps = append(r.temps, name)
	load := expr.Load(name, record.Ty())

	var returned expr.Expression
	if hasReturnValue {
		returned = expr.Field(load, FieldReturned)
	}
	stmts = append(stmts,
		expr.Store(name, record),
		expr.If(
			expr.Field(load, FieldCondition),
			restRecord,
			r.intoReturnObject(unconditional(returned), ty),
		),
	)
	return merged(expr.CodeBlock{Stmts: stmts}, hasValue, hasReturnValue)
}

// intoReturnObject promotes res to a record expression. ty is the value
// type of the expression res was classified from.
func (r *remover) intoReturnObject(res result, ty tt.Type) expr.Expression {
	switch res.kind {
	case resultPlain:
		actualTy := res.value.Ty()
		if tt.IsVoid(ty) {
			// the value is discarded, keep it for its effects
			actualTy = ty
		}
		return makeStruct(
			structField{FieldCondition, tt.Bool{}, expr.Bool(true)},
			structField{FieldActual, actualTy, res.value},
			structField{FieldReturned, r.retTy, expr.DefaultValueFor(r.retTy)},
		)

	case resultGuarded:
		actual := res.actual
		if actual == nil {
			actual = expr.DefaultValueFor(ty)
		}
		o := expr.If(
			res.cond,
			r.intoReturnObject(plain(actual), ty),
			r.intoReturnObject(unconditional(res.returned), ty),
		)
		return codeBlockWithExpr(res.pre, o)

	case resultUnconditional:
		fields := []structField{{FieldCondition, tt.Bool{}, expr.Bool(false)}}
		if res.value != nil {
			fields = append(fields, structField{FieldReturned, r.retTy, res.value})
		}
		if !tt.IsVoidOrInvalid(ty) {
			fields = append(fields, structField{FieldActual, ty, expr.DefaultValueFor(ty)})
		}
		return makeStruct(fields...)

	case resultMerged:
		return res.value

	default:
		panic(fmt.Sprintf("passes: unhandled result kind %s", res.kind))
	}
}

// toExpression materializes res as a return-free expression of type ty.
func (r *remover) toExpression(res result, ty tt.Type) expr.Expression {
	switch res.kind {
	case resultPlain:
		return res.value

	case resultUnconditional:
		if res.value == nil {
			return expr.Block()
		}
		return res.value

	case resultGuarded:
		actual, returned := res.actual, res.returned
		if actual == nil {
			actual = expr.Block()
		}
		if returned == nil {
			returned = expr.Block()
		}
		stmts := append(res.pre, expr.If(res.cond, actual, returned))
		return expr.CodeBlock{Stmts: stmts}

	case resultMerged:
		name := r.names.MaterializeName()
		r.temps = append(r.temps, name)
		load := expr.Load(name, res.value.Ty())

		actual := expr.DefaultValueFor(ty)
		if res.hasValue {
			actual = expr.Field(load, FieldActual)
		}
		returned := expr.DefaultValueFor(ty)
		if res.hasReturnValue {
			returned = expr.Field(load, FieldReturned)
		}
		return expr.Block(
			expr.Store(name, res.value),
			expr.If(expr.Field(load, FieldCondition), actual, returned),
		)

	default:
		panic(fmt.Sprintf("passes: unhandled result kind %s", res.kind))
	}
}

// codeBlockWithExpr appends e to stmts, or returns e alone when stmts is
// empty.
func codeBlockWithExpr(stmts []expr.Expression, e expr.Expression) expr.Expression {
	if len(stmts) == 0 {
		return e
	}
	return expr.CodeBlock{Stmts: append(stmts, e)}
}

type structField struct {
	name  string
	ty    tt.Type
	value expr.Expression
}

// makeStruct builds a record from fields. Void values are emitted as
// statements ahead of the record and Invalid values are dropped.
func makeStruct(fields ...structField) expr.Expression {
	var (
		types  []tt.Field
		values = make(map[string]expr.Expression, len(fields))
		voids  []expr.Expression
	)
	for _, f := range fields {
		if tt.IsVoidOrInvalid(f.ty) {
			if !tt.IsInvalid(f.ty) {
				voids = append(voids, f.value)
			}
			continue
		}
		types = append(types, tt.Field{Name: f.name, Type: f.ty})
		values[f.name] = f.value
	}
	return codeBlockWithExpr(voids, expr.Struct{Type: tt.NewStruct(types...), Values: values})
}
