package eval

import (
	"fmt"

	"github.com/gnolang/noreturn/internal/expr"
)

// Evaluator evaluates expression trees.
type Evaluator struct{}

// NewEvaluator creates a new evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Eval evaluates root in a copy of env. Locals stored by root do not leak
// into env.
func (ev *Evaluator) Eval(root expr.Expression, env *Env) Result {
	f := &frame{env: env.Clone()}
	val := f.eval(root)
	switch {
	case f.unknown != "":
		return UnknownResult(f.unknown)
	case f.returned:
		return ReturnResult(f.ret, f.calls)
	default:
		return ContinueResult(val, f.calls)
	}
}

// frame is the state of one evaluation. Once returned or unknown is set
// every enclosing node stops evaluating.
type frame struct {
	env   *Env
	calls []CallRecord

	returned bool
	ret      Value
	unknown  string
}

func (f *frame) stopped() bool {
	return f.returned || f.unknown != ""
}

func (f *frame) fail(format string, args ...any) Value {
	if f.unknown == "" {
		f.unknown = fmt.Sprintf(format, args...)
	}
	return nil
}

func (f *frame) eval(e expr.Expression) Value {
	if f.stopped() {
		return nil
	}
	switch e := e.(type) {
	case nil:
		return f.fail("missing expression")

	case expr.ReturnStatement:
		var v Value = VoidValue{}
		if e.Value != nil {
			if v = f.eval(e.Value); f.stopped() {
				return nil
			}
		}
		f.returned, f.ret = true, v
		return nil

	case expr.CodeBlock:
		var last Value = VoidValue{}
		for _, s := range e.Stmts {
			if last = f.eval(s); f.stopped() {
				return nil
			}
		}
		return last

	case expr.Condition:
		c := f.eval(e.Cond)
		if f.stopped() {
			return nil
		}
		b, ok := c.(BoolValue)
		if !ok {
			return f.fail("condition %s is %s, not bool", e.Cond, c)
		}
		if b.Val {
			return f.eval(e.True)
		}
		return f.eval(e.False)

	case expr.ReadLocalVariable:
		v := f.env.Local(e.Name)
		if v == nil {
			return f.fail("local %s read before it is stored", e.Name)
		}
		return v

	case expr.StoreLocalVariable:
		v := f.eval(e.Value)
		if f.stopped() {
			return nil
		}
		f.env.SetLocal(e.Name, v)
		return VoidValue{}

	case expr.StructFieldAccess:
		base := f.eval(e.Base)
		if f.stopped() {
			return nil
		}
		s, ok := base.(StructValue)
		if !ok {
			return f.fail("field access .%s on %s", e.Name, base)
		}
		v, ok := s.Fields[e.Name]
		if !ok {
			return f.fail("no field %s in %s", e.Name, s)
		}
		return v

	case expr.Struct:
		fields := make(map[string]Value, len(e.Values))
		for _, name := range e.FieldNames() {
			v := f.eval(e.Values[name])
			if f.stopped() {
				return nil
			}
			fields[name] = v
		}
		return StructValue{Fields: fields}

	case expr.BoolLiteral:
		return BoolValue{Val: e.Value}
	case expr.IntLiteral:
		return IntValue{Val: e.Value}
	case expr.FloatLiteral:
		return FloatValue{Val: e.Value}
	case expr.StringLiteral:
		return StringValue{Val: e.Value}

	case expr.PropertyReference:
		v := f.env.Property(e.Name)
		if v == nil {
			return f.fail("property %s has no value", e.Name)
		}
		return v

	case expr.UnaryOp:
		v := f.eval(e.Operand)
		if f.stopped() {
			return nil
		}
		return f.evalUnary(e.Op, v)

	case expr.BinaryExpression:
		l := f.eval(e.Lhs)
		if f.stopped() {
			return nil
		}
		r := f.eval(e.Rhs)
		if f.stopped() {
			return nil
		}
		return f.evalBinary(e.Op, l, r)

	case expr.FunctionCall:
		args := make([]Value, 0, len(e.Args))
		for _, a := range e.Args {
			v := f.eval(a)
			if f.stopped() {
				return nil
			}
			args = append(args, v)
		}
		f.calls = append(f.calls, CallRecord{Func: e.Name, Args: args})
		return ZeroValue(e.Ty())

	default:
		panic(fmt.Sprintf("eval: unhandled expression kind %T", e))
	}
}

func (f *frame) evalUnary(op expr.UnaryOperator, v Value) Value {
	switch op {
	case expr.OpNot:
		if b, ok := v.(BoolValue); ok {
			return BoolValue{Val: !b.Val}
		}
	case expr.OpNeg:
		switch n := v.(type) {
		case IntValue:
			return IntValue{Val: -n.Val}
		case FloatValue:
			return FloatValue{Val: -n.Val}
		}
	}
	return f.fail("cannot apply %s to %s", op, v)
}

func (f *frame) evalBinary(op expr.BinaryOperator, left, right Value) Value {
	switch op {
	case expr.OpEq:
		return BoolValue{Val: left.Equal(right)}
	case expr.OpNeq:
		return BoolValue{Val: !left.Equal(right)}
	case expr.OpAnd, expr.OpOr:
		l, lok := left.(BoolValue)
		r, rok := right.(BoolValue)
		if lok && rok {
			if op == expr.OpAnd {
				return BoolValue{Val: l.Val && r.Val}
			}
			return BoolValue{Val: l.Val || r.Val}
		}
	}

	switch l := left.(type) {
	case IntValue:
		if r, ok := right.(IntValue); ok {
			return f.intBinary(op, l.Val, r.Val)
		}
	case FloatValue:
		if r, ok := right.(FloatValue); ok {
			return f.floatBinary(op, l.Val, r.Val)
		}
	case StringValue:
		if r, ok := right.(StringValue); ok {
			switch op {
			case expr.OpAdd:
				return StringValue{Val: l.Val + r.Val}
			case expr.OpLt:
				return BoolValue{Val: l.Val < r.Val}
			case expr.OpGt:
				return BoolValue{Val: l.Val > r.Val}
			}
		}
	}
	return f.fail("cannot apply %s to %s and %s", op, left, right)
}

func (f *frame) intBinary(op expr.BinaryOperator, l, r int64) Value {
	switch op {
	case expr.OpAdd:
		return IntValue{Val: l + r}
	case expr.OpSub:
		return IntValue{Val: l - r}
	case expr.OpMul:
		return IntValue{Val: l * r}
	case expr.OpDiv, expr.OpMod:
		if r == 0 {
			return f.fail("division by zero")
		}
		if op == expr.OpDiv {
			return IntValue{Val: l / r}
		}
		return IntValue{Val: l % r}
	case expr.OpLt:
		return BoolValue{Val: l < r}
	case expr.OpLte:
		return BoolValue{Val: l <= r}
	case expr.OpGt:
		return BoolValue{Val: l > r}
	case expr.OpGte:
		return BoolValue{Val: l >= r}
	}
	return f.fail("cannot apply %s to int", op)
}

func (f *frame) floatBinary(op expr.BinaryOperator, l, r float64) Value {
	switch op {
	case expr.OpAdd:
		return FloatValue{Val: l + r}
	case expr.OpSub:
		return FloatValue{Val: l - r}
	case expr.OpMul:
		return FloatValue{Val: l * r}
	case expr.OpDiv:
		return FloatValue{Val: l / r}
	case expr.OpLt:
		return BoolValue{Val: l < r}
	case expr.OpLte:
		return BoolValue{Val: l <= r}
	case expr.OpGt:
		return BoolValue{Val: l > r}
	case expr.OpGte:
		return BoolValue{Val: l >= r}
	}
	return f.fail("cannot apply %s to float", op)
}
