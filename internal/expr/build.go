package expr

import tt "github.com/gnolang/noreturn/internal/types"

// Helper functions to construct expression nodes

// Return creates a return statement with a value.
func Return(v Expression) Expression {
	return ReturnStatement{Value: v}
}

// ReturnVoid creates a return statement without a value.
func ReturnVoid() Expression {
	return ReturnStatement{}
}

// Block creates a code block. A nil statement list is normalized to an
// empty one.
func Block(stmts ...Expression) Expression {
	if stmts == nil {
		stmts = []Expression{}
	}
	return CodeBlock{Stmts: stmts}
}

// If creates a condition.
func If(cond, then, els Expression) Expression {
	return Condition{Cond: cond, True: then, False: els}
}

// Bool creates a boolean literal.
func Bool(v bool) Expression {
	return BoolLiteral{Value: v}
}

// Int creates an integer literal.
func Int(v int64) Expression {
	return IntLiteral{Value: v}
}

// Float creates a floating point literal.
func Float(v float64) Expression {
	return FloatLiteral{Value: v}
}

// Str creates a string literal.
func Str(v string) Expression {
	return StringLiteral{Value: v}
}

// Prop creates a property reference.
func Prop(name string, ty tt.Type) Expression {
	return PropertyReference{Name: name, Type: ty}
}

// Call creates a function call returning a value of type ty.
func Call(name string, ty tt.Type, args ...Expression) Expression {
	return FunctionCall{Name: name, Args: args, ReturnType: ty}
}

// Not creates a logical negation.
func Not(e Expression) Expression {
	return UnaryOp{Op: OpNot, Operand: e}
}

// Neg creates an arithmetic negation.
func Neg(e Expression) Expression {
	return UnaryOp{Op: OpNeg, Operand: e}
}

// Binary creates a binary expression.
func Binary(op BinaryOperator, lhs, rhs Expression) Expression {
	return BinaryExpression{Op: op, Lhs: lhs, Rhs: rhs}
}

// Load creates a local variable read.
func Load(name string, ty tt.Type) Expression {
	return ReadLocalVariable{Name: name, Type: ty}
}

// Store creates a local variable write.
func Store(name string, v Expression) Expression {
	return StoreLocalVariable{Name: name, Value: v}
}

// Field creates a struct field access.
func Field(base Expression, name string) Expression {
	return StructFieldAccess{Base: base, Name: name}
}

// MakeStruct creates a struct value whose type is derived from the values.
func MakeStruct(values map[string]Expression) Expression {
	fields := make([]tt.Field, 0, len(values))
	for name, v := range values {
		fields = append(fields, tt.Field{Name: name, Type: v.Ty()})
	}
	return Struct{Type: tt.NewStruct(fields...), Values: values}
}

// DefaultValueFor returns the canonical zero value of ty. Void and Invalid
// map to an empty code block.
func DefaultValueFor(ty tt.Type) Expression {
	switch ty := ty.(type) {
	case tt.Bool:
		return BoolLiteral{}
	case tt.Int:
		return IntLiteral{}
	case tt.Float:
		return FloatLiteral{}
	case tt.String:
		return StringLiteral{}
	case tt.Struct:
		values := make(map[string]Expression, len(ty.Fields))
		for _, f := range ty.Fields {
			values[f.Name] = DefaultValueFor(f.Type)
		}
		return Struct{Type: ty, Values: values}
	default:
		return CodeBlock{Stmts: []Expression{}}
	}
}

// IsEmptyBlock reports whether e is a code block without statements.
func IsEmptyBlock(e Expression) bool {
	b, ok := e.(CodeBlock)
	return ok && len(b.Stmts) == 0
}
