package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tt "github.com/gnolang/noreturn/internal/types"
)

// Expression is a node of the expression tree.
//
// The set of implementations is closed; code that switches over node kinds
// treats every kind it does not name as an opaque value.
type Expression interface {
	isExpression()
	// Ty returns the value type of the expression.
	Ty() tt.Type
	String() string
}

// ReturnStatement exits the enclosing function-like scope.
// Value is nil for a return without a value.
type ReturnStatement struct {
	Value Expression
}

func (ReturnStatement) isExpression() {}
func (ReturnStatement) Ty() tt.Type   { return tt.Invalid{} }
func (e ReturnStatement) String() string {
	if e.Value == nil {
		return "return"
	}
	return "return " + e.Value.String()
}

// CodeBlock evaluates its statements in order. The last statement is the
// value of the block; an empty block has no value.
type CodeBlock struct {
	Stmts []Expression
}

func (CodeBlock) isExpression() {}
func (e CodeBlock) Ty() tt.Type {
	if len(e.Stmts) == 0 {
		return tt.Void{}
	}
	return e.Stmts[len(e.Stmts)-1].Ty()
}

func (e CodeBlock) String() string {
	if len(e.Stmts) == 0 {
		return "{}"
	}
	parts := make([]string, len(e.Stmts))
	for i, s := range e.Stmts {
		parts[i] = s.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Condition evaluates Cond and then exactly one of True or False.
type Condition struct {
	Cond  Expression
	True  Expression
	False Expression
}

func (Condition) isExpression() {}
func (e Condition) Ty() tt.Type {
	t, f := e.True.Ty(), e.False.Ty()
	switch {
	case tt.IsInvalid(t):
		return f
	case tt.IsInvalid(f):
		return t
	case tt.Equal(t, f):
		return t
	case tt.IsVoid(t) || tt.IsVoid(f):
		return tt.Void{}
	default:
		return t
	}
}

func (e Condition) String() string {
	return "if " + e.Cond.String() + " then " + e.True.String() + " else " + e.False.String()
}

// ReadLocalVariable loads a local slot.
type ReadLocalVariable struct {
	Name string
	Type tt.Type
}

func (ReadLocalVariable) isExpression()    {}
func (e ReadLocalVariable) Ty() tt.Type    { return e.Type }
func (e ReadLocalVariable) String() string { return "%" + e.Name }

// StoreLocalVariable evaluates Value and stores it into a local slot.
type StoreLocalVariable struct {
	Name  string
	Value Expression
}

func (StoreLocalVariable) isExpression() {}
func (StoreLocalVariable) Ty() tt.Type   { return tt.Void{} }
func (e StoreLocalVariable) String() string {
	return "%" + e.Name + " = " + e.Value.String()
}

// StructFieldAccess reads a field of a struct value.
type StructFieldAccess struct {
	Base Expression
	Name string
}

func (StructFieldAccess) isExpression() {}
func (e StructFieldAccess) Ty() tt.Type {
	if s, ok := e.Base.Ty().(tt.Struct); ok {
		if ty, ok := s.Field(e.Name); ok {
			return ty
		}
	}
	return tt.Invalid{}
}

func (e StructFieldAccess) String() string {
	return e.Base.String() + "." + e.Name
}

// Struct builds a struct value. Values are keyed by field name.
type Struct struct {
	Type   tt.Struct
	Values map[string]Expression
}

func (Struct) isExpression()    {}
func (e Struct) Ty() tt.Type    { return e.Type }
func (e Struct) String() string {
	names := e.FieldNames()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Values[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FieldNames returns the names of the provided values in sorted order.
func (e Struct) FieldNames() []string {
	names := make([]string, 0, len(e.Values))
	for name := range e.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Value bool
}

func (BoolLiteral) isExpression()    {}
func (BoolLiteral) Ty() tt.Type      { return tt.Bool{} }
func (e BoolLiteral) String() string { return strconv.FormatBool(e.Value) }

// IntLiteral is an integer constant.
type IntLiteral struct {
	Value int64
}

func (IntLiteral) isExpression()    {}
func (IntLiteral) Ty() tt.Type      { return tt.Int{} }
func (e IntLiteral) String() string { return strconv.FormatInt(e.Value, 10) }

// FloatLiteral is a floating point constant.
type FloatLiteral struct {
	Value float64
}

func (FloatLiteral) isExpression()    {}
func (FloatLiteral) Ty() tt.Type      { return tt.Float{} }
func (e FloatLiteral) String() string { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

// StringLiteral is a string constant.
type StringLiteral struct {
	Value string
}

func (StringLiteral) isExpression()    {}
func (StringLiteral) Ty() tt.Type      { return tt.String{} }
func (e StringLiteral) String() string { return strconv.Quote(e.Value) }

// UnaryOperator represents unary operators.
type UnaryOperator int

const (
	OpNot UnaryOperator = iota
	OpNeg
)

func (op UnaryOperator) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}

// UnaryOp applies a unary operator.
type UnaryOp struct {
	Op      UnaryOperator
	Operand Expression
}

func (UnaryOp) isExpression() {}
func (e UnaryOp) Ty() tt.Type {
	if e.Op == OpNot {
		return tt.Bool{}
	}
	return e.Operand.Ty()
}

func (e UnaryOp) String() string {
	return e.Op.String() + e.Operand.String()
}

// BinaryOperator represents binary operators.
type BinaryOperator int

const (
	_ BinaryOperator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

var binaryOperatorNames = map[BinaryOperator]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpEq:  "==",
	OpNeq: "!=",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
	OpAnd: "&&",
	OpOr:  "||",
}

func (op BinaryOperator) String() string {
	if s, ok := binaryOperatorNames[op]; ok {
		return s
	}
	return "?"
}

// ParseBinaryOperator returns the operator spelled s.
func ParseBinaryOperator(s string) (BinaryOperator, bool) {
	for op, name := range binaryOperatorNames {
		if name == s {
			return op, true
		}
	}
	return 0, false
}

// IsComparison reports whether op produces a boolean.
func (op BinaryOperator) IsComparison() bool {
	return op >= OpEq && op <= OpOr
}

// BinaryExpression applies a binary operator. Both operands are always
// evaluated, left first.
type BinaryExpression struct {
	Op  BinaryOperator
	Lhs Expression
	Rhs Expression
}

func (BinaryExpression) isExpression() {}
func (e BinaryExpression) Ty() tt.Type {
	if e.Op.IsComparison() {
		return tt.Bool{}
	}
	return e.Lhs.Ty()
}

func (e BinaryExpression) String() string {
	return "(" + e.Lhs.String() + " " + e.Op.String() + " " + e.Rhs.String() + ")"
}

// PropertyReference reads a property of the enclosing component.
type PropertyReference struct {
	Name string
	Type tt.Type
}

func (PropertyReference) isExpression()    {}
func (e PropertyReference) Ty() tt.Type    { return e.Type }
func (e PropertyReference) String() string { return e.Name }

// FunctionCall calls a builtin or callback. Calls may have side effects.
type FunctionCall struct {
	Name       string
	Args       []Expression
	ReturnType tt.Type
}

func (FunctionCall) isExpression() {}
func (e FunctionCall) Ty() tt.Type {
	if e.ReturnType == nil {
		return tt.Void{}
	}
	return e.ReturnType
}

func (e FunctionCall) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}

// Kind returns a short name for the node kind, used in diagnostics.
func Kind(e Expression) string {
	switch e.(type) {
	case ReturnStatement:
		return "return"
	case CodeBlock:
		return "block"
	case Condition:
		return "if"
	case ReadLocalVariable:
		return "load"
	case StoreLocalVariable:
		return "store"
	case StructFieldAccess:
		return "field"
	case Struct:
		return "struct"
	case BoolLiteral:
		return "bool"
	case IntLiteral:
		return "int"
	case FloatLiteral:
		return "float"
	case StringLiteral:
		return "string"
	case UnaryOp:
		return "unary"
	case BinaryExpression:
		return "binary"
	case PropertyReference:
		return "prop"
	case FunctionCall:
		return "call"
	case nil:
		return "<nil>"
	default:
		panic(fmt.Sprintf("expr: unhandled expression kind %T", e))
	}
}
