package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/noreturn/internal/types"
)

func TestTy(t *testing.T) {
	t.Parallel()

	rec := tt.NewStruct(tt.Field{Name: "a", Type: tt.Int{}})
	tests := []struct {
		name string
		e    Expression
		want tt.Type
	}{
		{"empty block", Block(), tt.Void{}},
		{"block takes last", Block(Call("f", tt.Void{}), Str("x")), tt.String{}},
		{"return", Return(Int(1)), tt.Invalid{}},
		{"block ending in return", Block(Int(1), ReturnVoid()), tt.Invalid{}},
		{"condition same arms", If(Bool(true), Int(1), Int(2)), tt.Int{}},
		{"condition with returning arm", If(Bool(true), Return(Int(1)), Int(2)), tt.Int{}},
		{"condition with void arm", If(Bool(true), Int(1), Block()), tt.Void{}},
		{"store", Store("x", Int(1)), tt.Void{}},
		{"load", Load("x", tt.Float{}), tt.Float{}},
		{"field", Field(MakeStruct(map[string]Expression{"a": Int(1)}), "a"), tt.Int{}},
		{"missing field", Field(MakeStruct(map[string]Expression{"a": Int(1)}), "b"), tt.Invalid{}},
		{"struct", Struct{Type: rec, Values: map[string]Expression{"a": Int(1)}}, rec},
		{"not", Not(Prop("p", tt.Bool{})), tt.Bool{}},
		{"neg", Neg(Float(1)), tt.Float{}},
		{"comparison", Binary(OpLt, Int(1), Int(2)), tt.Bool{}},
		{"arithmetic", Binary(OpAdd, Int(1), Int(2)), tt.Int{}},
		{"call without type", FunctionCall{Name: "f"}, tt.Void{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tt.Equal(tc.want, tc.e.Ty()), "got %s", tc.e.Ty())
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	e := Block(
		Store("tmp", MakeStruct(map[string]Expression{"condition": Bool(true), "actual": Int(3)})),
		If(Field(Load("tmp", tt.Void{}), "condition"), Call("f", tt.Int{}, Str("a")), Return(Neg(Int(1)))),
	)
	assert.Equal(t,
		`{ %tmp = {actual: 3, condition: true}; if %tmp.condition then f("a") else return -1 }`,
		e.String())
	assert.Equal(t, "{}", Block().String())
	assert.Equal(t, "return", ReturnVoid().String())
	assert.Equal(t, "(x >= 2)", Binary(OpGte, Prop("x", tt.Int{}), Int(2)).String())
}

func TestParseBinaryOperator(t *testing.T) {
	t.Parallel()

	for op, name := range binaryOperatorNames {
		got, ok := ParseBinaryOperator(name)
		require.True(t, ok, name)
		assert.Equal(t, op, got)
	}
	_, ok := ParseBinaryOperator("<>")
	assert.False(t, ok)
}

func TestFirstReturn(t *testing.T) {
	t.Parallel()

	e := Block(
		Call("f", tt.Void{}),
		If(Prop("c", tt.Bool{}), Return(Block(Return(Int(9)), Int(1))), Block()),
		Return(Str("late")),
	)
	ret, ok := FirstReturn(e)
	require.True(t, ok)
	assert.Equal(t, tt.Int{}, ret.Value.Ty())

	_, ok = FirstReturn(Block(Int(1)))
	assert.False(t, ok)
	assert.True(t, ContainsReturn(Call("g", tt.Int{}, ReturnVoid())))
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := Block(
		Call("f", tt.Void{}, Int(1)),
		MakeStruct(map[string]Expression{"a": Int(1)}),
	)
	c := Clone(orig)
	require.Equal(t, orig, c)

	c.(CodeBlock).Stmts[0] = Int(7)
	c.(CodeBlock).Stmts[1].(Struct).Values["a"] = Int(2)

	assert.Equal(t, Call("f", tt.Void{}, Int(1)), orig.(CodeBlock).Stmts[0])
	assert.Equal(t, Int(1), orig.(CodeBlock).Stmts[1].(Struct).Values["a"])
}

func TestInspectSkipsChildren(t *testing.T) {
	t.Parallel()

	var kinds []string
	Inspect(Block(If(Bool(true), Int(1), Int(2)), Str("s")), func(e Expression) bool {
		kinds = append(kinds, Kind(e))
		_, isCond := e.(Condition)
		return !isCond
	})
	assert.Equal(t, []string{"block", "if", "string"}, kinds)
}

func TestLocalNames(t *testing.T) {
	t.Parallel()

	e := Block(Store("a", Block(Store("b", Int(1)), Int(2))), Store("c", Int(3)))
	assert.Equal(t, []string{"a", "b", "c"}, LocalNames(e))
}

func TestDefaultValueFor(t *testing.T) {
	t.Parallel()

	rec := tt.NewStruct(
		tt.Field{Name: "ok", Type: tt.Bool{}},
		tt.Field{Name: "n", Type: tt.Int{}},
		tt.Field{Name: "inner", Type: tt.NewStruct(tt.Field{Name: "s", Type: tt.String{}})},
	)
	tests := []struct {
		ty   tt.Type
		want Expression
	}{
		{tt.Bool{}, Bool(false)},
		{tt.Int{}, Int(0)},
		{tt.Float{}, Float(0)},
		{tt.String{}, Str("")},
		{tt.Void{}, Block()},
		{tt.Invalid{}, Block()},
	}
	for _, tc := range tests {
		got := DefaultValueFor(tc.ty)
		assert.Equal(t, tc.want, got, tc.ty.String())
		assert.NoError(t, Validate(got))
	}

	s := DefaultValueFor(rec)
	assert.True(t, tt.Equal(rec, s.Ty()))
	assert.Equal(t, []string{"inner", "n", "ok"}, s.(Struct).FieldNames())
	assert.NoError(t, Validate(s))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	rec := tt.NewStruct(tt.Field{Name: "condition", Type: tt.Bool{}})
	valid := Block(
		Store("r", Struct{Type: rec, Values: map[string]Expression{"condition": Bool(true)}}),
		If(Field(Load("r", rec), "condition"), Int(1), Int(2)),
	)
	require.NoError(t, Validate(valid))

	tests := []struct {
		name string
		e    Expression
		msg  string
	}{
		{"non-bool condition", If(Int(1), Block(), Block()), "want bool"},
		{"store void", Store("x", Block()), "stores a value of type void"},
		{"read before store", Load("x", tt.Int{}), "read before it is stored"},
		{"read with other type", Block(Store("x", Int(1)), Load("x", tt.Bool{})), "read as bool but stored as int"},
		{"field on non-struct", Field(Int(1), "a"), "on non-struct"},
		{"unknown field", Field(Struct{Type: rec, Values: map[string]Expression{"condition": Bool(true)}}, "z"), "no field z"},
		{"missing value", Struct{Type: rec, Values: map[string]Expression{}}, "missing value for field condition"},
		{"wrong value type", Struct{Type: rec, Values: map[string]Expression{"condition": Int(1)}}, "has type int, want bool"},
		{"extra value", Struct{Type: rec, Values: map[string]Expression{"condition": Bool(true), "x": Int(1)}}, "unknown field x"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.e)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
