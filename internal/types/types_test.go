package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsVoidOrInvalid(t *testing.T) {
	t.Parallel()
	assert.True(t, IsVoidOrInvalid(Void{}))
	assert.True(t, IsVoidOrInvalid(Invalid{}))
	assert.False(t, IsVoidOrInvalid(Bool{}))
	assert.False(t, IsVoidOrInvalid(NewStruct()))
}

func TestNewStructSortsFields(t *testing.T) {
	t.Parallel()
	s := NewStruct(
		Field{Name: "returned", Type: Int{}},
		Field{Name: "condition", Type: Bool{}},
		Field{Name: "actual", Type: String{}},
	)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, "actual", s.Fields[0].Name)
	assert.Equal(t, "condition", s.Fields[1].Name)
	assert.Equal(t, "returned", s.Fields[2].Name)

	ty, ok := s.Field("condition")
	assert.True(t, ok)
	assert.Equal(t, Bool{}, ty)

	_, ok = s.Field("missing")
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	t.Parallel()
	a := NewStruct(Field{Name: "x", Type: Int{}}, Field{Name: "y", Type: Bool{}})
	b := NewStruct(Field{Name: "y", Type: Bool{}}, Field{Name: "x", Type: Int{}})
	c := NewStruct(Field{Name: "x", Type: Int{}})

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, Int{}))
	assert.True(t, Equal(Int{}, Int{}))
	assert.False(t, Equal(Int{}, Float{}))
}

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want Type
	}{
		{"void", Void{}},
		{"bool", Bool{}},
		{" int ", Int{}},
		{"string", String{}},
		{"struct{}", NewStruct()},
		{
			"struct{condition: bool, actual: int}",
			NewStruct(Field{Name: "condition", Type: Bool{}}, Field{Name: "actual", Type: Int{}}),
		},
		{
			"struct{inner: struct{a: float}}",
			NewStruct(Field{Name: "inner", Type: NewStruct(Field{Name: "a", Type: Float{}})}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Parse(tt.src)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %s", got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	s := NewStruct(
		Field{Name: "condition", Type: Bool{}},
		Field{Name: "returned", Type: NewStruct(Field{Name: "v", Type: Int{}})},
	)
	got, err := Parse(s.String())
	require.NoError(t, err)
	assert.True(t, Equal(s, got))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	for _, src := range []string{"", "number", "struct{a int}", "struct{a: int", "int int"} {
		_, err := Parse(src)
		assert.Error(t, err, src)
	}
}
