package eval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tt "github.com/gnolang/noreturn/internal/types"
)

// Value is a runtime value.
type Value interface {
	isValue()
	String() string
	Equal(other Value) bool
}

// IntValue represents an integer.
type IntValue struct {
	Val int64
}

func (IntValue) isValue() {}
func (v IntValue) String() string {
	return strconv.FormatInt(v.Val, 10)
}

func (v IntValue) Equal(other Value) bool {
	if o, ok := other.(IntValue); ok {
		return v.Val == o.Val
	}
	return false
}

// FloatValue represents a floating point number.
type FloatValue struct {
	Val float64
}

func (FloatValue) isValue() {}
func (v FloatValue) String() string {
	return strconv.FormatFloat(v.Val, 'g', -1, 64)
}

func (v FloatValue) Equal(other Value) bool {
	if o, ok := other.(FloatValue); ok {
		return v.Val == o.Val
	}
	return false
}

// BoolValue represents a boolean.
type BoolValue struct {
	Val bool
}

func (BoolValue) isValue() {}
func (v BoolValue) String() string {
	return strconv.FormatBool(v.Val)
}

func (v BoolValue) Equal(other Value) bool {
	if o, ok := other.(BoolValue); ok {
		return v.Val == o.Val
	}
	return false
}

// StringValue represents a string.
type StringValue struct {
	Val string
}

func (StringValue) isValue() {}
func (v StringValue) String() string {
	return strconv.Quote(v.Val)
}

func (v StringValue) Equal(other Value) bool {
	if o, ok := other.(StringValue); ok {
		return v.Val == o.Val
	}
	return false
}

// VoidValue is the value of an expression that produces none.
type VoidValue struct{}

func (VoidValue) isValue()       {}
func (VoidValue) String() string { return "void" }

func (VoidValue) Equal(other Value) bool {
	_, ok := other.(VoidValue)
	return ok
}

// StructValue is a record.
type StructValue struct {
	Fields map[string]Value
}

func (StructValue) isValue() {}
func (v StructValue) String() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v StructValue) Equal(other Value) bool {
	o, ok := other.(StructValue)
	if !ok || len(v.Fields) != len(o.Fields) {
		return false
	}
	for name, fv := range v.Fields {
		ov, ok := o.Fields[name]
		if !ok || !fv.Equal(ov) {
			return false
		}
	}
	return true
}

// ZeroValue returns the zero value of ty. Void and Invalid have VoidValue.
func ZeroValue(ty tt.Type) Value {
	switch ty := ty.(type) {
	case tt.Bool:
		return BoolValue{}
	case tt.Int:
		return IntValue{}
	case tt.Float:
		return FloatValue{}
	case tt.String:
		return StringValue{}
	case tt.Struct:
		fields := make(map[string]Value, len(ty.Fields))
		for _, f := range ty.Fields {
			fields[f.Name] = ZeroValue(f.Type)
		}
		return StructValue{Fields: fields}
	default:
		return VoidValue{}
	}
}
