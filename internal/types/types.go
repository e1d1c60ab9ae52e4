package types

import (
	"sort"
	"strings"
)

// Type is the value type of an expression.
//
// The set of implementations is closed: Void, Invalid, Bool, Int, Float,
// String and Struct.
type Type interface {
	isType()
	String() string
}

// Void is the type of an expression that produces no value.
type Void struct{}

func (Void) isType()        {}
func (Void) String() string { return "void" }

// Invalid is the type of an erroneous expression, or of an expression that
// never completes normally (a return statement).
type Invalid struct{}

func (Invalid) isType()        {}
func (Invalid) String() string { return "invalid" }

// Bool is the boolean type.
type Bool struct{}

func (Bool) isType()        {}
func (Bool) String() string { return "bool" }

// Int is the integer type.
type Int struct{}

func (Int) isType()        {}
func (Int) String() string { return "int" }

// Float is the floating point type.
type Float struct{}

func (Float) isType()        {}
func (Float) String() string { return "float" }

// String is the string type.
type String struct{}

func (String) isType()        {}
func (String) String() string { return "string" }

// Field is a named member of a Struct.
type Field struct {
	Name string
	Type Type
}

// Struct is a structural record type. Fields are kept sorted by name.
type Struct struct {
	Fields []Field
}

func (Struct) isType() {}
func (s Struct) String() string {
	var b strings.Builder
	b.WriteString("struct{")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type.String())
	}
	b.WriteString("}")
	return b.String()
}

// Field returns the type of the named field.
func (s Struct) Field(name string) (Type, bool) {
	i := sort.Search(len(s.Fields), func(i int) bool { return s.Fields[i].Name >= name })
	if i < len(s.Fields) && s.Fields[i].Name == name {
		return s.Fields[i].Type, true
	}
	return nil, false
}

// NewStruct creates a struct type from the given fields, sorting them by name.
// A later field with the same name replaces an earlier one.
func NewStruct(fields ...Field) Struct {
	byName := make(map[string]Type, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Type
	}
	sorted := make([]Field, 0, len(byName))
	for name, ty := range byName {
		sorted = append(sorted, Field{Name: name, Type: ty})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return Struct{Fields: sorted}
}

// IsVoidOrInvalid reports whether a value of type t can not be stored in a
// struct field or a local variable.
func IsVoidOrInvalid(t Type) bool {
	switch t.(type) {
	case Void, Invalid, nil:
		return true
	default:
		return false
	}
}

// IsVoid reports whether t is the Void type.
func IsVoid(t Type) bool {
	_, ok := t.(Void)
	return ok
}

// IsInvalid reports whether t is the Invalid type.
func IsInvalid(t Type) bool {
	_, ok := t.(Invalid)
	return ok
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	sa, aok := a.(Struct)
	sb, bok := b.(Struct)
	if aok || bok {
		if !aok || !bok || len(sa.Fields) != len(sb.Fields) {
			return false
		}
		for i := range sa.Fields {
			if sa.Fields[i].Name != sb.Fields[i].Name || !Equal(sa.Fields[i].Type, sb.Fields[i].Type) {
				return false
			}
		}
		return true
	}
	return a == b
}
