package expr

import (
	"errors"
	"fmt"

	tt "github.com/gnolang/noreturn/internal/types"
)

// Validate performs a structural type check of a tree produced by a lowering
// pass: conditions must be boolean, struct fields must exist and agree with
// their declared types, and every local must be stored before it is read and
// read with the type it was stored with.
//
// It reports every problem found, joined into one error.
func Validate(e Expression) error {
	v := &validator{locals: make(map[string]tt.Type)}
	v.check(e)
	return errors.Join(v.errs...)
}

type validator struct {
	locals map[string]tt.Type
	errs   []error
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) check(e Expression) {
	switch e := e.(type) {
	case nil:
		v.errorf("missing expression")
	case Condition:
		v.check(e.Cond)
		if ty := e.Cond.Ty(); !tt.Equal(ty, tt.Bool{}) {
			v.errorf("condition %s has type %s, want bool", e.Cond, ty)
		}
		v.check(e.True)
		v.check(e.False)
	case StoreLocalVariable:
		v.check(e.Value)
		ty := e.Value.Ty()
		if tt.IsVoidOrInvalid(ty) {
			v.errorf("local %s stores a value of type %s", e.Name, ty)
		}
		v.locals[e.Name] = ty
	case ReadLocalVariable:
		stored, ok := v.locals[e.Name]
		switch {
		case !ok:
			v.errorf("local %s read before it is stored", e.Name)
		case !tt.Equal(stored, e.Type):
			v.errorf("local %s read as %s but stored as %s", e.Name, e.Type, stored)
		}
	case StructFieldAccess:
		v.check(e.Base)
		s, ok := e.Base.Ty().(tt.Struct)
		if !ok {
			v.errorf("field access .%s on non-struct %s", e.Name, e.Base.Ty())
			return
		}
		if _, ok := s.Field(e.Name); !ok {
			v.errorf("no field %s in %s", e.Name, s)
		}
	case Struct:
		for _, f := range e.Type.Fields {
			value, ok := e.Values[f.Name]
			if !ok {
				v.errorf("struct %s: missing value for field %s", e.Type, f.Name)
				continue
			}
			v.check(value)
			if ty := value.Ty(); !tt.IsInvalid(ty) && !tt.Equal(ty, f.Type) {
				v.errorf("struct field %s has type %s, want %s", f.Name, ty, f.Type)
			}
		}
		for name := range e.Values {
			if _, ok := e.Type.Field(name); !ok {
				v.errorf("struct %s: value for unknown field %s", e.Type, name)
			}
		}
	default:
		for _, c := range Children(e) {
			v.check(c)
		}
	}
}
