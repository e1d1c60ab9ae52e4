package expr

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expression) []Expression {
	switch e := e.(type) {
	case ReturnStatement:
		if e.Value == nil {
			return nil
		}
		return []Expression{e.Value}
	case CodeBlock:
		return e.Stmts
	case Condition:
		return []Expression{e.Cond, e.True, e.False}
	case StoreLocalVariable:
		return []Expression{e.Value}
	case StructFieldAccess:
		return []Expression{e.Base}
	case Struct:
		names := e.FieldNames()
		children := make([]Expression, len(names))
		for i, name := range names {
			children[i] = e.Values[name]
		}
		return children
	case UnaryOp:
		return []Expression{e.Operand}
	case BinaryExpression:
		return []Expression{e.Lhs, e.Rhs}
	case FunctionCall:
		return e.Args
	default:
		return nil
	}
}

// Inspect traverses the tree rooted at e in depth-first order. If f returns
// false the children of the current node are skipped.
func Inspect(e Expression, f func(Expression) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, f)
	}
}

// FirstReturn returns the first return statement found in a pre-order scan
// of e. The payload of a return is not searched.
func FirstReturn(e Expression) (ReturnStatement, bool) {
	var (
		found ReturnStatement
		ok    bool
	)
	Inspect(e, func(n Expression) bool {
		if ok {
			return false
		}
		if r, isReturn := n.(ReturnStatement); isReturn {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}

// ContainsReturn reports whether e contains a return statement.
func ContainsReturn(e Expression) bool {
	_, ok := FirstReturn(e)
	return ok
}

// Clone returns a deep copy of e that shares no slices or maps with it.
func Clone(e Expression) Expression {
	switch e := e.(type) {
	case nil:
		return nil
	case ReturnStatement:
		return ReturnStatement{Value: Clone(e.Value)}
	case CodeBlock:
		return CodeBlock{Stmts: cloneList(e.Stmts)}
	case Condition:
		return Condition{Cond: Clone(e.Cond), True: Clone(e.True), False: Clone(e.False)}
	case StoreLocalVariable:
		return StoreLocalVariable{Name: e.Name, Value: Clone(e.Value)}
	case StructFieldAccess:
		return StructFieldAccess{Base: Clone(e.Base), Name: e.Name}
	case Struct:
		values := make(map[string]Expression, len(e.Values))
		for k, v := range e.Values {
			values[k] = Clone(v)
		}
		return Struct{Type: e.Type, Values: values}
	case UnaryOp:
		return UnaryOp{Op: e.Op, Operand: Clone(e.Operand)}
	case BinaryExpression:
		return BinaryExpression{Op: e.Op, Lhs: Clone(e.Lhs), Rhs: Clone(e.Rhs)}
	case FunctionCall:
		return FunctionCall{Name: e.Name, Args: cloneList(e.Args), ReturnType: e.ReturnType}
	default:
		// leaves are immutable values
		return e
	}
}

func cloneList(list []Expression) []Expression {
	if list == nil {
		return nil
	}
	out := make([]Expression, len(list))
	for i, e := range list {
		out[i] = Clone(e)
	}
	return out
}

// LocalNames returns the names of all local variables stored in e, in
// pre-order.
func LocalNames(e Expression) []string {
	var names []string
	Inspect(e, func(n Expression) bool {
		if s, ok := n.(StoreLocalVariable); ok {
			names = append(names, s.Name)
		}
		return true
	})
	return names
}
