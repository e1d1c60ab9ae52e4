package eval

import (
	"sort"
	"strings"
)

// Env holds the property inputs of a root and the locals it stores.
type Env struct {
	props  map[string]Value
	locals map[string]Value
}

// NewEnv creates a new empty environment.
func NewEnv() *Env {
	return &Env{
		props:  make(map[string]Value),
		locals: make(map[string]Value),
	}
}

// SetProperty sets the value of an input property.
func (e *Env) SetProperty(name string, val Value) {
	e.props[name] = val
}

// Property returns the value of an input property, or nil if unset.
func (e *Env) Property(name string) Value {
	return e.props[name]
}

// Local returns the value of a local, or nil if it was never stored.
func (e *Env) Local(name string) Value {
	return e.locals[name]
}

// SetLocal stores a local.
func (e *Env) SetLocal(name string, val Value) {
	e.locals[name] = val
}

// Clone copies the environment. Values are immutable and shared.
func (e *Env) Clone() *Env {
	c := &Env{
		props:  make(map[string]Value, len(e.props)),
		locals: make(map[string]Value, len(e.locals)),
	}
	for k, v := range e.props {
		c.props[k] = v
	}
	for k, v := range e.locals {
		c.locals[k] = v
	}
	return c
}

// Inputs returns a copy of the environment without locals.
func (e *Env) Inputs() *Env {
	c := e.Clone()
	c.locals = make(map[string]Value)
	return c
}

// String renders the properties in name order.
func (e *Env) String() string {
	keys := make([]string, 0, len(e.props))
	for k := range e.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.props[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
