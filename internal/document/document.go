// Package document holds the component model that owns expression trees.
//
// A Document is a compilation unit: a root component plus the
// sub-components and globals it uses. Every component exposes its
// expressions through VisitAllExpressions, which hands out replaceable
// slots so passes can rewrite trees in place.
package document

import (
	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

// Property is a typed input of a component. Expressions read it through
// expr.PropertyReference.
type Property struct {
	Name string
	Type tt.Type
}

// Binding attaches an expression to a named slot of a component: a property
// binding, a callback handler or a function body.
type Binding struct {
	Name string
	// Type is the declared value type of the binding.
	Type tt.Type
	Expr expr.Expression
}

// Component is a named set of properties and bindings.
type Component struct {
	Name       string
	Properties []Property
	Bindings   []*Binding
}

// Property returns the property with the given name.
func (c *Component) Property(name string) (Property, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Binding returns the binding with the given name.
func (c *Component) Binding(name string) (*Binding, bool) {
	for _, b := range c.Bindings {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Document is a compilation unit.
type Document struct {
	Name          string
	Root          *Component
	SubComponents []*Component
	Globals       []*Component
}

// Components returns every component of the document exactly once:
// sub-components first, then globals, then the root.
func (d *Document) Components() []*Component {
	seen := make(map[*Component]bool)
	var out []*Component
	add := func(c *Component) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range d.SubComponents {
		add(c)
	}
	for _, c := range d.Globals {
		add(c)
	}
	add(d.Root)
	return out
}

// VisitAllExpressions calls visit with a pointer to the root expression slot
// of every binding of c. Assigning through the pointer replaces the
// binding's expression.
func VisitAllExpressions(c *Component, visit func(slot *expr.Expression, b *Binding)) {
	for _, b := range c.Bindings {
		if b.Expr == nil {
			continue
		}
		visit(&b.Expr, b)
	}
}

// Clone returns a deep copy of the document. Expression trees are cloned
// with expr.Clone.
func (d *Document) Clone() *Document {
	clones := make(map[*Component]*Component)
	cloneComponent := func(c *Component) *Component {
		if c == nil {
			return nil
		}
		if cc, ok := clones[c]; ok {
			return cc
		}
		cc := &Component{
			Name:       c.Name,
			Properties: append([]Property(nil), c.Properties...),
			Bindings:   make([]*Binding, len(c.Bindings)),
		}
		for i, b := range c.Bindings {
			cc.Bindings[i] = &Binding{Name: b.Name, Type: b.Type, Expr: expr.Clone(b.Expr)}
		}
		clones[c] = cc
		return cc
	}
	out := &Document{Name: d.Name}
	for _, c := range d.SubComponents {
		out.SubComponents = append(out.SubComponents, cloneComponent(c))
	}
	for _, c := range d.Globals {
		out.Globals = append(out.Globals, cloneComponent(c))
	}
	out.Root = cloneComponent(d.Root)
	return out
}
