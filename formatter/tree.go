package formatter

import (
	"strings"

	"github.com/gnolang/noreturn/internal/document"
	"github.com/gnolang/noreturn/internal/expr"
)

const indentUnit = "  "

// FormatTree renders e one node per line, children indented under their
// parent. Every line ends with the type of the node.
func FormatTree(e expr.Expression) string {
	var b strings.Builder
	writeNode(&b, e, "", 0)
	return b.String()
}

// FormatDocument renders every binding of doc as a tree.
func FormatDocument(doc *document.Document) string {
	var b strings.Builder
	for _, c := range doc.Components() {
		b.WriteString(fileStyle.Sprintf("component %s\n", c.Name))
		for _, binding := range c.Bindings {
			b.WriteString(indentUnit)
			b.WriteString(ruleStyle.Sprintf("%s", binding.Name))
			b.WriteString(lineStyle.Sprintf(" : %s\n", binding.Type))
			writeNode(&b, binding.Expr, "", 2)
		}
	}
	return b.String()
}

func writeNode(b *strings.Builder, e expr.Expression, label string, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	if label != "" {
		b.WriteString(label + ": ")
	}
	kind := expr.Kind(e)
	if _, ok := e.(expr.ReturnStatement); ok {
		b.WriteString(errorStyle.Sprint(kind))
	} else {
		b.WriteString(ruleStyle.Sprint(kind))
	}
	if d := detail(e); d != "" {
		b.WriteString(" " + noStyle.Sprint(d))
	}
	if e != nil {
		b.WriteString(lineStyle.Sprintf(" : %s", e.Ty()))
	}
	b.WriteString("\n")

	children := expr.Children(e)
	labels := childLabels(e)
	for i, child := range children {
		var l string
		if labels != nil {
			l = labels[i]
		}
		writeNode(b, child, l, depth+1)
	}
}

func detail(e expr.Expression) string {
	switch e := e.(type) {
	case expr.ReadLocalVariable:
		return "%" + e.Name
	case expr.StoreLocalVariable:
		return "%" + e.Name
	case expr.StructFieldAccess:
		return "." + e.Name
	case expr.BoolLiteral, expr.IntLiteral, expr.FloatLiteral, expr.StringLiteral:
		return e.String()
	case expr.UnaryOp:
		return e.Op.String()
	case expr.BinaryExpression:
		return e.Op.String()
	case expr.PropertyReference:
		return e.Name
	case expr.FunctionCall:
		return e.Name
	default:
		return ""
	}
}

func childLabels(e expr.Expression) []string {
	switch e := e.(type) {
	case expr.Condition:
		return []string{"cond", "then", "else"}
	case expr.Struct:
		return e.FieldNames()
	default:
		return nil
	}
}
