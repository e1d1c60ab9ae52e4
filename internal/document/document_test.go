package document

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

const demo = `
name: demo
root:
  name: Main
  properties:
    - {name: cond, type: bool}
    - {name: count, type: int}
  bindings:
    - name: clicked
      type: int
      expr:
        block:
          - call: {name: log, args: [{string: "clicked"}]}
          - if: {cond: {prop: cond}, then: {return: {int: 1}}, else: {int: 2}}
    - name: reset
      expr:
        block:
          - if: {cond: {not: {prop: cond}}, then: {return: null}}
          - call: {name: reset}
sub_components:
  - name: Button
    bindings:
      - name: label
        type: string
        expr: {string: "ok"}
globals:
  - name: Palette
    properties:
      - {name: dark, type: bool}
    bindings:
      - name: background
        type: "struct{alpha: float, name: string}"
        expr:
          struct:
            values:
              alpha: {float: 0.5}
              name: {string: black}
`

func TestParse(t *testing.T) {
	t.Parallel()

	doc, err := Parse(demo)
	require.NoError(t, err)

	assert.Equal(t, "demo", doc.Name)
	require.NotNil(t, doc.Root)
	assert.Equal(t, "Main", doc.Root.Name)

	cond, ok := doc.Root.Property("cond")
	require.True(t, ok)
	assert.Equal(t, tt.Bool{}, cond.Type)

	clicked, ok := doc.Root.Binding("clicked")
	require.True(t, ok)
	assert.Equal(t, tt.Int{}, clicked.Type)
	want := expr.Block(
		expr.Call("log", tt.Void{}, expr.Str("clicked")),
		expr.If(expr.Prop("cond", tt.Bool{}), expr.Return(expr.Int(1)), expr.Int(2)),
	)
	assert.Equal(t, want.String(), clicked.Expr.String())

	reset, ok := doc.Root.Binding("reset")
	require.True(t, ok)
	assert.Equal(t, tt.Void{}, reset.Type)
	block := reset.Expr.(expr.CodeBlock)
	cnd := block.Stmts[0].(expr.Condition)
	assert.Equal(t, expr.ReturnVoid(), cnd.True)
	assert.True(t, expr.IsEmptyBlock(cnd.False))

	require.Len(t, doc.SubComponents, 1)
	require.Len(t, doc.Globals, 1)
	bg, ok := doc.Globals[0].Binding("background")
	require.True(t, ok)
	assert.True(t, tt.Equal(bg.Type, bg.Expr.Ty()))

	names := []string{}
	for _, c := range doc.Components() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Button", "Palette", "Main"}, names)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{
			name: "unknown property",
			src: `
root:
  name: Main
  bindings:
    - name: b
      expr: {prop: missing}`,
			msg: `line 6: unknown property "missing"`,
		},
		{
			name: "unknown kind",
			src: `
root:
  name: Main
  bindings:
    - name: b
      expr: {loop: 1}`,
			msg: `unknown expression kind "loop"`,
		},
		{
			name: "two keys",
			src: `
root:
  name: Main
  bindings:
    - name: b
      expr: {int: 1, bool: true}`,
			msg: "exactly one key",
		},
		{
			name: "bad type",
			src: `
root:
  name: Main
  properties: [{name: p, type: "struct{"}]`,
			msg: "property p",
		},
		{
			name: "bad operator",
			src: `
root:
  name: Main
  bindings:
    - name: b
      expr: {binary: {op: "<>", lhs: {int: 1}, rhs: {int: 2}}}`,
			msg: `unknown operator "<>"`,
		},
		{
			name: "missing expression",
			src: `
root:
  name: Main
  bindings:
    - name: b
      type: int`,
			msg: "missing expression",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	rec := tt.NewStruct(
		tt.Field{Name: "condition", Type: tt.Bool{}},
		tt.Field{Name: "returned", Type: tt.Int{}},
	)
	original := &Document{
		Name: "round",
		Root: &Component{
			Name:       "Main",
			Properties: []Property{{Name: "cond", Type: tt.Bool{}}},
			Bindings: []*Binding{{
				Name: "value",
				Type: tt.Int{},
				Expr: expr.Block(
					expr.Store("tmp", expr.If(
						expr.Not(expr.Prop("cond", tt.Bool{})),
						expr.Struct{Type: rec, Values: map[string]expr.Expression{
							"condition": expr.Bool(true),
							"returned":  expr.Int(0),
						}},
						expr.Struct{Type: rec, Values: map[string]expr.Expression{
							"condition": expr.Bool(false),
							"returned":  expr.Binary(expr.OpMul, expr.Int(6), expr.Neg(expr.Int(7))),
						}},
					)),
					expr.If(
						expr.Field(expr.Load("tmp", rec), "condition"),
						expr.Call("fallback", tt.Int{}, expr.Float(1.5), expr.Str("x")),
						expr.Field(expr.Load("tmp", rec), "returned"),
					),
				),
			}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	decoded, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, original.Root.Bindings[0].Expr.String(), decoded.Root.Bindings[0].Expr.String())
	assert.True(t, tt.Equal(original.Root.Bindings[0].Expr.Ty(), decoded.Root.Bindings[0].Expr.Ty()))
	require.NoError(t, expr.Validate(decoded.Root.Bindings[0].Expr))
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demo), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", doc.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCloneAndVisit(t *testing.T) {
	t.Parallel()

	doc, err := Parse(demo)
	require.NoError(t, err)

	clone := doc.Clone()
	VisitAllExpressions(clone.Root, func(slot *expr.Expression, b *Binding) {
		*slot = expr.Int(0)
	})

	for _, b := range clone.Root.Bindings {
		assert.Equal(t, expr.Int(0), b.Expr)
	}
	clicked, _ := doc.Root.Binding("clicked")
	assert.True(t, expr.ContainsReturn(clicked.Expr))
}
