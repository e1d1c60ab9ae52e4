package formatter

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnolang/noreturn/internal"
	"github.com/gnolang/noreturn/internal/document"
	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestGenerateFormattedReport(t *testing.T) {
	t.Parallel()

	report := &internal.Report{
		Filename: "demo.yaml",
		Document: "demo",
		Bindings: 3,
		Rewrites: []internal.Rewrite{
			{
				Component:    "Main",
				Binding:      "clicked",
				ReturnType:   "int",
				Temporaries:  []string{"returned_expression0"},
				Before:       "if cond then return 1 else 2",
				After:        "if !cond then 2 else 1",
				Verification: "Equivalent",
				Reason:       "same result for all inputs",
			},
			{
				Component:    "Main",
				Binding:      "reset",
				ReturnType:   "void",
				Before:       "{ if cond then return else {}; reset() }",
				After:        "if cond then {} else reset()",
				Verification: "NotEquivalent",
				Reason:       "different call sequences",
				Detail:       "inputs {cond=false}",
				Problems:     []string{"local x is read before it is stored"},
			},
		},
	}

	expected := `rewrite: Main.clicked
 --> demo.yaml (returns int)
  |
  | before: if cond then return 1 else 2
  | after:  if !cond then 2 else 1
  |
  = temporaries: returned_expression0
  = verified: Equivalent (same result for all inputs)

rewrite: Main.reset
 --> demo.yaml (returns void)
  |
  | before: { if cond then return else {}; reset() }
  | after:  if cond then {} else reset()
  |
  = error: NotEquivalent (different call sequences): inputs {cond=false}
  = invalid: local x is read before it is stored

demo.yaml: 2 of 3 bindings rewritten, 1 temporaries (failed)
`

	assert.Equal(t, expected, GenerateFormattedReport(report))
}

func TestSummary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "demo: 0 of 1 bindings rewritten, 0 temporaries",
		Summary(&internal.Report{Document: "demo", Bindings: 1}))
}

func TestUnverifiedRewrite(t *testing.T) {
	t.Parallel()

	out := FormatRewrite(internal.Rewrite{Component: "C", Binding: "b", ReturnType: "int", After: "1"}, "")
	expected := `rewrite: C.b
 --> (returns int)
  |
  | after:  1
  |

`
	assert.Equal(t, expected, out)
}

func TestFormatTree(t *testing.T) {
	t.Parallel()

	e := expr.Block(
		expr.Call("log", tt.Void{}, expr.Str("clicked")),
		expr.If(expr.Prop("cond", tt.Bool{}), expr.Return(expr.Int(1)), expr.Binary(expr.OpAdd, expr.Int(2), expr.Neg(expr.Int(3)))),
	)
	expected := `block : int
  call log : void
    string "clicked" : string
  if : int
    cond: prop cond : bool
    then: return : invalid
      int 1 : int
    else: binary + : int
      int 2 : int
      unary - : int
        int 3 : int
`
	assert.Equal(t, expected, FormatTree(e))

	rec := tt.NewStruct(tt.Field{Name: "condition", Type: tt.Bool{}})
	stored := expr.Block(
		expr.Store("tmp", expr.Struct{Type: rec, Values: map[string]expr.Expression{"condition": expr.Bool(true)}}),
		expr.Field(expr.Load("tmp", rec), "condition"),
	)
	expected = `block : bool
  store %tmp : void
    struct : struct{condition: bool}
      condition: bool true : bool
  field .condition : bool
    load %tmp : struct{condition: bool}
`
	assert.Equal(t, expected, FormatTree(stored))
}

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Root: &document.Component{
		Name: "Main",
		Bindings: []*document.Binding{
			{Name: "value", Type: tt.Int{}, Expr: expr.Int(1)},
		},
	}}
	expected := `component Main
  value : int
    int 1 : int
`
	assert.Equal(t, expected, FormatDocument(doc))
}
