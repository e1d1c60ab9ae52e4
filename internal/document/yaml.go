package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/noreturn/internal/expr"
	tt "github.com/gnolang/noreturn/internal/types"
)

type documentYAML struct {
	Name          string           `yaml:"name"`
	Root          *componentYAML   `yaml:"root,omitempty"`
	SubComponents []*componentYAML `yaml:"sub_components,omitempty"`
	Globals       []*componentYAML `yaml:"globals,omitempty"`
}

type componentYAML struct {
	Name       string         `yaml:"name"`
	Properties []propertyYAML `yaml:"properties,omitempty"`
	Bindings   []bindingYAML  `yaml:"bindings,omitempty"`
}

type propertyYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type bindingYAML struct {
	Name string    `yaml:"name"`
	Type string    `yaml:"type"`
	Expr yaml.Node `yaml:"expr"`
}

// Load decodes a document from YAML.
func Load(r io.Reader) (*Document, error) {
	var raw documentYAML
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	doc := &Document{Name: raw.Name}
	var err error
	for _, c := range raw.SubComponents {
		sub, err := decodeComponent(c)
		if err != nil {
			return nil, err
		}
		doc.SubComponents = append(doc.SubComponents, sub)
	}
	for _, c := range raw.Globals {
		global, err := decodeComponent(c)
		if err != nil {
			return nil, err
		}
		doc.Globals = append(doc.Globals, global)
	}
	if raw.Root != nil {
		if doc.Root, err = decodeComponent(raw.Root); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// LoadFile reads and decodes the document stored at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document from a YAML string.
func Parse(src string) (*Document, error) {
	return Load(bytes.NewBufferString(src))
}

func decodeComponent(raw *componentYAML) (*Component, error) {
	c := &Component{Name: raw.Name}
	for _, p := range raw.Properties {
		ty, err := tt.Parse(p.Type)
		if err != nil {
			return nil, fmt.Errorf("component %s: property %s: %w", raw.Name, p.Name, err)
		}
		c.Properties = append(c.Properties, Property{Name: p.Name, Type: ty})
	}
	for _, b := range raw.Bindings {
		ty := tt.Type(tt.Void{})
		if b.Type != "" {
			var err error
			if ty, err = tt.Parse(b.Type); err != nil {
				return nil, fmt.Errorf("component %s: binding %s: %w", raw.Name, b.Name, err)
			}
		}
		e, err := decodeExpression(&b.Expr, c)
		if err != nil {
			return nil, fmt.Errorf("component %s: binding %s: %w", raw.Name, b.Name, err)
		}
		c.Bindings = append(c.Bindings, &Binding{Name: b.Name, Type: ty, Expr: e})
	}
	return c, nil
}

// DecodeExpression decodes a single expression node. Property references are
// resolved against c, which may be nil when the expression has none.
func DecodeExpression(n *yaml.Node, c *Component) (expr.Expression, error) {
	if c == nil {
		c = &Component{}
	}
	return decodeExpression(n, c)
}

func decodeExpression(n *yaml.Node, c *Component) (expr.Expression, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, fmt.Errorf("line %d: expression must be a mapping with exactly one key", n.Line)
	}
	key, value := n.Content[0].Value, n.Content[1]

	switch key {
	case "return":
		if isNull(value) {
			return expr.ReturnVoid(), nil
		}
		v, err := decodeExpression(value, c)
		if err != nil {
			return nil, err
		}
		return expr.Return(v), nil

	case "block":
		if isNull(value) {
			return expr.Block(), nil
		}
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: block must be a sequence", value.Line)
		}
		stmts, err := decodeList(value.Content, c)
		if err != nil {
			return nil, err
		}
		return expr.Block(stmts...), nil

	case "if":
		var raw struct {
			Cond yaml.Node `yaml:"cond"`
			Then yaml.Node `yaml:"then"`
			Else yaml.Node `yaml:"else"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(&raw.Cond, c)
		if err != nil {
			return nil, fmt.Errorf("line %d: if: %w", value.Line, err)
		}
		then, err := decodeExpression(&raw.Then, c)
		if err != nil {
			return nil, fmt.Errorf("line %d: then: %w", value.Line, err)
		}
		els := expr.Block()
		if raw.Else.Kind != 0 {
			if els, err = decodeExpression(&raw.Else, c); err != nil {
				return nil, fmt.Errorf("line %d: else: %w", value.Line, err)
			}
		}
		return expr.If(cond, then, els), nil

	case "bool":
		var v bool
		if err := value.Decode(&v); err != nil {
			return nil, err
		}
		return expr.Bool(v), nil

	case "int":
		var v int64
		if err := value.Decode(&v); err != nil {
			return nil, err
		}
		return expr.Int(v), nil

	case "float":
		var v float64
		if err := value.Decode(&v); err != nil {
			return nil, err
		}
		return expr.Float(v), nil

	case "string":
		return expr.Str(value.Value), nil

	case "prop":
		p, ok := c.Property(value.Value)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown property %q", value.Line, value.Value)
		}
		return expr.Prop(p.Name, p.Type), nil

	case "call":
		var raw struct {
			Name string      `yaml:"name"`
			Type string      `yaml:"type"`
			Args []yaml.Node `yaml:"args"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		ty, err := optionalType(raw.Type, value.Line)
		if err != nil {
			return nil, err
		}
		args := make([]expr.Expression, 0, len(raw.Args))
		for i := range raw.Args {
			a, err := decodeExpression(&raw.Args[i], c)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return expr.FunctionCall{Name: raw.Name, Args: args, ReturnType: ty}, nil

	case "not", "neg":
		operand, err := decodeExpression(value, c)
		if err != nil {
			return nil, err
		}
		if key == "not" {
			return expr.Not(operand), nil
		}
		return expr.Neg(operand), nil

	case "binary":
		var raw struct {
			Op  string    `yaml:"op"`
			Lhs yaml.Node `yaml:"lhs"`
			Rhs yaml.Node `yaml:"rhs"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		op, ok := expr.ParseBinaryOperator(raw.Op)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown operator %q", value.Line, raw.Op)
		}
		lhs, err := decodeExpression(&raw.Lhs, c)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpression(&raw.Rhs, c)
		if err != nil {
			return nil, err
		}
		return expr.Binary(op, lhs, rhs), nil

	case "load":
		var raw struct {
			Name string `yaml:"name"`
			Type string `yaml:"type"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		ty, err := tt.Parse(raw.Type)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", value.Line, err)
		}
		return expr.Load(raw.Name, ty), nil

	case "store":
		var raw struct {
			Name  string    `yaml:"name"`
			Value yaml.Node `yaml:"value"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		v, err := decodeExpression(&raw.Value, c)
		if err != nil {
			return nil, err
		}
		return expr.Store(raw.Name, v), nil

	case "field":
		var raw struct {
			Base yaml.Node `yaml:"base"`
			Name string    `yaml:"name"`
		}
		if err := value.Decode(&raw); err != nil {
			return nil, err
		}
		base, err := decodeExpression(&raw.Base, c)
		if err != nil {
			return nil, err
		}
		return expr.Field(base, raw.Name), nil

	case "struct":
		return decodeStruct(value, c)

	default:
		return nil, fmt.Errorf("line %d: unknown expression kind %q", n.Content[0].Line, key)
	}
}

func decodeStruct(value *yaml.Node, c *Component) (expr.Expression, error) {
	var raw struct {
		Type   string    `yaml:"type"`
		Values yaml.Node `yaml:"values"`
	}
	if err := value.Decode(&raw); err != nil {
		return nil, err
	}
	values := make(map[string]expr.Expression)
	if raw.Values.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(raw.Values.Content); i += 2 {
			v, err := decodeExpression(raw.Values.Content[i+1], c)
			if err != nil {
				return nil, err
			}
			values[raw.Values.Content[i].Value] = v
		}
	}
	if raw.Type == "" {
		return expr.MakeStruct(values), nil
	}
	ty, err := tt.Parse(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", value.Line, err)
	}
	st, ok := ty.(tt.Struct)
	if !ok {
		return nil, fmt.Errorf("line %d: struct literal with non-struct type %s", value.Line, ty)
	}
	return expr.Struct{Type: st, Values: values}, nil
}

func decodeList(nodes []*yaml.Node, c *Component) ([]expr.Expression, error) {
	out := make([]expr.Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := decodeExpression(n, c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func optionalType(s string, line int) (tt.Type, error) {
	if s == "" {
		return tt.Void{}, nil
	}
	ty, err := tt.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	return ty, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc *Document) error {
	raw := documentYAML{Name: doc.Name}
	for _, c := range doc.SubComponents {
		raw.SubComponents = append(raw.SubComponents, encodeComponent(c))
	}
	for _, c := range doc.Globals {
		raw.Globals = append(raw.Globals, encodeComponent(c))
	}
	if doc.Root != nil {
		raw.Root = encodeComponent(doc.Root)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&raw); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}

func encodeComponent(c *Component) *componentYAML {
	raw := &componentYAML{Name: c.Name}
	for _, p := range c.Properties {
		raw.Properties = append(raw.Properties, propertyYAML{Name: p.Name, Type: p.Type.String()})
	}
	for _, b := range c.Bindings {
		ty := "void"
		if b.Type != nil {
			ty = b.Type.String()
		}
		raw.Bindings = append(raw.Bindings, bindingYAML{Name: b.Name, Type: ty, Expr: *EncodeExpression(b.Expr)})
	}
	return raw
}

// EncodeExpression converts e to a YAML node in the document format.
func EncodeExpression(e expr.Expression) *yaml.Node {
	switch e := e.(type) {
	case expr.ReturnStatement:
		if e.Value == nil {
			return single("return", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
		}
		return single("return", EncodeExpression(e.Value))
	case expr.CodeBlock:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, s := range e.Stmts {
			seq.Content = append(seq.Content, EncodeExpression(s))
		}
		return single("block", seq)
	case expr.Condition:
		return single("if", mapping(
			"cond", EncodeExpression(e.Cond),
			"then", EncodeExpression(e.True),
			"else", EncodeExpression(e.False),
		))
	case expr.BoolLiteral:
		return single("bool", scalar("!!bool", strconv.FormatBool(e.Value)))
	case expr.IntLiteral:
		return single("int", scalar("!!int", strconv.FormatInt(e.Value, 10)))
	case expr.FloatLiteral:
		return single("float", scalar("!!float", strconv.FormatFloat(e.Value, 'g', -1, 64)))
	case expr.StringLiteral:
		return single("string", scalar("!!str", e.Value))
	case expr.PropertyReference:
		return single("prop", scalar("!!str", e.Name))
	case expr.FunctionCall:
		m := mapping("name", scalar("!!str", e.Name))
		if e.ReturnType != nil && !tt.IsVoid(e.ReturnType) {
			m.Content = append(m.Content, scalar("!!str", "type"), scalar("!!str", e.ReturnType.String()))
		}
		if len(e.Args) > 0 {
			args := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, a := range e.Args {
				args.Content = append(args.Content, EncodeExpression(a))
			}
			m.Content = append(m.Content, scalar("!!str", "args"), args)
		}
		return single("call", m)
	case expr.UnaryOp:
		if e.Op == expr.OpNot {
			return single("not", EncodeExpression(e.Operand))
		}
		return single("neg", EncodeExpression(e.Operand))
	case expr.BinaryExpression:
		return single("binary", mapping(
			"op", scalar("!!str", e.Op.String()),
			"lhs", EncodeExpression(e.Lhs),
			"rhs", EncodeExpression(e.Rhs),
		))
	case expr.ReadLocalVariable:
		return single("load", mapping(
			"name", scalar("!!str", e.Name),
			"type", scalar("!!str", e.Type.String()),
		))
	case expr.StoreLocalVariable:
		return single("store", mapping(
			"name", scalar("!!str", e.Name),
			"value", EncodeExpression(e.Value),
		))
	case expr.StructFieldAccess:
		return single("field", mapping(
			"base", EncodeExpression(e.Base),
			"name", scalar("!!str", e.Name),
		))
	case expr.Struct:
		values := &yaml.Node{Kind: yaml.MappingNode}
		for _, name := range e.FieldNames() {
			values.Content = append(values.Content, scalar("!!str", name), EncodeExpression(e.Values[name]))
		}
		return single("struct", mapping(
			"type", scalar("!!str", e.Type.String()),
			"values", values,
		))
	default:
		panic(fmt.Sprintf("document: cannot encode expression kind %T", e))
	}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func single(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("!!str", key), value}}
}

func mapping(kv ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Content = append(m.Content, scalar("!!str", kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return m
}
