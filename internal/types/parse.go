package types

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads a type written the way Type.String prints it, for example
// "int" or "struct{actual: int, condition: bool}".
func Parse(s string) (Type, error) {
	p := &typeParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type %q", p.src[p.pos:], p.pos, s)
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d in type %q", c, p.pos, p.src)
	}
	p.pos++
	return nil
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) parseType() (Type, error) {
	name := p.ident()
	switch strings.ToLower(name) {
	case "void", "":
		if name == "" {
			return nil, fmt.Errorf("missing type name at offset %d in %q", p.pos, p.src)
		}
		return Void{}, nil
	case "invalid":
		return Invalid{}, nil
	case "bool":
		return Bool{}, nil
	case "int":
		return Int{}, nil
	case "float":
		return Float{}, nil
	case "string":
		return String{}, nil
	case "struct":
		return p.parseStructBody()
	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}

func (p *typeParser) parseStructBody() (Type, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	var fields []Field
	for p.peek() != '}' {
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("missing field name at offset %d in %q", p.pos, p.src)
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: name, Type: ty})
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return NewStruct(fields...), nil
}
