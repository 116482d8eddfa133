package classfile

import (
	"strings"

	"github.com/pkg/errors"
)

// TypeSig is one node of a parsed descriptor or generic signature.
type TypeSig interface{ sig() }

// BaseSig is a primitive or void, using the descriptor letter (B C D F I J S Z V).
type BaseSig struct{ Code byte }

// ClassSig is a class type. Name is in internal form with nested classes joined by '$'. Args are the
// arguments of the innermost class.
type ClassSig struct {
	Name string
	Args []TypeArg
}

type TypeVarSig struct{ Name string }

type ArraySig struct{ Elem TypeSig }

func (BaseSig) sig()    {}
func (ClassSig) sig()   {}
func (TypeVarSig) sig() {}
func (ArraySig) sig()   {}

// TypeArg is a type argument. Wildcard is 0 for an exact argument, '*' for "?", '+' for
// "? extends" and '-' for "? super".
type TypeArg struct {
	Wildcard byte
	Type     TypeSig
}

type TypeParamSig struct {
	Name   string
	Bounds []TypeSig
}

type ClassSignature struct {
	TypeParams []TypeParamSig
	Super      ClassSig
	Interfaces []ClassSig
}

type MethodSignature struct {
	TypeParams []TypeParamSig
	Params     []TypeSig
	Return     TypeSig
	Throws     []TypeSig
}

type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) eof() bool { return p.pos >= len(p.s) }

func (p *sigParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *sigParser) errorf(format string, a ...any) error {
	return errors.Wrapf(errors.Errorf(format, a...), "signature %q at %d", p.s, p.pos)
}

func (p *sigParser) identifier(stop string) string {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(stop, rune(p.s[p.pos])) {
		p.pos++
	}
	return p.s[start:p.pos]
}

// ParseClassSignature parses the Signature attribute of a class.
func ParseClassSignature(s string) (*ClassSignature, error) {
	p := &sigParser{s: s}
	out := &ClassSignature{}
	var err error
	if out.TypeParams, err = p.typeParams(); err != nil {
		return nil, err
	}
	if out.Super, err = p.classType(); err != nil {
		return nil, err
	}
	for !p.eof() {
		itf, err := p.classType()
		if err != nil {
			return nil, err
		}
		out.Interfaces = append(out.Interfaces, itf)
	}
	return out, nil
}

// ParseMethodSignature parses a method Signature attribute or a plain method descriptor.
func ParseMethodSignature(s string) (*MethodSignature, error) {
	p := &sigParser{s: s}
	out := &MethodSignature{}
	var err error
	if out.TypeParams, err = p.typeParams(); err != nil {
		return nil, err
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	for p.peek() != ')' {
		if p.eof() {
			return nil, p.errorf("unterminated parameter list")
		}
		t, err := p.typeSig()
		if err != nil {
			return nil, err
		}
		out.Params = append(out.Params, t)
	}
	p.pos++
	if out.Return, err = p.typeSig(); err != nil {
		return nil, err
	}
	for p.peek() == '^' {
		p.pos++
		t, err := p.referenceType()
		if err != nil {
			return nil, err
		}
		out.Throws = append(out.Throws, t)
	}
	if !p.eof() {
		return nil, p.errorf("trailing characters")
	}
	return out, nil
}

// ParseFieldSignature parses a field Signature attribute or a field descriptor.
func ParseFieldSignature(s string) (TypeSig, error) {
	p := &sigParser{s: s}
	t, err := p.typeSig()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("trailing characters")
	}
	return t, nil
}

func (p *sigParser) typeParams() ([]TypeParamSig, error) {
	if p.peek() != '<' {
		return nil, nil
	}
	p.pos++
	var out []TypeParamSig
	for p.peek() != '>' {
		if p.eof() {
			return nil, p.errorf("unterminated type parameters")
		}
		tp := TypeParamSig{Name: p.identifier(":")}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		// the class bound may be empty when only interface bounds follow
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			b, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			tp.Bounds = append(tp.Bounds, b)
		}
		for p.peek() == ':' {
			p.pos++
			b, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			tp.Bounds = append(tp.Bounds, b)
		}
		out = append(out, tp)
	}
	p.pos++
	return out, nil
}

func (p *sigParser) typeSig() (TypeSig, error) {
	switch c := p.peek(); c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		p.pos++
		return BaseSig{Code: c}, nil
	}
	return p.referenceType()
}

func (p *sigParser) referenceType() (TypeSig, error) {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		p.pos++
		name := p.identifier(";")
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		return TypeVarSig{Name: name}, nil
	case '[':
		p.pos++
		elem, err := p.typeSig()
		if err != nil {
			return nil, err
		}
		return ArraySig{Elem: elem}, nil
	}
	return nil, p.errorf("unexpected %q", p.peek())
}

func (p *sigParser) classType() (ClassSig, error) {
	if err := p.expect('L'); err != nil {
		return ClassSig{}, err
	}
	out := ClassSig{Name: p.identifier("<.;")}
	for {
		if p.peek() == '<' {
			args, err := p.typeArgs()
			if err != nil {
				return ClassSig{}, err
			}
			out.Args = args
		}
		if p.peek() != '.' {
			break
		}
		p.pos++
		out.Name += "$" + p.identifier("<.;")
		out.Args = nil
	}
	if err := p.expect(';'); err != nil {
		return ClassSig{}, err
	}
	return out, nil
}

func (p *sigParser) typeArgs() ([]TypeArg, error) {
	p.pos++
	var out []TypeArg
	for p.peek() != '>' {
		switch c := p.peek(); c {
		case 0:
			return nil, p.errorf("unterminated type arguments")
		case '*':
			p.pos++
			out = append(out, TypeArg{Wildcard: '*'})
		case '+', '-':
			p.pos++
			t, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			out = append(out, TypeArg{Wildcard: c, Type: t})
		default:
			t, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			out = append(out, TypeArg{Type: t})
		}
	}
	p.pos++
	return out, nil
}
