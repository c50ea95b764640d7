package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// The type expression language mirrors the printed form of
// descriptors, so any printed type parses back to an equivalent one:
//
//	union    := term ('|' term)*
//	term     := '(' union ')' | name ('[' arguments ']')?
//	arguments depend on the head: element types for containers,
//	constants for Literal, declared-class arguments otherwise.

type exprParser struct {
	src    string
	pos    int
	schema *Schema
	vars   map[string]bool
}

func parseTypeExpr(src string, s *Schema, vars map[string]bool) (descriptor.Descriptor, error) {
	p := &exprParser{src: src, schema: s, vars: vars}
	d, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after type", rest(p.src[p.pos:]))
	}
	return d, nil
}

func (p *exprParser) parseUnion() (descriptor.Descriptor, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	options := []descriptor.Descriptor{first}
	for {
		p.skipSpace()
		if !p.consume('|') {
			break
		}
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		options = append(options, next)
	}
	return descriptor.NewUnion(options...), nil
}

func (p *exprParser) parseTerm() (descriptor.Descriptor, error) {
	p.skipSpace()
	if p.consume('(') {
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(')') {
			return nil, p.errorf("expected ')'")
		}
		return inner, nil
	}

	name, ok := p.scanIdent()
	if !ok {
		return nil, p.errorf("expected a type name")
	}

	p.skipSpace()
	if !p.consume('[') {
		return p.resolveIdent(name)
	}

	switch name {
	case "list", "set", "frozenset":
		element, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(); err != nil {
			return nil, err
		}
		kinds := map[string]descriptor.ContainerKind{
			"list":      descriptor.List,
			"set":       descriptor.Set,
			"frozenset": descriptor.FrozenSet,
		}
		return descriptor.Sequence{Kind: kinds[name], Element: element}, nil

	case "dict":
		key, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(',') {
			return nil, p.errorf("dict takes two type arguments")
		}
		val, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expectClose(); err != nil {
			return nil, err
		}
		return descriptor.Mapping{Key: key, Value: val}, nil

	case "tuple":
		return p.parseTupleArguments()

	case "Literal":
		return p.parseLiteralArguments()

	default:
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		d, found, err := p.schema.lookupGeneric(name, args)
		if err != nil {
			return nil, p.wrap(err)
		}
		if !found {
			return nil, p.wrap(&UnknownTypeError{Name: name})
		}
		return d, nil
	}
}

// parseTupleArguments handles the three tuple forms: tuple[],
// tuple[A,B,...N] and the variadic tuple[T,...].
func (p *exprParser) parseTupleArguments() (descriptor.Descriptor, error) {
	p.skipSpace()
	if p.consume(']') {
		return descriptor.FixedTuple{}, nil
	}
	first, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	elements := []descriptor.Descriptor{first}
	for {
		p.skipSpace()
		if p.consume(']') {
			return descriptor.FixedTuple{Elements: elements}, nil
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' or ']' in tuple")
		}
		p.skipSpace()
		if strings.HasPrefix(p.src[p.pos:], "...") {
			if len(elements) != 1 {
				return nil, p.errorf("variadic tuple takes exactly one element type")
			}
			p.pos += 3
			if err := p.expectClose(); err != nil {
				return nil, err
			}
			return descriptor.VariadicTuple{Element: elements[0]}, nil
		}
		next, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		elements = append(elements, next)
	}
}

func (p *exprParser) parseLiteralArguments() (descriptor.Descriptor, error) {
	var constants []descriptor.Constant
	for {
		c, err := p.parseConstant()
		if err != nil {
			return nil, err
		}
		constants = append(constants, c)
		p.skipSpace()
		if p.consume(']') {
			return descriptor.Literal{Constants: constants}, nil
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' or ']' in Literal")
		}
	}
}

func (p *exprParser) parseArguments() ([]descriptor.Descriptor, error) {
	var args []descriptor.Descriptor
	for {
		arg, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.consume(']') {
			return args, nil
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *exprParser) parseConstant() (descriptor.Constant, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("expected a constant")
	}
	switch c := p.src[p.pos]; {
	case c == '\'' || c == '"':
		s, err := p.scanQuoted()
		if err != nil {
			return nil, err
		}
		return descriptor.TextConst{Value: s}, nil
	case c == 'b' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"'):
		p.pos++
		s, err := p.scanQuoted()
		if err != nil {
			return nil, err
		}
		return descriptor.BytesConst{Value: []byte(s)}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return p.scanNumber()
	default:
		name, ok := p.scanIdent()
		if !ok {
			return nil, p.errorf("expected a constant")
		}
		switch name {
		case "True":
			return descriptor.BoolConst{Value: true}, nil
		case "False":
			return descriptor.BoolConst{Value: false}, nil
		case "None":
			return descriptor.NoneConst{}, nil
		default:
			return nil, p.errorf("unknown constant %q", name)
		}
	}
}

func (p *exprParser) scanNumber() (descriptor.Constant, error) {
	start := p.pos
	p.consume('-')
	digits := 0
	float := false
scan:
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			float = true
		case c == 'e' || c == 'E':
			float = true
			if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '+' || p.src[p.pos+1] == '-') {
				p.pos++
			}
		default:
			break scan
		}
		p.pos++
	}
	if digits == 0 {
		return nil, p.errorf("malformed number")
	}
	text := p.src[start:p.pos]
	if float {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("malformed number %q", text)
		}
		return descriptor.FloatConst{Value: f}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("malformed number %q", text)
	}
	return descriptor.IntConst{Value: i}, nil
}

// scanQuoted reads a quoted string starting at the opening quote and
// decodes the escapes the printer emits.
func (p *exprParser) scanQuoted() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			switch e := p.src[p.pos]; e {
			case '\\', '\'', '"':
				b.WriteByte(e)
				p.pos++
			case 'n':
				b.WriteByte('\n')
				p.pos++
			case 'r':
				b.WriteByte('\r')
				p.pos++
			case 't':
				b.WriteByte('\t')
				p.pos++
			case 'x':
				n, err := p.scanHex(2)
				if err != nil {
					return "", err
				}
				b.WriteByte(byte(n))
			case 'u':
				n, err := p.scanHex(4)
				if err != nil {
					return "", err
				}
				b.WriteRune(rune(n))
			case 'U':
				n, err := p.scanHex(8)
				if err != nil {
					return "", err
				}
				b.WriteRune(rune(n))
			default:
				return "", p.errorf("unknown escape \\%c", e)
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *exprParser) scanHex(width int) (uint64, error) {
	p.pos++ // the marker byte
	if p.pos+width > len(p.src) {
		return 0, p.errorf("truncated escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
	if err != nil {
		return 0, p.errorf("malformed escape")
	}
	p.pos += width
	return n, nil
}

func (p *exprParser) resolveIdent(name string) (descriptor.Descriptor, error) {
	if d, ok := builtinType(name); ok {
		return d, nil
	}
	if p.vars[name] {
		return descriptor.TypeVariable{Name: name}, nil
	}
	d, found, err := p.schema.lookupName(name)
	if err != nil {
		return nil, p.wrap(err)
	}
	if found {
		return d, nil
	}
	return nil, p.wrap(&UnknownTypeError{Name: name})
}

func (p *exprParser) expectClose() error {
	p.skipSpace()
	if !p.consume(']') {
		return p.errorf("expected ']'")
	}
	return nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) scanIdent() (string, bool) {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos], p.pos > start) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.src[start:p.pos], true
}

func (p *exprParser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("parsing type %q at offset %d: %s", p.src, p.pos, msg)
}

// wrap annotates resolution errors with the expression source while
// keeping the original error in the chain for errors.As.
func (p *exprParser) wrap(err error) error {
	return fmt.Errorf("parsing type %q: %w", p.src, err)
}

func rest(s string) string {
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}

func builtinType(name string) (descriptor.Descriptor, bool) {
	switch name {
	case "any", "Any":
		return descriptor.Any{}, true
	case "bool":
		return descriptor.Primitive{Kind: descriptor.Boolean}, true
	case "int":
		return descriptor.Primitive{Kind: descriptor.Integer}, true
	case "float":
		return descriptor.Primitive{Kind: descriptor.Float}, true
	case "str":
		return descriptor.Primitive{Kind: descriptor.Text}, true
	case "bytes":
		return descriptor.Primitive{Kind: descriptor.Bytes}, true
	case "uuid", "UUID":
		return descriptor.Nominal{Class: descriptor.UUIDClass}, true
	case "none", "None":
		return descriptor.Nominal{Class: descriptor.NoneClass}, true
	default:
		return nil, false
	}
}

// ReservedName reports whether a name is claimed by the expression
// language and so cannot be used as a declaration or type parameter
// name. Tools that generate schemas check candidate names against it.
func ReservedName(name string) bool {
	return isReservedName(name)
}

// isReservedName reports whether a name is claimed by the expression
// language and thus unavailable for declarations and type parameters.
func isReservedName(name string) bool {
	if _, ok := builtinType(name); ok {
		return true
	}
	switch name {
	case "list", "set", "frozenset", "dict", "tuple", "Literal":
		return true
	}
	return false
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i], i > 0) {
			return false
		}
	}
	return true
}

func isIdentByte(c byte, tail bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return tail && c >= '0' && c <= '9'
}
