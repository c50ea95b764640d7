package descriptor

import (
	"strconv"
	"strings"
	"unicode"
)

// Constant is a literal constant admitted by a Literal descriptor.
// Constants are scalar values, not descriptors: they take part in value
// equality during matching and are never substituted into.
//
// Repr returns the canonical literal representation used inside
// Literal[...] printed forms.
type Constant interface {
	Repr() string
}

// BoolConst is a literal boolean constant.
type BoolConst struct {
	Value bool
}

func (c BoolConst) Repr() string {
	if c.Value {
		return "True"
	}
	return "False"
}

// IntConst is a literal integer constant.
type IntConst struct {
	Value int64
}

func (c IntConst) Repr() string { return strconv.FormatInt(c.Value, 10) }

// FloatConst is a literal float constant.
type FloatConst struct {
	Value float64
}

func (c FloatConst) Repr() string { return reprFloat(c.Value) }

// TextConst is a literal text constant.
type TextConst struct {
	Value string
}

func (c TextConst) Repr() string { return quoteText(c.Value) }

// BytesConst is a literal bytes constant.
type BytesConst struct {
	Value []byte
}

func (c BytesConst) Repr() string { return "b" + quoteBytes(c.Value) }

// NoneConst is the literal null constant.
type NoneConst struct{}

func (c NoneConst) Repr() string { return "None" }

// reprFloat renders a float in its shortest round-trippable form,
// keeping a trailing ".0" on integral values so that floats stay
// visually distinct from integers.
func reprFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
		s += ".0"
	}
	return s
}

// quoteText renders text single-quoted, switching to double quotes when
// the text contains a single quote but no double quote. Control
// characters escape to \xNN, printable runes stay raw.
func quoteText(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)
			b.WriteString(hexByte(byte(r)))
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r > 0xffff:
			b.WriteString(`\U`)
			b.WriteString(hexRune8(r))
		default:
			b.WriteString(`\u`)
			b.WriteString(hexRune(r))
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// quoteBytes renders raw bytes single-quoted; anything outside
// printable ASCII escapes to \xNN.
func quoteBytes(p []byte) string {
	quote := byte('\'')
	if strings.IndexByte(string(p), '\'') >= 0 && strings.IndexByte(string(p), '"') < 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, c := range p {
		switch {
		case c == quote || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			b.WriteString(`\x`)
			b.WriteString(hexByte(c))
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

const hexDigits = "0123456789abcdef"

func hexByte(c byte) string {
	return string([]byte{hexDigits[c>>4], hexDigits[c&0xf]})
}

func hexRune(r rune) string {
	s := strconv.FormatInt(int64(r), 16)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func hexRune8(r rune) string {
	s := strconv.FormatInt(int64(r), 16)
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}
