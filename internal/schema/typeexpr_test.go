package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/funtype/pkg/descriptor"
)

func TestParseTypeForms(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"Any", "Any"},
		{"any", "Any"},
		{"bytes", "bytes"},
		{"uuid", "UUID"},
		{"none", "None"},
		{"list[int]", "list[int]"},
		{"set[str]", "set[str]"},
		{"frozenset[int]", "frozenset[int]"},
		{"dict[str,int]", "dict[str,int]"},
		{"dict[str, int]", "dict[str,int]"}, // spaces tolerated, print is canonical
		{"tuple[]", "tuple[]"},
		{"tuple[int,str]", "tuple[int,str]"},
		{"tuple[int,...]", "tuple[int,...]"},
		{"tuple[int, ...]", "tuple[int,...]"},
		{"int | str", "int | str"},
		{"int|str|bool", "int | str | bool"},
		// Unions deduplicate and flatten.
		{"int | int", "int"},
		{"int | (str | bool)", "int | str | bool"},
		{"list[int | none]", "list[int | None]"},
		{"dict[str,list[tuple[int,str]]]", "dict[str,list[tuple[int,str]]]"},
		{"Literal[5]", "Literal[5]"},
		{"Literal[-3,0]", "Literal[-3,0]"},
		{"Literal[1.5,2.0]", "Literal[1.5,2.0]"},
		{"Literal['a','b']", "Literal['a','b']"},
		{`Literal["d'Arc"]`, `Literal["d'Arc"]`},
		{"Literal[True,False,None]", "Literal[True,False,None]"},
		{`Literal['line\nbreak']`, `Literal['line\nbreak']`},
		{"Literal[b'ab']", "Literal[b'ab']"},
		{"(int)", "int"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d, err := ParseType(tt.src)
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tt.src, err)
			}
			if got := descriptor.Print(d); got != tt.want {
				t.Errorf("ParseType(%q) prints %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// Printed descriptors are part of the error format, so every printed
// form must parse back to a type that prints identically.
func TestPrintedTypesRoundTrip(t *testing.T) {
	intd := descriptor.Primitive{Kind: descriptor.Integer}
	strd := descriptor.Primitive{Kind: descriptor.Text}

	descriptors := []descriptor.Descriptor{
		descriptor.Any{},
		intd,
		descriptor.Primitive{Kind: descriptor.Bytes},
		descriptor.Nominal{Class: descriptor.UUIDClass},
		descriptor.Nominal{Class: descriptor.NoneClass},
		descriptor.NewUnion(intd, strd, descriptor.Nominal{Class: descriptor.NoneClass}),
		descriptor.Sequence{Kind: descriptor.FrozenSet, Element: descriptor.NewUnion(intd, strd)},
		descriptor.Mapping{Key: strd, Value: descriptor.Sequence{Kind: descriptor.List, Element: intd}},
		descriptor.FixedTuple{},
		descriptor.FixedTuple{Elements: []descriptor.Descriptor{intd, strd}},
		descriptor.VariadicTuple{Element: intd},
		descriptor.Literal{Constants: []descriptor.Constant{
			descriptor.IntConst{Value: 5},
			descriptor.FloatConst{Value: 2},
			descriptor.TextConst{Value: "it's"},
			descriptor.TextConst{Value: "tab\tand\nline"},
			descriptor.BytesConst{Value: []byte{0x00, 'A'}},
			descriptor.BoolConst{Value: true},
			descriptor.NoneConst{},
		}},
	}
	for _, d := range descriptors {
		printed := descriptor.Print(d)
		parsed, err := ParseType(printed)
		if err != nil {
			t.Errorf("printed form %q does not parse back: %v", printed, err)
			continue
		}
		if got := descriptor.Print(parsed); got != printed {
			t.Errorf("round trip changed %q to %q", printed, got)
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"unknown name", "Widget"},
		{"unterminated list", "list[int"},
		{"dict with one argument", "dict[str]"},
		{"list with two arguments", "list[int,str]"},
		{"trailing garbage", "int]"},
		{"dangling union", "int |"},
		{"variadic with two elements", "tuple[int,str,...]"},
		{"empty literal", "Literal[]"},
		{"unknown constant", "Literal[maybe]"},
		{"unterminated string", "Literal['a]"},
		{"empty parens", "()"},
		{"generic on a builtin", "int[str]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d, err := ParseType(tt.src); err == nil {
				t.Errorf("ParseType(%q) = %s, want error", tt.src, descriptor.Print(d))
			}
		})
	}
}

func TestParseTypeUnknownNameErrorType(t *testing.T) {
	_, err := ParseType("Widget")
	if err == nil {
		t.Fatalf("ParseType accepted an unknown name")
	}
	var unknown *UnknownTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("error %T does not unwrap to *UnknownTypeError", err)
	}
	if unknown.Name != "Widget" {
		t.Errorf("UnknownTypeError.Name = %q, want Widget", unknown.Name)
	}
	if !strings.Contains(err.Error(), `"Widget"`) {
		t.Errorf("error text %q does not name the type", err)
	}
}
