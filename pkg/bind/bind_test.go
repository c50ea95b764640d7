package bind_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/funtype/pkg/bind"
	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
	"github.com/funvibe/funtype/pkg/value"
)

type Account struct {
	ID     int    `json:"id"`
	Name   string `funtype:"display_name" json:"name"`
	Email  *string
	secret string // unexported, never marshalled
	Tags   []string `json:"-"`
}

type Node struct {
	Value int
	Next  *Node
}

func TestToValueScalars(t *testing.T) {
	tests := []struct {
		name        string
		val         any
		wantInspect string
		wantShape   string
	}{
		{"bool", true, "true", "bool"},
		{"int", 42, "42", "int"},
		{"uint8", uint8(7), "7", "int"},
		{"float", 1.5, "1.5", "float"},
		{"string", "hi", `"hi"`, "str"},
		{"bytes", []byte{0xde, 0xad}, "0xdead", "bytes"},
		{"nil", nil, "none", "None"},
		{"nil pointer", (*int)(nil), "none", "None"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := bind.ToValue(tt.val)
			if err != nil {
				t.Fatalf("ToValue(%v) error: %v", tt.val, err)
			}
			if v.Inspect() != tt.wantInspect {
				t.Errorf("Inspect = %q, want %q", v.Inspect(), tt.wantInspect)
			}
			if got := descriptor.Print(v.Shape()); got != tt.wantShape {
				t.Errorf("Shape = %q, want %q", got, tt.wantShape)
			}
		})
	}
}

func TestToValueUuid(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	v, err := bind.ToValue(id)
	if err != nil {
		t.Fatalf("ToValue(uuid) error: %v", err)
	}
	if _, ok := v.(*value.Uuid); !ok {
		t.Fatalf("ToValue(uuid) = %T, want *value.Uuid", v)
	}
	if got := descriptor.Print(v.Shape()); got != "UUID" {
		t.Errorf("Shape = %q, want UUID", got)
	}
}

func TestToValueCollections(t *testing.T) {
	v, err := bind.ToValue([]any{1, "a", true})
	if err != nil {
		t.Fatalf("ToValue(slice) error: %v", err)
	}
	if got := descriptor.Print(v.Shape()); got != "list[int | str | bool]" {
		t.Errorf("slice shape = %q", got)
	}

	v, err = bind.ToValue(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("ToValue(map) error: %v", err)
	}
	if got := descriptor.Print(v.Shape()); got != "dict[str,int]" {
		t.Errorf("map shape = %q", got)
	}

	v, err = bind.ToValue(map[string]struct{}{"x": {}, "y": {}})
	if err != nil {
		t.Fatalf("ToValue(set) error: %v", err)
	}
	set, ok := v.(*value.Set)
	if !ok {
		t.Fatalf("map[string]struct{} = %T, want *value.Set", v)
	}
	if set.Len() != 2 {
		t.Errorf("set has %d members, want 2", set.Len())
	}
}

func TestStructsShareAClass(t *testing.T) {
	email := "a@b.c"
	first, err := bind.ToValue(Account{ID: 1, Name: "ada", Email: &email})
	if err != nil {
		t.Fatalf("ToValue error: %v", err)
	}
	second, err := bind.ToValue(Account{ID: 1, Name: "ada", Email: &email})
	if err != nil {
		t.Fatalf("ToValue error: %v", err)
	}
	if !value.Equal(first, second) {
		t.Errorf("equal structs marshalled to unequal records")
	}

	rec, ok := first.(*value.Record)
	if !ok {
		t.Fatalf("struct marshalled to %T, want *value.Record", first)
	}
	if _, ok := rec.Get("display_name"); !ok {
		t.Errorf("funtype tag did not rename the field")
	}
	if _, ok := rec.Get("secret"); ok {
		t.Errorf("unexported field leaked into the record")
	}
	if _, ok := rec.Get("Tags"); ok {
		t.Errorf("json:\"-\" field was marshalled")
	}
}

func TestTypeOfAcceptsMarshalledValues(t *testing.T) {
	email := "a@b.c"
	samples := []any{
		true,
		42,
		"x",
		[]int{1, 2, 3},
		map[string]float64{"pi": 3.14},
		map[int]struct{}{1: {}},
		Account{ID: 1, Name: "ada", Email: &email},
		Account{ID: 2, Name: "bob"}, // nil pointer field
		&Node{Value: 1, Next: &Node{Value: 2}},
	}
	for _, sample := range samples {
		if err := bind.Check(sample, bind.TypeOf(sample)); err != nil {
			t.Errorf("Check(%#v, TypeOf) = %v, want nil", sample, err)
		}
	}
}

func TestTypeForShapes(t *testing.T) {
	tests := []struct {
		name string
		t    reflect.Type
		want string
	}{
		{"int", reflect.TypeOf(0), "int"},
		{"byte slice", reflect.TypeOf([]byte(nil)), "bytes"},
		{"slice", reflect.TypeOf([]string(nil)), "list[str]"},
		{"map", reflect.TypeOf(map[string]int(nil)), "dict[str,int]"},
		{"set", reflect.TypeOf(map[string]struct{}(nil)), "set[str]"},
		{"pointer", reflect.TypeOf((*int)(nil)), "int | None"},
		{"interface", reflect.TypeOf((*any)(nil)).Elem(), "Any"},
		{"uuid", reflect.TypeOf(uuid.UUID{}), "UUID"},
		{"struct", reflect.TypeOf(Account{}), "Account"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := descriptor.Print(bind.TypeFor(tt.t)); got != tt.want {
				t.Errorf("TypeFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeForSelfReference(t *testing.T) {
	// Must terminate even though Node refers to itself.
	d := bind.TypeFor(reflect.TypeOf(Node{}))
	if got := descriptor.Print(d); got != "Node" {
		t.Errorf("TypeFor(Node) = %q", got)
	}

	m := bind.NewMarshaller()
	c := m.ClassFor(reflect.TypeOf(Node{}))
	if c == nil {
		t.Fatalf("ClassFor(Node) = nil")
	}
	next, ok := c.Field("Next")
	if !ok {
		t.Fatalf("Node class lost its Next field")
	}
	if got := descriptor.Print(next.Type); got != "Node | None" {
		t.Errorf("Next field type = %q, want %q", got, "Node | None")
	}
}

func TestCheckReportsShapeErrors(t *testing.T) {
	err := bind.Check(map[string]string{"x": "nope"}, bind.TypeFor(reflect.TypeOf(map[string]int(nil))))
	if err == nil {
		t.Fatalf("Check accepted a dict[str,str] as dict[str,int]")
	}
	failure, ok := err.(*typecheck.ValidationFailure)
	if !ok {
		t.Fatalf("Check returned %T, want *typecheck.ValidationFailure", err)
	}
	if failure.Expected != "dict[str,int]" || failure.Actual != "dict[str,str]" {
		t.Errorf("failure = (%q, %q)", failure.Expected, failure.Actual)
	}
}

func TestHostValuesKeepTheirType(t *testing.T) {
	fn := func() {}
	v, err := bind.ToValue(fn)
	if err != nil {
		t.Fatalf("ToValue(func) error: %v", err)
	}
	if _, ok := v.(*value.Host); !ok {
		t.Fatalf("ToValue(func) = %T, want *value.Host", v)
	}
	if err := bind.Check(fn, bind.TypeOf(fn)); err != nil {
		t.Errorf("a func does not satisfy its own host class: %v", err)
	}
}
