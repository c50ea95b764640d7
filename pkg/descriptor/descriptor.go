// Package descriptor defines the closed data model for expected runtime
// shapes: the Descriptor variant set, class declarations, literal
// constants, type-variable substitution and the canonical printer.
//
// Descriptors are immutable trees. They are built once per validation
// call (by a caller, a schema, a bridge, or shape inference), consumed
// by the matcher and the printer, and discarded. Substitution never
// edits a tree in place; it always returns a fresh one.
package descriptor

import (
	"fmt"
	"strings"
)

// Descriptor is the interface for all expected-shape variants.
//
// String returns the canonical printed form. The printed form is load
// bearing: diagnostics embed it verbatim and union de-duplication keys
// on it, so two structurally equal descriptors always print identically.
//
// Apply substitutes bound type variables, returning a fresh tree.
type Descriptor interface {
	String() string
	Apply(Subst) Descriptor
}

// PrimitiveKind names a scalar kind. The value of each constant is its
// canonical printed name.
type PrimitiveKind string

const (
	Boolean PrimitiveKind = "bool"
	Integer PrimitiveKind = "int"
	Float   PrimitiveKind = "float"
	Text    PrimitiveKind = "str"
	Bytes   PrimitiveKind = "bytes"
)

// ContainerKind names a homogeneous sequence flavor. List, set and
// frozen-set values are distinct: a list never satisfies a set shape.
type ContainerKind string

const (
	List      ContainerKind = "list"
	Set       ContainerKind = "set"
	FrozenSet ContainerKind = "frozenset"
)

// Any matches every value unconditionally.
type Any struct{}

func (d Any) String() string           { return "Any" }
func (d Any) Apply(s Subst) Descriptor { return d }

// Primitive is a concrete scalar kind. Boolean is distinct from
// Integer even though runtimes commonly represent booleans as integers.
type Primitive struct {
	Kind PrimitiveKind
}

func (d Primitive) String() string           { return string(d.Kind) }
func (d Primitive) Apply(s Subst) Descriptor { return d }

// Nominal is an exact class reference with no structural parameters.
// If the class declares fields, matching checks them; otherwise it is a
// bare identity check.
type Nominal struct {
	Class *Class
}

func (d Nominal) String() string {
	if d.Class == nil {
		return "<nil class>"
	}
	return d.Class.Name
}

func (d Nominal) Apply(s Subst) Descriptor { return d }

// Union is an ordered list of alternatives. Options are never
// themselves unions and never print identically to one another: both
// invariants are established by NewUnion, which is the only sanctioned
// way to build one.
type Union struct {
	Options []Descriptor
}

func (d Union) String() string {
	parts := make([]string, len(d.Options))
	for i, o := range d.Options {
		parts[i] = Print(o)
	}
	return strings.Join(parts, " | ")
}

func (d Union) Apply(s Subst) Descriptor {
	opts := make([]Descriptor, len(d.Options))
	for i, o := range d.Options {
		opts[i] = o.Apply(s)
	}
	// Substitution can make two options print alike; re-normalize.
	return NewUnion(opts...)
}

// Literal admits a fixed set of constant values, compared by value
// equality, never by shape. Constants are not descriptors and are never
// substituted.
type Literal struct {
	Constants []Constant
}

func (d Literal) String() string {
	parts := make([]string, len(d.Constants))
	for i, c := range d.Constants {
		parts[i] = c.Repr()
	}
	return "Literal[" + strings.Join(parts, ",") + "]"
}

func (d Literal) Apply(s Subst) Descriptor { return d }

// Sequence is a homogeneous container: every element must satisfy
// Element. Kind selects list, set or frozen set.
type Sequence struct {
	Kind    ContainerKind
	Element Descriptor
}

func (d Sequence) String() string {
	return string(d.Kind) + "[" + Print(d.Element) + "]"
}

func (d Sequence) Apply(s Subst) Descriptor {
	return Sequence{Kind: d.Kind, Element: d.Element.Apply(s)}
}

// Mapping requires every key to satisfy Key and every value to satisfy
// Value.
type Mapping struct {
	Key   Descriptor
	Value Descriptor
}

func (d Mapping) String() string {
	return "dict[" + Print(d.Key) + "," + Print(d.Value) + "]"
}

func (d Mapping) Apply(s Subst) Descriptor {
	return Mapping{Key: d.Key.Apply(s), Value: d.Value.Apply(s)}
}

// FixedTuple is an exact-arity tuple: position i of the value must
// satisfy Elements[i].
type FixedTuple struct {
	Elements []Descriptor
}

func (d FixedTuple) String() string {
	parts := make([]string, len(d.Elements))
	for i, e := range d.Elements {
		parts[i] = Print(e)
	}
	return "tuple[" + strings.Join(parts, ",") + "]"
}

func (d FixedTuple) Apply(s Subst) Descriptor {
	elems := make([]Descriptor, len(d.Elements))
	for i, e := range d.Elements {
		elems[i] = e.Apply(s)
	}
	return FixedTuple{Elements: elems}
}

// VariadicTuple is a tuple of arbitrary length whose every element
// satisfies Element. Zero elements satisfy it.
type VariadicTuple struct {
	Element Descriptor
}

func (d VariadicTuple) String() string {
	return "tuple[" + Print(d.Element) + ",...]"
}

func (d VariadicTuple) Apply(s Subst) Descriptor {
	return VariadicTuple{Element: d.Element.Apply(s)}
}

// Record is a structural mapping shape: named fields with per-field
// descriptors and required flags. A closed record rejects keys absent
// from Fields; an open one tolerates them. Field names are unique.
type Record struct {
	Name   string
	Fields []Field
	Closed bool
}

func (d Record) String() string { return d.Name }

func (d Record) Apply(s Subst) Descriptor {
	fields := make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = Field{Name: f.Name, Type: f.Type.Apply(s), Required: f.Required}
	}
	return Record{Name: d.Name, Fields: fields, Closed: d.Closed}
}

// Field returns the declared field with the given name.
func (d Record) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Generic is a nominal class concretized with positional type
// arguments. len(Arguments) must equal the arity the class declares;
// builders enforce this and the matcher rejects violations.
type Generic struct {
	Class     *Class
	Arguments []Descriptor
}

func (d Generic) String() string {
	name := "<nil class>"
	if d.Class != nil {
		name = d.Class.Name
	}
	parts := make([]string, len(d.Arguments))
	for i, a := range d.Arguments {
		parts[i] = Print(a)
	}
	return name + "[" + strings.Join(parts, ",") + "]"
}

func (d Generic) Apply(s Subst) Descriptor {
	args := make([]Descriptor, len(d.Arguments))
	for i, a := range d.Arguments {
		args[i] = a.Apply(s)
	}
	return Generic{Class: d.Class, Arguments: args}
}

// TypeVariable is a placeholder bound only inside a generic class's
// field declarations. It is never a terminal expected shape on its own.
type TypeVariable struct {
	Name string
}

func (d TypeVariable) String() string { return d.Name }

func (d TypeVariable) Apply(s Subst) Descriptor {
	if bound, ok := s[d.Name]; ok && bound != nil {
		return bound
	}
	return d
}

// Alias is a named wrapper around another descriptor. It prints as its
// own declared name and matches via Underlying; aliases may stack.
type Alias struct {
	Name       string
	Underlying Descriptor
}

func (d Alias) String() string           { return d.Name }
func (d Alias) Apply(s Subst) Descriptor { return d }

// Unalias strips alias wrappers until a non-alias descriptor remains.
// Returns the input unchanged if it is not an alias.
func Unalias(d Descriptor) Descriptor {
	for {
		a, ok := d.(Alias)
		if !ok {
			return d
		}
		d = a.Underlying
	}
}

// Print renders a descriptor in its canonical form. It is total: a nil
// or unrecognized descriptor degrades to a generic dump and never
// panics, since printing happens on diagnostic paths.
func Print(d Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	switch d.(type) {
	case Any, Primitive, Nominal, Union, Literal, Sequence, Mapping,
		FixedTuple, VariadicTuple, Record, Generic, TypeVariable, Alias:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}
