package value

import (
	"bytes"
	"reflect"
)

// Equal reports deep value equality. Kinds never cross: a boolean is
// never equal to an integer, an integer never to a float, a set never
// to a frozen set. Mismatched kinds are unequal before any payload is
// looked at. This is the equality literal matching uses, so "no
// coercion" holds for literals by construction.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case *Boolean:
		return av.Value == b.(*Boolean).Value
	case *Integer:
		return av.Value == b.(*Integer).Value
	case *Float:
		// NaN stays unequal to itself, as native comparison has it.
		return av.Value == b.(*Float).Value
	case *Text:
		return av.Value == b.(*Text).Value
	case *Bytes:
		return bytes.Equal(av.Value, b.(*Bytes).Value)
	case *Uuid:
		return av.Value == b.(*Uuid).Value
	case *Nil:
		return true
	case *List:
		return elementsEqual(av.Elements, b.(*List).Elements)
	case *Tuple:
		return elementsEqual(av.Elements, b.(*Tuple).Elements)
	case *Set:
		return membersEqual(av.Elements(), b.(*Set))
	case *FrozenSet:
		return membersEqual(av.Elements(), b.(*FrozenSet))
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		for _, p := range av.Pairs() {
			got, ok := bv.Get(p.Key)
			if !ok || !Equal(p.Value, got) {
				return false
			}
		}
		return true
	case *Record:
		bv := b.(*Record)
		if av.Class != bv.Class || len(av.Fields) != len(bv.Fields) {
			return false
		}
		// Fields are sorted by key, so positions line up.
		for i, f := range av.Fields {
			if f.Key != bv.Fields[i].Key || !Equal(f.Value, bv.Fields[i].Value) {
				return false
			}
		}
		return true
	case *Host:
		return reflect.DeepEqual(av.Value, b.(*Host).Value)
	default:
		return false
	}
}

func elementsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

type container interface {
	Contains(Value) bool
	Len() int
}

func membersEqual(a []Value, b container) bool {
	if len(a) != b.Len() {
		return false
	}
	// Both sides are deduplicated, so one-way containment plus equal
	// sizes decides it.
	for _, e := range a {
		if !b.Contains(e) {
			return false
		}
	}
	return true
}
