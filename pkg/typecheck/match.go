package typecheck

import (
	"bytes"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/value"
)

// Matches reports whether v satisfies d. It is total and pure: no
// descriptor shape makes it panic or error, recursion is bounded by the
// nesting of d and v, and nothing is mutated. The rule order is load
// bearing: Any first, aliases unwrapped before anything else, unions
// tried in declared order, and unrecognized shapes rejected last.
func Matches(v value.Value, d descriptor.Descriptor) bool {
	if v == nil {
		v = value.NIL
	}
	d = descriptor.Unalias(d)

	switch t := d.(type) {
	case descriptor.Any:
		return true
	case descriptor.Primitive:
		return matchPrimitive(v, t)
	case descriptor.Nominal:
		return matchNominal(v, t)
	case descriptor.Record:
		return matchRecord(v, t)
	case descriptor.Union:
		for _, o := range t.Options {
			if Matches(v, o) {
				return true
			}
		}
		return false
	case descriptor.Literal:
		for _, c := range t.Constants {
			if constantEqual(v, c) {
				return true
			}
		}
		return false
	case descriptor.Sequence:
		return matchSequence(v, t)
	case descriptor.Mapping:
		return matchMapping(v, t)
	case descriptor.FixedTuple:
		return matchFixedTuple(v, t)
	case descriptor.VariadicTuple:
		return matchVariadicTuple(v, t)
	case descriptor.Generic:
		return matchGeneric(v, t)
	case descriptor.TypeVariable:
		// A type variable reaching the matcher was never substituted;
		// it is not a shape a value can satisfy.
		return false
	default:
		// Unknown or nil descriptor: reject. Accepting silently would
		// mask type errors.
		return false
	}
}

// matchPrimitive pairs each scalar kind with its value variant. The
// boolean/integer split is deliberate on both sides: a boolean value
// never satisfies int, and an integer never satisfies bool or float.
func matchPrimitive(v value.Value, d descriptor.Primitive) bool {
	switch d.Kind {
	case descriptor.Boolean:
		_, ok := v.(*value.Boolean)
		return ok
	case descriptor.Integer:
		_, ok := v.(*value.Integer)
		return ok
	case descriptor.Float:
		_, ok := v.(*value.Float)
		return ok
	case descriptor.Text:
		_, ok := v.(*value.Text)
		return ok
	case descriptor.Bytes:
		_, ok := v.(*value.Bytes)
		return ok
	default:
		return false
	}
}

// classOf returns the nominal identity of values that carry one.
func classOf(v value.Value) *descriptor.Class {
	switch hv := v.(type) {
	case *value.Record:
		return hv.Class
	case *value.Uuid:
		return descriptor.UUIDClass
	case *value.Nil:
		return descriptor.NoneClass
	case *value.Host:
		return hv.Class
	default:
		return nil
	}
}

func matchNominal(v value.Value, d descriptor.Nominal) bool {
	if d.Class == nil || classOf(v) != d.Class {
		return false
	}
	rv, ok := v.(*value.Record)
	if !ok || len(d.Class.Fields) == 0 {
		// Bare class: identity was the whole check.
		return true
	}
	return matchDeclaredFields(rv, d.Class.Fields)
}

// matchDeclaredFields checks every declared field against the instance.
// A declared field the instance does not carry is a mismatch.
func matchDeclaredFields(rv *value.Record, fields []descriptor.Field) bool {
	for _, f := range fields {
		fv, ok := rv.Get(f.Name)
		if !ok {
			return false
		}
		if !Matches(fv, f.Type) {
			return false
		}
	}
	return true
}

func matchRecord(v value.Value, d descriptor.Record) bool {
	m, ok := v.(*value.Map)
	if !ok {
		return false
	}
	for _, f := range d.Fields {
		fv, found := m.GetText(f.Name)
		if !found {
			if f.Required {
				return false
			}
			continue
		}
		if !Matches(fv, f.Type) {
			return false
		}
	}
	if d.Closed {
		for _, p := range m.Pairs() {
			kt, ok := p.Key.(*value.Text)
			if !ok {
				return false
			}
			if _, declared := d.Field(kt.Value); !declared {
				return false
			}
		}
	}
	return true
}

func matchSequence(v value.Value, d descriptor.Sequence) bool {
	// The container flavor must agree before elements are looked at: a
	// list never satisfies a set shape and vice versa.
	var elems []value.Value
	switch sv := v.(type) {
	case *value.List:
		if d.Kind != descriptor.List {
			return false
		}
		elems = sv.Elements
	case *value.Set:
		if d.Kind != descriptor.Set {
			return false
		}
		elems = sv.Elements()
	case *value.FrozenSet:
		if d.Kind != descriptor.FrozenSet {
			return false
		}
		elems = sv.Elements()
	default:
		return false
	}
	for _, e := range elems {
		if !Matches(e, d.Element) {
			return false
		}
	}
	return true
}

func matchMapping(v value.Value, d descriptor.Mapping) bool {
	m, ok := v.(*value.Map)
	if !ok {
		return false
	}
	for _, p := range m.Pairs() {
		if !Matches(p.Key, d.Key) {
			return false
		}
		if !Matches(p.Value, d.Value) {
			return false
		}
	}
	return true
}

func matchFixedTuple(v value.Value, d descriptor.FixedTuple) bool {
	tv, ok := v.(*value.Tuple)
	if !ok || len(tv.Elements) != len(d.Elements) {
		return false
	}
	for i, e := range tv.Elements {
		if !Matches(e, d.Elements[i]) {
			return false
		}
	}
	return true
}

func matchVariadicTuple(v value.Value, d descriptor.VariadicTuple) bool {
	tv, ok := v.(*value.Tuple)
	if !ok {
		return false
	}
	for _, e := range tv.Elements {
		if !Matches(e, d.Element) {
			return false
		}
	}
	return true
}

func matchGeneric(v value.Value, d descriptor.Generic) bool {
	rv, ok := v.(*value.Record)
	if !ok || d.Class == nil || rv.Class != d.Class {
		return false
	}
	bind, ok := descriptor.BindArguments(d.Class, d.Arguments)
	if !ok {
		// Argument count disagrees with the declared arity: a
		// malformed shape, rejected rather than raised.
		return false
	}
	for _, f := range d.Class.Fields {
		fv, found := rv.Get(f.Name)
		if !found {
			return false
		}
		// Every field gets its own freshly substituted descriptor so
		// bindings never leak between fields or between validations.
		if !Matches(fv, f.Type.Apply(bind)) {
			return false
		}
	}
	return true
}

// constantEqual compares a runtime value against a literal constant.
// Kinds never cross: no boolean/integer or integer/float coercion.
func constantEqual(v value.Value, c descriptor.Constant) bool {
	switch cv := c.(type) {
	case descriptor.BoolConst:
		b, ok := v.(*value.Boolean)
		return ok && b.Value == cv.Value
	case descriptor.IntConst:
		i, ok := v.(*value.Integer)
		return ok && i.Value == cv.Value
	case descriptor.FloatConst:
		f, ok := v.(*value.Float)
		return ok && f.Value == cv.Value
	case descriptor.TextConst:
		t, ok := v.(*value.Text)
		return ok && t.Value == cv.Value
	case descriptor.BytesConst:
		b, ok := v.(*value.Bytes)
		return ok && bytes.Equal(b.Value, cv.Value)
	case descriptor.NoneConst:
		_, ok := v.(*value.Nil)
		return ok
	default:
		return false
	}
}
