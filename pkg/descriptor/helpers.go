package descriptor

// Origin identifies the head constructor of a parameterized descriptor.
type Origin string

const (
	OriginNone      Origin = ""
	OriginList      Origin = "list"
	OriginSet       Origin = "set"
	OriginFrozenSet Origin = "frozenset"
	OriginDict      Origin = "dict"
	OriginTuple     Origin = "tuple"
	OriginUnion     Origin = "union"
	OriginClass     Origin = "class"
)

// IsUnion reports whether d is a union.
func IsUnion(d Descriptor) bool {
	_, ok := d.(Union)
	return ok
}

// IsLiteral reports whether d is a literal constant set.
func IsLiteral(d Descriptor) bool {
	_, ok := d.(Literal)
	return ok
}

// IsRecordLike reports whether d describes a shape with declared
// fields: a structural record, or a nominal/generic reference to a
// class that declares fields.
func IsRecordLike(d Descriptor) bool {
	switch t := d.(type) {
	case Record:
		return true
	case Nominal:
		return t.Class != nil && len(t.Class.Fields) > 0
	case Generic:
		return t.Class != nil && len(t.Class.Fields) > 0
	default:
		return false
	}
}

// OriginAndArguments splits a compound descriptor into its head
// constructor and its ordered argument list, normalizing the container
// and class parameterization styles into one shape. Non-parameterized
// descriptors (and literals, whose arguments are constants rather than
// descriptors) return (OriginNone, nil). For OriginClass the class
// itself is reachable through the descriptor, not through the origin.
func OriginAndArguments(d Descriptor) (Origin, []Descriptor) {
	switch t := d.(type) {
	case Sequence:
		switch t.Kind {
		case Set:
			return OriginSet, []Descriptor{t.Element}
		case FrozenSet:
			return OriginFrozenSet, []Descriptor{t.Element}
		default:
			return OriginList, []Descriptor{t.Element}
		}
	case Mapping:
		return OriginDict, []Descriptor{t.Key, t.Value}
	case FixedTuple:
		return OriginTuple, append([]Descriptor(nil), t.Elements...)
	case VariadicTuple:
		return OriginTuple, []Descriptor{t.Element}
	case Union:
		return OriginUnion, append([]Descriptor(nil), t.Options...)
	case Generic:
		return OriginClass, append([]Descriptor(nil), t.Arguments...)
	default:
		return OriginNone, nil
	}
}
