package descriptor

// NewUnion builds a normalized union: nested unions are flattened,
// options are deduplicated by canonical printed form keeping first-seen
// order, a single survivor is returned as itself, and zero options
// degrade to Any. All union construction funnels through here so the
// flattening and de-duplication invariants hold wherever a Union can
// appear.
func NewUnion(options ...Descriptor) Descriptor {
	flat := make([]Descriptor, 0, len(options))
	for _, o := range options {
		if u, ok := o.(Union); ok {
			flat = append(flat, u.Options...)
		} else {
			flat = append(flat, o)
		}
	}

	seen := make(map[string]bool, len(flat))
	unique := make([]Descriptor, 0, len(flat))
	for _, o := range flat {
		key := Print(o)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, o)
	}

	switch len(unique) {
	case 0:
		return Any{}
	case 1:
		return unique[0]
	default:
		return Union{Options: unique}
	}
}

// Unionize collapses a list of inferred descriptors into one element
// descriptor for a container shape: empty input means the container
// told us nothing, hence Any; otherwise the NewUnion normalization.
// First-seen order keeps diagnostics deterministic for a given input.
func Unionize(options []Descriptor) Descriptor {
	return NewUnion(options...)
}
