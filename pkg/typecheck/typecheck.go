// Package typecheck is the validation boundary: it decides whether a
// runtime value conforms to an expected shape and, when it does not,
// produces a failure naming both the expected shape and the shape
// inferred from the value.
//
// Every call is independent and safe to run concurrently: descriptors
// and values are read-only inputs, and all intermediate trees are
// freshly allocated per call.
package typecheck

import (
	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/value"
)

// Validate checks v against expected. It returns nil on conformance
// and a *ValidationFailure otherwise; no other error kind exists. A
// malformed expected shape does not raise; it simply never matches.
func Validate(v value.Value, expected descriptor.Descriptor) error {
	if v == nil {
		v = value.NIL
	}
	if Matches(v, expected) {
		return nil
	}
	return &ValidationFailure{
		Expected: descriptor.Print(expected),
		Actual:   descriptor.Print(Infer(v)),
	}
}

// Infer returns the most specific descriptor describing v. It serves
// diagnostics only; Validate never consults it for the verdict.
func Infer(v value.Value) descriptor.Descriptor {
	if v == nil {
		v = value.NIL
	}
	return v.Shape()
}

// Print renders a descriptor in its canonical form, for hosts that
// show expectations outside a failure path.
func Print(d descriptor.Descriptor) string {
	return descriptor.Print(d)
}
