package bind

import (
	"reflect"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
	"github.com/funvibe/funtype/pkg/value"
)

// defaultMarshaller backs the package-level helpers, so independent
// callers agree on class identities for the same Go types.
var defaultMarshaller = NewMarshaller()

// ToValue converts a Go value with the shared marshaller.
func ToValue(val any) (value.Value, error) {
	return defaultMarshaller.ToValue(val)
}

// TypeFor derives a descriptor from a Go type with the shared
// marshaller.
func TypeFor(t reflect.Type) descriptor.Descriptor {
	return defaultMarshaller.TypeFor(t)
}

// TypeOf derives a descriptor from a Go value's static type.
func TypeOf(val any) descriptor.Descriptor {
	if val == nil {
		return descriptor.Nominal{Class: descriptor.NoneClass}
	}
	return defaultMarshaller.TypeFor(reflect.TypeOf(val))
}

// Check marshals a Go value and validates it against a descriptor.
// The returned error is the typecheck failure, or the marshalling
// error when the value cannot be represented.
func Check(val any, expected descriptor.Descriptor) error {
	v, err := defaultMarshaller.ToValue(val)
	if err != nil {
		return err
	}
	return typecheck.Validate(v, expected)
}

// Shape marshals a Go value and infers its shape with the shared
// marshaller.
func Shape(val any) (descriptor.Descriptor, error) {
	return defaultMarshaller.Shape(val)
}
