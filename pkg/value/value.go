// Package value defines the runtime value model the matcher operates
// on: scalars, containers, record instances and opaque host values.
//
// Every value knows how to describe its own shape (Shape), render
// itself for diagnostics (Inspect) and hash itself for container
// membership (Hash). Values are treated as read-only once built;
// builders (decoders, bridges, marshallers) construct them bottom-up
// and hand them to the engine, which never mutates them.
package value

import (
	"hash/fnv"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// Kind tags the concrete variant of a Value.
type Kind string

const (
	BOOLEAN_KIND    Kind = "BOOLEAN"
	INTEGER_KIND    Kind = "INTEGER"
	FLOAT_KIND      Kind = "FLOAT"
	TEXT_KIND       Kind = "TEXT"
	BYTES_KIND      Kind = "BYTES"
	UUID_KIND       Kind = "UUID"
	NIL_KIND        Kind = "NIL"
	LIST_KIND       Kind = "LIST"
	SET_KIND        Kind = "SET"
	FROZEN_SET_KIND Kind = "FROZEN_SET"
	TUPLE_KIND      Kind = "TUPLE"
	MAP_KIND        Kind = "MAP"
	RECORD_KIND     Kind = "RECORD"
	HOST_KIND       Kind = "HOST"
)

// Value is the interface for all runtime values.
//
// Shape returns the most specific descriptor describing the value; it
// serves diagnostics only and never drives a match decision.
type Value interface {
	Kind() Kind
	Inspect() string
	Shape() descriptor.Descriptor
	Hash() uint32
}

// Shared singletons for the values every decoder produces constantly.
var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NIL   = &Nil{}
)

// Bool returns the shared singleton for b.
func Bool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Helper for hashing byte slices
func hashBytes(p []byte) uint32 {
	h := fnv.New32a()
	h.Write(p)
	return h.Sum32()
}

// combineHash folds an element hash into an ordered accumulator.
func combineHash(acc, h uint32) uint32 {
	return acc*31 + h
}
