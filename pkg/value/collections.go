package value

import (
	"strings"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// List
type List struct {
	Elements []Value
}

func (l *List) Kind() Kind { return LIST_KIND }

func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Shape() descriptor.Descriptor {
	return descriptor.Sequence{Kind: descriptor.List, Element: elementShape(l.Elements)}
}

func (l *List) Hash() uint32 {
	acc := hashString(string(LIST_KIND))
	for _, e := range l.Elements {
		acc = combineHash(acc, e.Hash())
	}
	return acc
}

// Tuple
type Tuple struct {
	Elements []Value
}

func (t *Tuple) Kind() Kind { return TUPLE_KIND }

func (t *Tuple) Inspect() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Inspect()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *Tuple) Shape() descriptor.Descriptor {
	// Positional precision: each slot keeps its own shape, nothing is
	// unionized away.
	elems := make([]descriptor.Descriptor, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Shape()
	}
	return descriptor.FixedTuple{Elements: elems}
}

func (t *Tuple) Hash() uint32 {
	acc := hashString(string(TUPLE_KIND))
	for _, e := range t.Elements {
		acc = combineHash(acc, e.Hash())
	}
	return acc
}

// memberSet backs both set flavors: insertion-ordered elements with a
// hash-bucket index for membership tests.
type memberSet struct {
	elements []Value
	index    map[uint32][]int
}

func newMemberSet(elems []Value) memberSet {
	m := memberSet{index: make(map[uint32][]int, len(elems))}
	for _, e := range elems {
		m.add(e)
	}
	return m
}

func (m *memberSet) add(v Value) {
	if m.contains(v) {
		return
	}
	h := v.Hash()
	m.index[h] = append(m.index[h], len(m.elements))
	m.elements = append(m.elements, v)
}

func (m *memberSet) contains(v Value) bool {
	for _, i := range m.index[v.Hash()] {
		if Equal(m.elements[i], v) {
			return true
		}
	}
	return false
}

func (m *memberSet) hash(seed uint32) uint32 {
	// Commutative fold: membership, not order, identifies a set.
	acc := seed
	for _, e := range m.elements {
		acc += e.Hash()
	}
	return acc
}

func inspectMembers(elems []Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set
type Set struct {
	members memberSet
}

// NewSet builds a set from elems, dropping duplicates and keeping
// first-seen order.
func NewSet(elems ...Value) *Set {
	return &Set{members: newMemberSet(elems)}
}

func (s *Set) Kind() Kind { return SET_KIND }

func (s *Set) Inspect() string {
	if len(s.members.elements) == 0 {
		return "set()"
	}
	return inspectMembers(s.members.elements)
}

func (s *Set) Shape() descriptor.Descriptor {
	return descriptor.Sequence{Kind: descriptor.Set, Element: elementShape(s.members.elements)}
}

func (s *Set) Hash() uint32 { return s.members.hash(hashString(string(SET_KIND))) }

// Elements returns the members in first-seen order. Read-only.
func (s *Set) Elements() []Value { return s.members.elements }

// Contains reports membership by deep equality.
func (s *Set) Contains(v Value) bool { return s.members.contains(v) }

func (s *Set) Len() int { return len(s.members.elements) }

// FrozenSet
type FrozenSet struct {
	members memberSet
}

// NewFrozenSet builds a frozen set from elems, dropping duplicates and
// keeping first-seen order.
func NewFrozenSet(elems ...Value) *FrozenSet {
	return &FrozenSet{members: newMemberSet(elems)}
}

func (s *FrozenSet) Kind() Kind { return FROZEN_SET_KIND }

func (s *FrozenSet) Inspect() string {
	if len(s.members.elements) == 0 {
		return "frozenset()"
	}
	return "frozenset(" + inspectMembers(s.members.elements) + ")"
}

func (s *FrozenSet) Shape() descriptor.Descriptor {
	return descriptor.Sequence{Kind: descriptor.FrozenSet, Element: elementShape(s.members.elements)}
}

func (s *FrozenSet) Hash() uint32 { return s.members.hash(hashString(string(FROZEN_SET_KIND))) }

// Elements returns the members in first-seen order. Read-only.
func (s *FrozenSet) Elements() []Value { return s.members.elements }

// Contains reports membership by deep equality.
func (s *FrozenSet) Contains(v Value) bool { return s.members.contains(v) }

func (s *FrozenSet) Len() int { return len(s.members.elements) }

// MapPair is one key/value entry of a Map.
type MapPair struct {
	Key   Value
	Value Value
}

// Map is an insertion-ordered mapping with hash-bucketed key lookup.
// Any value can key a map since every value hashes.
type Map struct {
	pairs []MapPair
	index map[uint32][]int
}

// NewMap returns an empty map ready for Set calls.
func NewMap() *Map {
	return &Map{index: make(map[uint32][]int)}
}

func (m *Map) Kind() Kind { return MAP_KIND }

func (m *Map) Inspect() string {
	parts := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		parts[i] = p.Key.Inspect() + ": " + p.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Shape() descriptor.Descriptor {
	// An empty mapping says nothing about its keys or values.
	if len(m.pairs) == 0 {
		return descriptor.Mapping{Key: descriptor.Any{}, Value: descriptor.Any{}}
	}
	keys := make([]descriptor.Descriptor, len(m.pairs))
	vals := make([]descriptor.Descriptor, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key.Shape()
		vals[i] = p.Value.Shape()
	}
	return descriptor.Mapping{
		Key:   descriptor.Unionize(keys),
		Value: descriptor.Unionize(vals),
	}
}

func (m *Map) Hash() uint32 {
	// Commutative fold so that equal maps hash alike regardless of
	// insertion order.
	acc := hashString(string(MAP_KIND))
	for _, p := range m.pairs {
		acc += combineHash(p.Key.Hash(), p.Value.Hash())
	}
	return acc
}

// Set inserts or overwrites the entry for key, keeping the original
// position on overwrite.
func (m *Map) Set(key, val Value) {
	h := key.Hash()
	for _, i := range m.index[h] {
		if Equal(m.pairs[i].Key, key) {
			m.pairs[i].Value = val
			return
		}
	}
	m.index[h] = append(m.index[h], len(m.pairs))
	m.pairs = append(m.pairs, MapPair{Key: key, Value: val})
}

// Get returns the value stored under key.
func (m *Map) Get(key Value) (Value, bool) {
	for _, i := range m.index[key.Hash()] {
		if Equal(m.pairs[i].Key, key) {
			return m.pairs[i].Value, true
		}
	}
	return nil, false
}

// GetText returns the value stored under a text key.
func (m *Map) GetText(key string) (Value, bool) {
	return m.Get(&Text{Value: key})
}

func (m *Map) Len() int { return len(m.pairs) }

// Pairs returns the entries in insertion order. Read-only.
func (m *Map) Pairs() []MapPair { return m.pairs }

// elementShape infers one element descriptor for a homogeneous
// container: every element's shape, unionized in first-seen order.
func elementShape(elems []Value) descriptor.Descriptor {
	shapes := make([]descriptor.Descriptor, len(elems))
	for i, e := range elems {
		shapes[i] = e.Shape()
	}
	return descriptor.Unionize(shapes)
}
