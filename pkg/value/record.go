package value

import (
	"sort"
	"strings"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// RecordField is a single set field of a Record instance.
type RecordField struct {
	Key   string
	Value Value
}

// Record is an instance of a declared class. Fields are kept sorted by
// key for compact memory and O(log N) access; the class pointer is the
// instance's nominal identity and carries the declared field
// descriptors used for shape inference and matching.
type Record struct {
	Class  *descriptor.Class
	Fields []RecordField // Sorted by Key
}

// NewRecord builds a Record of the given class from a field map.
func NewRecord(class *descriptor.Class, fieldMap map[string]Value) *Record {
	fields := make([]RecordField, 0, len(fieldMap))
	for k, v := range fieldMap {
		fields = append(fields, RecordField{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Key < fields[j].Key
	})
	return &Record{Class: class, Fields: fields}
}

// Get returns the value for a key.
func (r *Record) Get(key string) (Value, bool) {
	idx := sort.Search(len(r.Fields), func(i int) bool {
		return r.Fields[i].Key >= key
	})
	if idx < len(r.Fields) && r.Fields[idx].Key == key {
		return r.Fields[idx].Value, true
	}
	return nil, false
}

func (r *Record) Kind() Kind { return RECORD_KIND }

func (r *Record) Inspect() string {
	name := ""
	if r.Class != nil {
		name = r.Class.Name
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.Key + ": " + f.Value.Inspect()
	}
	return name + "{" + strings.Join(parts, ", ") + "}"
}

// Shape infers the instance's descriptor. A generic class resolves to
// Generic(class, args) when every declared type parameter is pinned by
// inferring the field(s) declared as exactly that type variable; when
// several such fields share one parameter, the first binding is kept.
// Any unresolved parameter silently degrades the whole answer to
// Nominal(class).
func (r *Record) Shape() descriptor.Descriptor {
	if r.Class == nil {
		return descriptor.Nominal{Class: r.Class}
	}
	if !r.Class.IsGeneric() {
		return descriptor.Nominal{Class: r.Class}
	}

	resolved := make(map[string]descriptor.Descriptor, r.Class.Arity())
	for _, f := range r.Class.Fields {
		tv, ok := f.Type.(descriptor.TypeVariable)
		if !ok {
			continue
		}
		if _, bound := resolved[tv.Name]; bound {
			continue
		}
		fv, found := r.Get(f.Name)
		if !found {
			continue
		}
		resolved[tv.Name] = fv.Shape()
	}

	args := make([]descriptor.Descriptor, 0, r.Class.Arity())
	for _, p := range r.Class.Params {
		a, ok := resolved[p]
		if !ok {
			return descriptor.Nominal{Class: r.Class}
		}
		args = append(args, a)
	}
	return descriptor.Generic{Class: r.Class, Arguments: args}
}

func (r *Record) Hash() uint32 {
	acc := hashString(string(RECORD_KIND))
	if r.Class != nil {
		acc = combineHash(acc, hashString(r.Class.Name))
	}
	for _, f := range r.Fields {
		acc = combineHash(acc, combineHash(hashString(f.Key), f.Value.Hash()))
	}
	return acc
}
