// Package bind bridges native Go data into the value model so shapes
// of ordinary structs, slices and maps can be inferred and validated
// without hand-building values.
//
// Struct types are bound to classes by identity: marshalling the same
// Go struct type twice yields records of the same class, so a
// descriptor derived from the type accepts values marshalled from it.
package bind

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/value"
)

// Marshaller converts Go values into values of the runtime model and
// derives descriptors from Go types. The zero value is not usable;
// construct with NewMarshaller. A Marshaller is safe for concurrent
// use.
type Marshaller struct {
	mu      sync.Mutex
	classes map[reflect.Type]*descriptor.Class
	hosts   map[reflect.Type]*descriptor.Class
}

func NewMarshaller() *Marshaller {
	return &Marshaller{
		classes: make(map[reflect.Type]*descriptor.Class),
		hosts:   make(map[reflect.Type]*descriptor.Class),
	}
}

var uuidType = reflect.TypeOf(uuid.UUID{})

// ToValue converts a Go value to a runtime value.
func (m *Marshaller) ToValue(val any) (value.Value, error) {
	if val == nil {
		return value.NIL, nil
	}

	// Already a runtime value.
	if v, ok := val.(value.Value); ok {
		return v, nil
	}
	if id, ok := val.(uuid.UUID); ok {
		return &value.Uuid{Value: id}, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return value.NIL, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return value.Bool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &value.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &value.Integer{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &value.Float{Value: v.Float()}, nil
	case reflect.String:
		return &value.Text{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return m.bytesValue(v), nil
		}
		return m.sliceToList(v)
	case reflect.Map:
		if isSetType(v.Type()) {
			return m.mapToSet(v)
		}
		return m.mapToMap(v)
	case reflect.Struct:
		return m.structToRecord(v)
	case reflect.Ptr:
		if v.IsNil() {
			return value.NIL, nil
		}
		return m.ToValue(v.Elem().Interface())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return value.NewHost(val, m.hostClass(v.Type())), nil
	default:
		return nil, fmt.Errorf("cannot marshal Go kind %s", v.Kind())
	}
}

// Shape marshals a Go value and infers its shape.
func (m *Marshaller) Shape(val any) (descriptor.Descriptor, error) {
	v, err := m.ToValue(val)
	if err != nil {
		return nil, err
	}
	return v.Shape(), nil
}

// TypeFor derives a descriptor from a Go type. Struct types map to
// nominal classes, pointers widen to a union with None, and
// map[K]struct{} is read as a set of K.
func (m *Marshaller) TypeFor(t reflect.Type) descriptor.Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.typeForLocked(t)
}

// ClassFor returns the class bound to a Go struct type, deriving and
// caching it on first use. Non-struct types have no class and return
// nil.
func (m *Marshaller) ClassFor(t reflect.Type) *descriptor.Class {
	if t == nil || t.Kind() != reflect.Struct || t == uuidType {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classForLocked(t)
}

func (m *Marshaller) typeForLocked(t reflect.Type) descriptor.Descriptor {
	if t == uuidType {
		return descriptor.Nominal{Class: descriptor.UUIDClass}
	}
	switch t.Kind() {
	case reflect.Bool:
		return descriptor.Primitive{Kind: descriptor.Boolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return descriptor.Primitive{Kind: descriptor.Integer}
	case reflect.Float32, reflect.Float64:
		return descriptor.Primitive{Kind: descriptor.Float}
	case reflect.String:
		return descriptor.Primitive{Kind: descriptor.Text}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return descriptor.Primitive{Kind: descriptor.Bytes}
		}
		return descriptor.Sequence{Kind: descriptor.List, Element: m.typeForLocked(t.Elem())}
	case reflect.Map:
		if isSetType(t) {
			return descriptor.Sequence{Kind: descriptor.Set, Element: m.typeForLocked(t.Key())}
		}
		return descriptor.Mapping{Key: m.typeForLocked(t.Key()), Value: m.typeForLocked(t.Elem())}
	case reflect.Struct:
		return descriptor.Nominal{Class: m.classForLocked(t)}
	case reflect.Ptr:
		return descriptor.NewUnion(m.typeForLocked(t.Elem()), descriptor.Nominal{Class: descriptor.NoneClass})
	case reflect.Interface:
		return descriptor.Any{}
	default:
		return descriptor.Nominal{Class: m.hostClassLocked(t)}
	}
}

// classForLocked caches the class before deriving field types so that
// self-referential structs terminate.
func (m *Marshaller) classForLocked(t reflect.Type) *descriptor.Class {
	if c, ok := m.classes[t]; ok {
		return c
	}
	c := &descriptor.Class{Name: className(t)}
	m.classes[t] = c
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		c.Fields = append(c.Fields, descriptor.Field{
			Name:     name,
			Type:     m.typeForLocked(f.Type),
			Required: true,
		})
	}
	return c
}

func (m *Marshaller) hostClass(t reflect.Type) *descriptor.Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hostClassLocked(t)
}

func (m *Marshaller) hostClassLocked(t reflect.Type) *descriptor.Class {
	if c, ok := m.hosts[t]; ok {
		return c
	}
	c := &descriptor.Class{Name: t.String()}
	m.hosts[t] = c
	return c
}

func (m *Marshaller) bytesValue(v reflect.Value) *value.Bytes {
	b := make([]byte, v.Len())
	for i := 0; i < v.Len(); i++ {
		b[i] = byte(v.Index(i).Uint())
	}
	return &value.Bytes{Value: b}
}

func (m *Marshaller) sliceToList(v reflect.Value) (*value.List, error) {
	elements := make([]value.Value, v.Len())
	for i := 0; i < v.Len(); i++ {
		el, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = el
	}
	return &value.List{Elements: elements}, nil
}

func (m *Marshaller) mapToSet(v reflect.Value) (*value.Set, error) {
	members := make([]value.Value, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		member, err := m.ToValue(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("set member: %w", err)
		}
		members = append(members, member)
	}
	return value.NewSet(members...), nil
}

func (m *Marshaller) mapToMap(v reflect.Value) (*value.Map, error) {
	result := value.NewMap()
	iter := v.MapRange()
	for iter.Next() {
		key, err := m.ToValue(iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		val, err := m.ToValue(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		result.Set(key, val)
	}
	return result, nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (*value.Record, error) {
	t := v.Type()
	m.mu.Lock()
	class := m.classForLocked(t)
	m.mu.Unlock()

	fields := make(map[string]value.Value)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name, ok := fieldName(f)
		if !ok {
			continue
		}
		fv, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields[name] = fv
	}
	return value.NewRecord(class, fields), nil
}

// isSetType reports whether a map type is the conventional Go set,
// map[K]struct{}.
func isSetType(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

func className(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// fieldName resolves the record key of a struct field. The funtype tag
// wins over the json tag; either can rename the field or drop it with
// "-".
func fieldName(f reflect.StructField) (string, bool) {
	for _, tag := range []string{"funtype", "json"} {
		raw, ok := f.Tag.Lookup(tag)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(raw, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return f.Name, true
}
