package descriptor

// Field is one declared field of a class or structural record: its
// name, its declared descriptor (which inside a generic class may be a
// TypeVariable), and whether a conforming value must carry it.
type Field struct {
	Name     string
	Type     Descriptor
	Required bool
}

// Class is an explicit record/generic definition: a name, the ordered
// type-parameter names (empty for non-generic classes), and the ordered
// field declarations. Field descriptors are resolved once, when the
// class is built, and never re-resolved during matching.
//
// Class compatibility is pointer identity: a value belongs to a class
// iff it carries this exact *Class. Every shape source caches one Class
// per source type so identity is stable within a process.
type Class struct {
	Name   string
	Params []string
	Fields []Field
}

// Builtin bare classes shared by every shape source.
var (
	NoneClass = &Class{Name: "None"}
	UUIDClass = &Class{Name: "UUID"}
)

// Arity returns the number of declared type parameters.
func (c *Class) Arity() int { return len(c.Params) }

// IsGeneric reports whether the class declares type parameters.
func (c *Class) IsGeneric() bool { return len(c.Params) > 0 }

// Field returns the declared field with the given name.
func (c *Class) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
