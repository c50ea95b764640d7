// Package schema loads type declarations from funtype.yaml files.
//
// A schema file declares named types in a single top-level mapping:
//
//	types:
//	  UserId: int                       # alias for a type expression
//	  Status: { literal: [active, archived] }
//	  User:                             # structural record
//	    record:
//	      id: int
//	      name: str
//	      email?: str                   # '?' marks an optional field
//	  Box:                              # nominal class, possibly generic
//	    params: [T]
//	    class:
//	      value: T
//
// Record fields may be optional; class fields are always required.
// Declarations may reference each other freely through classes, while
// alias and record cycles are rejected because they cannot describe a
// finite shape.
package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/funtype/internal/config"
	"github.com/funvibe/funtype/pkg/descriptor"
)

// UnknownTypeError reports a reference to a name no declaration or
// builtin provides.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Name)
}

type declKind int

const (
	declAlias declKind = iota
	declLiteral
	declRecord
	declClass
)

type fieldDecl struct {
	name     string
	expr     string
	optional bool
	line     int
}

type decl struct {
	name   string
	kind   declKind
	expr   string                // declAlias
	consts []descriptor.Constant // declLiteral
	fields []fieldDecl           // declRecord, declClass
	open   bool                  // declRecord
	params []string              // declClass
	line   int
}

// Schema holds the resolved declarations of one funtype.yaml. A parsed
// Schema is immutable and safe for concurrent use.
type Schema struct {
	path    string
	names   []string // declaration order
	decls   map[string]*decl
	classes map[string]*descriptor.Class

	resolved  map[string]descriptor.Descriptor
	resolving map[string]bool // only populated during Parse
}

// Load reads and parses a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses schema content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s := &Schema{
		path:      path,
		decls:     make(map[string]*decl),
		classes:   make(map[string]*descriptor.Class),
		resolved:  make(map[string]descriptor.Descriptor),
		resolving: make(map[string]bool),
	}
	if err := s.collect(&doc); err != nil {
		return nil, err
	}
	if err := s.resolveAll(); err != nil {
		return nil, err
	}
	s.resolving = nil
	return s, nil
}

// Find searches for funtype.yaml starting from dir and walking up to
// parent directories. Returns the path if found, or empty string and
// nil error if not found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.SchemaFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Names returns the declared type names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Resolve returns the descriptor a declared name stands for.
func (s *Schema) Resolve(name string) (descriptor.Descriptor, error) {
	if d, ok := s.resolved[name]; ok {
		return d, nil
	}
	return nil, &UnknownTypeError{Name: name}
}

// Class returns the class a declaration binds, when it binds one.
func (s *Schema) Class(name string) (*descriptor.Class, bool) {
	c, ok := s.classes[name]
	return c, ok
}

// ResolveExpr parses a type expression in this schema's scope.
func (s *Schema) ResolveExpr(src string) (descriptor.Descriptor, error) {
	return parseTypeExpr(src, s, nil)
}

// ParseType parses a type expression with no schema in scope; only
// builtin names resolve.
func ParseType(src string) (descriptor.Descriptor, error) {
	return parseTypeExpr(src, nil, nil)
}

// collect walks the document and gathers declarations without
// resolving any type expression. Class shells are registered here so
// later references to them, including self references, already have an
// identity.
func (s *Schema) collect(doc *yaml.Node) error {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("%s: empty schema", s.path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level must be a mapping", s.path)
	}

	var types *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		switch key.Value {
		case "types":
			types = root.Content[i+1]
		default:
			return fmt.Errorf("%s:%d: unknown top-level key %q", s.path, key.Line, key.Value)
		}
	}
	if types == nil {
		return fmt.Errorf("%s: no types defined", s.path)
	}
	if types.Kind != yaml.MappingNode {
		return fmt.Errorf("%s:%d: types must be a mapping", s.path, types.Line)
	}

	for i := 0; i+1 < len(types.Content); i += 2 {
		key, node := types.Content[i], types.Content[i+1]
		name := key.Value
		if !isIdent(name) {
			return fmt.Errorf("%s:%d: types[%s]: name must be an identifier", s.path, key.Line, name)
		}
		if isReservedName(name) {
			return fmt.Errorf("%s:%d: types[%s]: %q is a reserved type name", s.path, key.Line, name, name)
		}
		if _, ok := s.decls[name]; ok {
			return fmt.Errorf("%s:%d: types[%s]: duplicate declaration", s.path, key.Line, name)
		}
		d, err := s.collectDecl(name, node)
		if err != nil {
			return err
		}
		s.decls[name] = d
		s.names = append(s.names, name)
		if d.kind == declClass {
			s.classes[name] = &descriptor.Class{Name: name, Params: d.params}
		}
	}
	if len(s.names) == 0 {
		return fmt.Errorf("%s: no types defined", s.path)
	}
	return nil
}

func (s *Schema) collectDecl(name string, node *yaml.Node) (*decl, error) {
	d := &decl{name: name, line: node.Line}

	// Shorthand: a scalar declaration is an alias for a type
	// expression.
	if node.Kind == yaml.ScalarNode {
		d.kind = declAlias
		d.expr = node.Value
		return d, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: types[%s]: declaration must be a string or a mapping", s.path, node.Line, name)
	}

	var literal, record, class, open, params *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "literal":
			literal = val
		case "record":
			record = val
		case "class":
			class = val
		case "open":
			open = val
		case "params":
			params = val
		default:
			return nil, fmt.Errorf("%s:%d: types[%s]: unknown key %q", s.path, key.Line, name, key.Value)
		}
	}

	specified := 0
	for _, n := range []*yaml.Node{literal, record, class} {
		if n != nil {
			specified++
		}
	}
	if specified != 1 {
		return nil, fmt.Errorf("%s:%d: types[%s]: exactly one of literal, record, class is required", s.path, node.Line, name)
	}

	switch {
	case literal != nil:
		if open != nil || params != nil {
			return nil, fmt.Errorf("%s:%d: types[%s]: literal declarations only take constants", s.path, node.Line, name)
		}
		d.kind = declLiteral
		if literal.Kind != yaml.SequenceNode || len(literal.Content) == 0 {
			return nil, fmt.Errorf("%s:%d: types[%s]: literal requires a non-empty sequence", s.path, literal.Line, name)
		}
		for _, c := range literal.Content {
			constant, err := scalarConstant(c)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: types[%s]: %w", s.path, c.Line, name, err)
			}
			d.consts = append(d.consts, constant)
		}

	case record != nil:
		if params != nil {
			return nil, fmt.Errorf("%s:%d: types[%s]: params is only valid with class", s.path, node.Line, name)
		}
		d.kind = declRecord
		if open != nil {
			if err := open.Decode(&d.open); err != nil {
				return nil, fmt.Errorf("%s:%d: types[%s]: open must be a bool", s.path, open.Line, name)
			}
		}
		fields, err := s.collectFields(name, record, true)
		if err != nil {
			return nil, err
		}
		d.fields = fields

	case class != nil:
		if open != nil {
			return nil, fmt.Errorf("%s:%d: types[%s]: open is only valid with record", s.path, node.Line, name)
		}
		d.kind = declClass
		if params != nil {
			if params.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%s:%d: types[%s]: params must be a sequence", s.path, params.Line, name)
			}
			seen := make(map[string]bool)
			for _, p := range params.Content {
				if !isIdent(p.Value) || isReservedName(p.Value) {
					return nil, fmt.Errorf("%s:%d: types[%s]: invalid type parameter %q", s.path, p.Line, name, p.Value)
				}
				if seen[p.Value] {
					return nil, fmt.Errorf("%s:%d: types[%s]: duplicate type parameter %q", s.path, p.Line, name, p.Value)
				}
				seen[p.Value] = true
				d.params = append(d.params, p.Value)
			}
		}
		fields, err := s.collectFields(name, class, false)
		if err != nil {
			return nil, err
		}
		d.fields = fields
	}
	return d, nil
}

// collectFields reads a field mapping. The '?' optionality marker is
// only honored for records; class fields are always required.
func (s *Schema) collectFields(name string, node *yaml.Node, allowOptional bool) ([]fieldDecl, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: types[%s]: fields must be a mapping", s.path, node.Line, name)
	}
	var fields []fieldDecl
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		f := fieldDecl{name: key.Value, line: key.Line}
		if n, ok := trimOptionalMarker(key.Value); ok {
			if !allowOptional {
				return nil, fmt.Errorf("%s:%d: types[%s]: class field %q cannot be optional", s.path, key.Line, name, n)
			}
			f.name = n
			f.optional = true
		}
		if f.name == "" {
			return nil, fmt.Errorf("%s:%d: types[%s]: empty field name", s.path, key.Line, name)
		}
		if seen[f.name] {
			return nil, fmt.Errorf("%s:%d: types[%s]: duplicate field %q", s.path, key.Line, name, f.name)
		}
		seen[f.name] = true
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s:%d: types[%s]: field %q must be a type expression", s.path, val.Line, name, f.name)
		}
		f.expr = val.Value
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s:%d: types[%s]: no fields defined", s.path, node.Line, name)
	}
	return fields, nil
}

func trimOptionalMarker(name string) (string, bool) {
	if len(name) > 0 && name[len(name)-1] == '?' {
		return name[:len(name)-1], true
	}
	return name, false
}

// resolveAll resolves every declaration eagerly so a parsed schema
// never fails later. Classes resolve in two steps: the name binds to
// the shell immediately, the field table fills afterwards, which is
// what lets class references be recursive.
func (s *Schema) resolveAll() error {
	for name, c := range s.classes {
		if c.IsGeneric() {
			// A generic class is not a type by itself; it resolves
			// per reference with arguments.
			continue
		}
		s.resolved[name] = descriptor.Nominal{Class: c}
	}
	for _, name := range s.names {
		if s.decls[name].kind == declClass {
			continue
		}
		if _, err := s.resolveName(name); err != nil {
			return err
		}
	}
	for _, name := range s.names {
		d := s.decls[name]
		if d.kind != declClass {
			continue
		}
		c := s.classes[name]
		vars := make(map[string]bool, len(d.params))
		for _, p := range d.params {
			vars[p] = true
		}
		for _, f := range d.fields {
			ft, err := parseTypeExpr(f.expr, s, vars)
			if err != nil {
				return fmt.Errorf("%s:%d: types[%s]: field %q: %w", s.path, f.line, name, f.name, err)
			}
			c.Fields = append(c.Fields, descriptor.Field{Name: f.name, Type: ft, Required: true})
		}
	}
	return nil
}

func (s *Schema) resolveName(name string) (descriptor.Descriptor, error) {
	if d, ok := s.resolved[name]; ok {
		return d, nil
	}
	decl, ok := s.decls[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	if decl.kind == declClass {
		// Only generic classes reach here; bare references to them
		// are rejected by the expression parser.
		return nil, fmt.Errorf("generic class %s requires %d type argument(s)", name, len(decl.params))
	}
	if s.resolving[name] {
		return nil, fmt.Errorf("%s:%d: types[%s]: circular reference", s.path, decl.line, name)
	}
	s.resolving[name] = true
	defer delete(s.resolving, name)

	var d descriptor.Descriptor
	switch decl.kind {
	case declAlias:
		underlying, err := parseTypeExpr(decl.expr, s, nil)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: types[%s]: %w", s.path, decl.line, name, err)
		}
		d = descriptor.Alias{Name: name, Underlying: underlying}

	case declLiteral:
		d = descriptor.Literal{Constants: decl.consts}

	case declRecord:
		rec := descriptor.Record{Name: name, Closed: !decl.open}
		for _, f := range decl.fields {
			ft, err := parseTypeExpr(f.expr, s, nil)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: types[%s]: field %q: %w", s.path, f.line, name, f.name, err)
			}
			rec.Fields = append(rec.Fields, descriptor.Field{Name: f.name, Type: ft, Required: !f.optional})
		}
		d = rec
	}

	s.resolved[name] = d
	return d, nil
}

// lookupName resolves a bare identifier during expression parsing.
// Generic classes must not appear bare.
func (s *Schema) lookupName(name string) (descriptor.Descriptor, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	if c, ok := s.classes[name]; ok && c.IsGeneric() {
		return nil, true, fmt.Errorf("generic class %s requires %d type argument(s)", name, c.Arity())
	}
	if _, ok := s.decls[name]; !ok {
		return nil, false, nil
	}
	d, err := s.resolveName(name)
	if err != nil {
		return nil, true, err
	}
	return d, true, nil
}

// lookupGeneric resolves an applied name like Box[int].
func (s *Schema) lookupGeneric(name string, args []descriptor.Descriptor) (descriptor.Descriptor, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	c, ok := s.classes[name]
	if !ok {
		return nil, false, nil
	}
	if len(args) != c.Arity() {
		return nil, true, fmt.Errorf("class %s takes %d type argument(s), got %d", name, c.Arity(), len(args))
	}
	return descriptor.Generic{Class: c, Arguments: args}, true, nil
}

// scalarConstant converts a YAML scalar node to a literal constant
// using its resolved tag, so 'true', '5' and 'five' keep their kinds.
func scalarConstant(n *yaml.Node) (descriptor.Constant, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("literal constants must be scalars")
	}
	switch n.ShortTag() {
	case "!!null":
		return descriptor.NoneConst{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return descriptor.BoolConst{Value: b}, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return descriptor.IntConst{Value: i}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return descriptor.FloatConst{Value: f}, nil
	case "!!str":
		return descriptor.TextConst{Value: n.Value}, nil
	default:
		return nil, fmt.Errorf("unsupported literal constant tag %s", n.ShortTag())
	}
}
