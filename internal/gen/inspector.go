// Package gen derives schema declarations from Go packages. Exported
// struct types become record declarations, or class declarations when
// they are generic or sit on a reference cycle. Named basic types
// become aliases, and the Go enum convention, a named type plus
// package-level constants of it, becomes a literal declaration. The
// type mapping follows the bind marshaller so a schema derived from a
// package describes the same shapes bind infers at runtime.
package gen

import (
	"errors"
	"fmt"
	"go/constant"
	"go/types"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/funtype/internal/schema"
	"github.com/funvibe/funtype/pkg/descriptor"
)

// Options configure a derivation run.
type Options struct {
	// Dir is the directory package loading runs in. Empty means the
	// current directory.
	Dir string

	// Patterns are package patterns as understood by the go tool.
	// Empty loads the package in Dir.
	Patterns []string

	// Only restricts the root set to these type names. Empty takes
	// every exported type. Declarations referenced by a root are
	// pulled in regardless of the filter.
	Only []string
}

// DeclKind says which declaration form a Decl renders to.
type DeclKind int

const (
	DeclAlias DeclKind = iota
	DeclLiteral
	DeclRecord
	DeclClass
)

// Field is one field of a record or class declaration.
type Field struct {
	Name     string
	Expr     string
	Optional bool
}

// Decl is one named declaration of a derived schema.
type Decl struct {
	Name   string
	Kind   DeclKind
	Expr   string                // DeclAlias
	Consts []descriptor.Constant // DeclLiteral
	Params []string              // DeclClass
	Fields []Field               // DeclRecord, DeclClass
}

// Result is a derived schema: declarations in name order plus the
// package paths they came from.
type Result struct {
	Packages []string
	Decls    []*Decl
}

// Decl returns the declaration with the given name, if present.
func (r *Result) Decl(name string) (*Decl, bool) {
	for _, d := range r.Decls {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// errUnsupported marks Go types that carry no data shape, like funcs
// and channels. Struct fields of such types are skipped.
var errUnsupported = errors.New("unsupported type")

// Inspect loads the packages named by opts and derives declarations
// from their exported types.
func Inspect(opts Options) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports |
			packages.NeedDeps,
		Dir: opts.Dir,
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %s", strings.Join(patterns, " "))
	}
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	d := newDeriver(pkgs)
	if err := d.deriveRoots(opts.Only); err != nil {
		return nil, err
	}
	if err := d.finalize(); err != nil {
		return nil, err
	}
	return d.result(), nil
}

type deriver struct {
	pkgs   []*packages.Package
	target map[*types.Package]bool

	decls   map[string]*Decl
	owner   map[string]*types.TypeName // declaration name -> defining object
	edges   map[string][]string        // declaration references, for cycle detection
	structs map[string]bool            // declarations pending record/class assignment

	// current is the declaration whose fields are being derived;
	// references resolved while it is set become edges from it.
	current string
}

func newDeriver(pkgs []*packages.Package) *deriver {
	d := &deriver{
		pkgs:    pkgs,
		target:  make(map[*types.Package]bool),
		decls:   make(map[string]*Decl),
		owner:   make(map[string]*types.TypeName),
		edges:   make(map[string][]string),
		structs: make(map[string]bool),
	}
	for _, pkg := range pkgs {
		d.target[pkg.Types] = true
	}
	return d
}

func (d *deriver) deriveRoots(only []string) error {
	filter := make(map[string]bool, len(only))
	for _, name := range only {
		filter[name] = true
	}
	found := make(map[string]bool, len(only))

	for _, pkg := range d.pkgs {
		scope := pkg.Types.Scope()
		names := scope.Names()
		sort.Strings(names)
		for _, name := range names {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() || obj.IsAlias() {
				continue
			}
			if len(filter) > 0 && !filter[name] {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok {
				continue
			}
			found[name] = true
			if _, err := d.declareNamed(named); err != nil {
				if errors.Is(err, errUnsupported) && len(filter) == 0 {
					continue
				}
				return err
			}
			if len(filter) > 0 {
				if _, ok := d.decls[name]; !ok {
					return fmt.Errorf("cannot derive a declaration for %s", name)
				}
			}
		}
	}

	for _, name := range only {
		if !found[name] {
			return fmt.Errorf("type %q not found in the loaded packages", name)
		}
	}
	if len(d.decls) == 0 {
		return fmt.Errorf("no derivable exported types found")
	}
	return nil
}

// declareNamed resolves a named Go type to a type expression,
// registering a declaration for it when it belongs to a loaded
// package. The declaration is registered before its fields are
// derived so self references terminate, the same way the bind
// marshaller caches class shells.
func (d *deriver) declareNamed(t *types.Named) (string, error) {
	obj := t.Obj()
	pkg := obj.Pkg()

	if pkg != nil && pkg.Path() == "github.com/google/uuid" && obj.Name() == "UUID" {
		return "uuid", nil
	}
	if !d.target[pkg] {
		return d.foreignExpr(t)
	}

	// An instantiated generic declares its origin and is referenced
	// with arguments.
	if args := t.TypeArgs(); args != nil && args.Len() > 0 {
		base, err := d.declareNamed(t.Origin())
		if err != nil {
			return "", err
		}
		parts := make([]string, args.Len())
		for i := 0; i < args.Len(); i++ {
			expr, err := d.exprFor(args.At(i))
			if err != nil {
				return "", err
			}
			parts[i] = expr
		}
		return fmt.Sprintf("%s[%s]", base, strings.Join(parts, ",")), nil
	}

	name := obj.Name()
	if prev, ok := d.owner[name]; ok {
		if prev != obj {
			return "", fmt.Errorf("type name %s declared by both %s and %s",
				name, prev.Pkg().Path(), pkg.Path())
		}
		return d.ref(name), nil
	}
	if schema.ReservedName(name) {
		return "", fmt.Errorf("type name %s is reserved by the schema language", name)
	}

	decl := &Decl{Name: name}
	d.decls[name] = decl
	d.owner[name] = obj

	if err := d.fillDecl(decl, t); err != nil {
		delete(d.decls, name)
		delete(d.owner, name)
		delete(d.structs, name)
		return "", err
	}
	return d.ref(name), nil
}

// ref records a reference from the declaration currently being derived
// and returns the name unchanged.
func (d *deriver) ref(name string) string {
	if d.current != "" {
		d.edges[d.current] = append(d.edges[d.current], name)
	}
	return name
}

func (d *deriver) fillDecl(decl *Decl, t *types.Named) error {
	switch u := t.Underlying().(type) {
	case *types.Struct:
		d.structs[decl.Name] = true
		if tparams := t.TypeParams(); tparams != nil && tparams.Len() > 0 {
			decl.Kind = DeclClass
			for i := 0; i < tparams.Len(); i++ {
				param := tparams.At(i).Obj().Name()
				if schema.ReservedName(param) {
					return fmt.Errorf("type parameter %s of %s is reserved by the schema language", param, decl.Name)
				}
				decl.Params = append(decl.Params, param)
			}
		}
		return d.fillFields(decl, u)

	case *types.Basic:
		if consts := d.constsOf(t); len(consts) > 0 {
			decl.Kind = DeclLiteral
			decl.Consts = consts
			return nil
		}
		expr, err := basicExpr(u)
		if err != nil {
			return err
		}
		decl.Kind = DeclAlias
		decl.Expr = expr
		return nil

	default:
		prev := d.current
		d.current = decl.Name
		expr, err := d.exprFor(u)
		d.current = prev
		if err != nil {
			return err
		}
		decl.Kind = DeclAlias
		decl.Expr = expr
		return nil
	}
}

func (d *deriver) fillFields(decl *Decl, u *types.Struct) error {
	prev := d.current
	d.current = decl.Name
	defer func() { d.current = prev }()

	seen := make(map[string]bool)
	for i := 0; i < u.NumFields(); i++ {
		f := u.Field(i)
		if !f.Exported() {
			continue
		}
		name, ok := fieldName(reflect.StructTag(u.Tag(i)), f.Name())
		if !ok {
			continue
		}
		expr, err := d.exprFor(f.Type())
		if err != nil {
			if errors.Is(err, errUnsupported) {
				continue
			}
			return err
		}
		if seen[name] {
			return fmt.Errorf("duplicate field %q in %s", name, decl.Name)
		}
		seen[name] = true
		field := Field{Name: name, Expr: expr}
		if _, ok := types.Unalias(f.Type()).(*types.Pointer); ok {
			field.Optional = true
		}
		decl.Fields = append(decl.Fields, field)
	}
	if len(decl.Fields) == 0 {
		return fmt.Errorf("%w: struct %s has no usable exported fields", errUnsupported, decl.Name)
	}
	return nil
}

// exprFor maps a Go type to a type expression. Types with no data
// shape return errUnsupported.
func (d *deriver) exprFor(t types.Type) (string, error) {
	switch t := t.(type) {
	case *types.Alias:
		return d.exprFor(types.Unalias(t))
	case *types.Basic:
		return basicExpr(t)
	case *types.Named:
		return d.declareNamed(t)
	case *types.Pointer:
		elem, err := d.exprFor(t.Elem())
		if err != nil {
			return "", err
		}
		return optionalExpr(elem), nil
	case *types.Slice:
		return d.elementExpr(t.Elem())
	case *types.Array:
		return d.elementExpr(t.Elem())
	case *types.Map:
		if isSetType(t) {
			key, err := d.exprFor(t.Key())
			if err != nil {
				return "", err
			}
			return "set[" + key + "]", nil
		}
		key, err := d.exprFor(t.Key())
		if err != nil {
			return "", err
		}
		val, err := d.exprFor(t.Elem())
		if err != nil {
			return "", err
		}
		return "dict[" + key + "," + val + "]", nil
	case *types.Interface:
		return "any", nil
	case *types.Struct:
		// An anonymous struct has no name to declare under.
		return "any", nil
	case *types.TypeParam:
		return t.Obj().Name(), nil
	default:
		return "", fmt.Errorf("%w: %s", errUnsupported, t.String())
	}
}

// elementExpr maps a slice or array element, reading byte sequences as
// bytes the way the bind marshaller does.
func (d *deriver) elementExpr(elem types.Type) (string, error) {
	if b, ok := elem.Underlying().(*types.Basic); ok && b.Kind() == types.Byte {
		return "bytes", nil
	}
	expr, err := d.exprFor(elem)
	if err != nil {
		return "", err
	}
	return "list[" + expr + "]", nil
}

// foreignExpr maps a named type from outside the loaded packages.
// Basic underlyings keep their kind, composite underlyings map
// structurally, and foreign structs and interfaces degrade to any
// since their declarations live elsewhere.
func (d *deriver) foreignExpr(t *types.Named) (string, error) {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return basicExpr(u)
	case *types.Struct, *types.Interface:
		return "any", nil
	default:
		return d.exprFor(u)
	}
}

// constsOf collects the exported package constants of a named type in
// name order. Any hit turns the declaration into a literal, which is
// how the Go enum convention reads as a schema.
func (d *deriver) constsOf(t *types.Named) []descriptor.Constant {
	scope := t.Obj().Pkg().Scope()
	names := scope.Names()
	sort.Strings(names)

	var consts []descriptor.Constant
	seen := make(map[string]bool)
	for _, name := range names {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !c.Exported() || !types.Identical(c.Type(), t) {
			continue
		}
		cv := constantOf(c.Val())
		if cv == nil || seen[cv.Repr()] {
			continue
		}
		seen[cv.Repr()] = true
		consts = append(consts, cv)
	}
	return consts
}

func constantOf(v constant.Value) descriptor.Constant {
	switch v.Kind() {
	case constant.Bool:
		return descriptor.BoolConst{Value: constant.BoolVal(v)}
	case constant.Int:
		i, ok := constant.Int64Val(v)
		if !ok {
			return nil
		}
		return descriptor.IntConst{Value: i}
	case constant.Float:
		f, _ := constant.Float64Val(v)
		return descriptor.FloatConst{Value: f}
	case constant.String:
		return descriptor.TextConst{Value: constant.StringVal(v)}
	default:
		return nil
	}
}

// finalize assigns record or class to struct declarations. A struct on
// a reference cycle must be a class because the schema loader rejects
// record cycles; references into classes do not count since class
// resolution stops at the nominal shell. Promotion runs to a fixed
// point in name order so the outcome is deterministic.
func (d *deriver) finalize() error {
	names := make([]string, 0, len(d.structs))
	for name := range d.structs {
		names = append(names, name)
	}
	sort.Strings(names)

	for {
		promoted := false
		for _, name := range names {
			decl := d.decls[name]
			if decl.Kind == DeclClass {
				continue
			}
			if d.reachesSelf(name) {
				decl.Kind = DeclClass
				promoted = true
			}
		}
		if !promoted {
			break
		}
	}

	for _, name := range names {
		decl := d.decls[name]
		if decl.Kind != DeclClass {
			decl.Kind = DeclRecord
			continue
		}
		// Class fields are always required; the None arm of a pointer
		// field keeps absence expressible.
		for i := range decl.Fields {
			decl.Fields[i].Optional = false
		}
	}

	// Whatever still reaches itself is an alias cycle, such as
	// type T []T, which no declaration form can express.
	for name, decl := range d.decls {
		if decl.Kind == DeclAlias && d.reachesSelf(name) {
			return fmt.Errorf("type %s: circular reference", name)
		}
	}
	return nil
}

// reachesSelf reports whether a declaration can reach itself through
// references, not counting paths through class declarations.
func (d *deriver) reachesSelf(start string) bool {
	seen := make(map[string]bool)
	queue := append([]string(nil), d.edges[start]...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if decl, ok := d.decls[name]; ok && decl.Kind == DeclClass {
			continue
		}
		if name == start {
			return true
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		queue = append(queue, d.edges[name]...)
	}
	return false
}

func (d *deriver) result() *Result {
	names := make([]string, 0, len(d.decls))
	for name := range d.decls {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]*Decl, len(names))
	for i, name := range names {
		decls[i] = d.decls[name]
	}
	paths := make([]string, 0, len(d.pkgs))
	for _, pkg := range d.pkgs {
		paths = append(paths, pkg.PkgPath)
	}
	sort.Strings(paths)
	return &Result{Packages: paths, Decls: decls}
}

func basicExpr(t *types.Basic) (string, error) {
	switch t.Kind() {
	case types.Bool, types.UntypedBool:
		return "bool", nil
	case types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
		types.UntypedInt:
		return "int", nil
	case types.Float32, types.Float64, types.UntypedFloat:
		return "float", nil
	case types.String, types.UntypedString:
		return "str", nil
	default:
		return "", fmt.Errorf("%w: %s", errUnsupported, t.Name())
	}
}

// optionalExpr widens an expression with None for pointer types. Any
// already admits None.
func optionalExpr(s string) string {
	if s == "any" || strings.HasSuffix(s, " | None") {
		return s
	}
	return s + " | None"
}

// isSetType reports whether a map type is the conventional Go set,
// map[K]struct{}.
func isSetType(t *types.Map) bool {
	s, ok := t.Elem().Underlying().(*types.Struct)
	return ok && s.NumFields() == 0
}

// fieldName resolves the declared key of a struct field, honoring the
// same funtype and json tag rules as the bind marshaller.
func fieldName(tag reflect.StructTag, goName string) (string, bool) {
	for _, key := range []string{"funtype", "json"} {
		raw, ok := tag.Lookup(key)
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
	return goName, true
}
