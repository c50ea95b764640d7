package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
)

const sampleSchema = `
types:
  UserId: int
  MaybeName: str | none
  Status:
    literal: [active, archived, 3, true, null]
  User:
    record:
      id: UserId
      name: str
      email?: str
  Profile:
    record:
      nick: str
    open: true
  Box:
    params: [T]
    class:
      value: T
  Pair:
    params: [A, B]
    class:
      first: A
      second: B
  Node:
    class:
      label: str
      next: Node | none
`

func mustParse(t *testing.T) *Schema {
	t.Helper()
	s, err := Parse([]byte(sampleSchema), "funtype.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestParseResolvesDeclarations(t *testing.T) {
	s := mustParse(t)

	wantNames := []string{"UserId", "MaybeName", "Status", "User", "Profile", "Box", "Pair", "Node"}
	if got := s.Names(); len(got) != len(wantNames) {
		t.Fatalf("Names() = %v, want %v", got, wantNames)
	} else {
		for i := range got {
			if got[i] != wantNames[i] {
				t.Fatalf("Names()[%d] = %q, want %q", i, got[i], wantNames[i])
			}
		}
	}

	tests := []struct {
		name string
		want string
	}{
		{"UserId", "UserId"}, // aliases print their own name
		{"MaybeName", "MaybeName"},
		{"Status", "Literal['active','archived',3,True,None]"},
		{"User", "User"},
		{"Node", "Node"},
	}
	for _, tt := range tests {
		d, err := s.Resolve(tt.name)
		if err != nil {
			t.Errorf("Resolve(%s): %v", tt.name, err)
			continue
		}
		if got := descriptor.Print(d); got != tt.want {
			t.Errorf("Resolve(%s) prints %q, want %q", tt.name, got, tt.want)
		}
	}

	d, err := s.Resolve("UserId")
	if err != nil {
		t.Fatalf("Resolve(UserId): %v", err)
	}
	if got := descriptor.Print(descriptor.Unalias(d)); got != "int" {
		t.Errorf("UserId unaliases to %q, want int", got)
	}
}

func TestParseRecordDeclaration(t *testing.T) {
	s := mustParse(t)

	d, err := s.Resolve("User")
	if err != nil {
		t.Fatalf("Resolve(User): %v", err)
	}
	rec, ok := d.(descriptor.Record)
	if !ok {
		t.Fatalf("User resolved to %T, want descriptor.Record", d)
	}
	if !rec.Closed {
		t.Errorf("User should be closed by default")
	}
	email, ok := rec.Field("email")
	if !ok {
		t.Fatalf("User lost its email field")
	}
	if email.Required {
		t.Errorf("email? should be optional")
	}
	id, _ := rec.Field("id")
	if !id.Required {
		t.Errorf("id should be required")
	}
	// Field types resolve through the alias.
	if got := descriptor.Print(id.Type); got != "UserId" {
		t.Errorf("id field type prints %q, want UserId", got)
	}

	p, err := s.Resolve("Profile")
	if err != nil {
		t.Fatalf("Resolve(Profile): %v", err)
	}
	if p.(descriptor.Record).Closed {
		t.Errorf("open: true was not honored")
	}
}

func TestParseClassDeclarations(t *testing.T) {
	s := mustParse(t)

	box, ok := s.Class("Box")
	if !ok {
		t.Fatalf("Box class not registered")
	}
	if box.Arity() != 1 || !box.IsGeneric() {
		t.Errorf("Box arity = %d, generic = %v", box.Arity(), box.IsGeneric())
	}
	f, ok := box.Field("value")
	if !ok {
		t.Fatalf("Box lost its value field")
	}
	if descriptor.Print(f.Type) != "T" {
		t.Errorf("Box.value type = %q, want T", descriptor.Print(f.Type))
	}
	if !f.Required {
		t.Errorf("class fields are always required")
	}

	// The recursive class resolves through its own shell.
	node, ok := s.Class("Node")
	if !ok {
		t.Fatalf("Node class not registered")
	}
	next, _ := node.Field("next")
	if got := descriptor.Print(next.Type); got != "Node | None" {
		t.Errorf("Node.next type = %q, want %q", got, "Node | None")
	}
}

func TestResolveExpr(t *testing.T) {
	s := mustParse(t)

	tests := []struct {
		src  string
		want string
	}{
		{"User", "User"},
		{"list[UserId]", "list[UserId]"},
		{"Box[int]", "Box[int]"},
		{"Pair[int,str]", "Pair[int,str]"},
		{"Box[Box[str]]", "Box[Box[str]]"},
		{"User | none", "User | None"},
	}
	for _, tt := range tests {
		d, err := s.ResolveExpr(tt.src)
		if err != nil {
			t.Errorf("ResolveExpr(%q): %v", tt.src, err)
			continue
		}
		if got := descriptor.Print(d); got != tt.want {
			t.Errorf("ResolveExpr(%q) prints %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "reserved declaration name",
			src:     "types:\n  int: str\n",
			wantErr: "reserved type name",
		},
		{
			name:    "unknown top-level key",
			src:     "deps:\n  - pkg: x\n",
			wantErr: "unknown top-level key",
		},
		{
			name:    "no types",
			src:     "types: {}\n",
			wantErr: "no types defined",
		},
		{
			name:    "unknown reference",
			src:     "types:\n  A: Missing\n",
			wantErr: `unknown type "Missing"`,
		},
		{
			name:    "circular alias",
			src:     "types:\n  A: B\n  B: A\n",
			wantErr: "circular reference",
		},
		{
			name:    "self-referential record",
			src:     "types:\n  R:\n    record:\n      self: R\n",
			wantErr: "circular reference",
		},
		{
			name:    "optional class field",
			src:     "types:\n  C:\n    class:\n      x?: int\n",
			wantErr: "cannot be optional",
		},
		{
			name:    "bare generic reference",
			src:     "types:\n  A: Box\n  Box:\n    params: [T]\n    class:\n      value: T\n",
			wantErr: "requires 1 type argument",
		},
		{
			name:    "generic arity mismatch",
			src:     "types:\n  A: Box[int,str]\n  Box:\n    params: [T]\n    class:\n      value: T\n",
			wantErr: "takes 1 type argument",
		},
		{
			name:    "duplicate declaration",
			src:     "types:\n  A: int\n  A: str\n",
			wantErr: "duplicate declaration",
		},
		{
			name:    "reserved type parameter",
			src:     "types:\n  C:\n    params: [int]\n    class:\n      x: int\n",
			wantErr: "invalid type parameter",
		},
		{
			name:    "empty literal",
			src:     "types:\n  L:\n    literal: []\n",
			wantErr: "non-empty sequence",
		},
		{
			name:    "two declaration bodies",
			src:     "types:\n  X:\n    record:\n      a: int\n    literal: [1]\n",
			wantErr: "exactly one of",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "funtype.yaml")
			if err == nil {
				t.Fatalf("Parse accepted invalid schema")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchemaValidatesDocuments(t *testing.T) {
	s := mustParse(t)

	userType, err := s.Resolve("User")
	if err != nil {
		t.Fatalf("Resolve(User): %v", err)
	}

	good, err := DecodeYAML([]byte("id: 7\nname: ada\n"))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if err := typecheck.Validate(good, userType); err != nil {
		t.Errorf("conforming document rejected: %v", err)
	}

	bad, err := DecodeYAML([]byte("id: seven\nname: ada\n"))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	err = typecheck.Validate(bad, userType)
	if err == nil {
		t.Fatalf("document with a text id accepted as User")
	}
	if !strings.Contains(err.Error(), "Expected value of type `User`") {
		t.Errorf("failure message = %q", err)
	}

	extra, err := DecodeYAML([]byte("id: 7\nname: ada\nrole: admin\n"))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if typecheck.Validate(extra, userType) == nil {
		t.Errorf("closed record accepted an undeclared key")
	}

	status, err := s.Resolve("Status")
	if err != nil {
		t.Fatalf("Resolve(Status): %v", err)
	}
	archived, _ := DecodeYAML([]byte("archived"))
	if err := typecheck.Validate(archived, status); err != nil {
		t.Errorf("literal member rejected: %v", err)
	}
	deleted, _ := DecodeYAML([]byte("deleted"))
	if typecheck.Validate(deleted, status) == nil {
		t.Errorf("non-member accepted by literal type")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "funtype.yml")
	if err := os.WriteFile(path, []byte("types:\n  A: int\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != path {
		t.Errorf("Find = %q, want %q", found, path)
	}
}

func TestFindReportsMissingAsEmpty(t *testing.T) {
	found, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found != "" {
		t.Errorf("Find in an empty tree = %q, want empty", found)
	}
}

func TestLoadReadsAFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "funtype.yaml")
	if err := os.WriteFile(path, []byte("types:\n  Port: int\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := s.Resolve("Port"); err != nil {
		t.Errorf("Resolve(Port): %v", err)
	}

	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Errorf("Load of a missing file did not fail")
	}
}
