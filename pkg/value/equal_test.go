package value

import (
	"testing"

	"github.com/funvibe/funtype/pkg/descriptor"
)

func TestEqualScalars(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{"same ints", &Integer{Value: 5}, &Integer{Value: 5}, true},
		{"different ints", &Integer{Value: 5}, &Integer{Value: 6}, false},
		{"bool never equals int", TRUE, &Integer{Value: 1}, false},
		{"int never equals float", &Integer{Value: 5}, &Float{Value: 5}, false},
		{"text never equals int", &Text{Value: "5"}, &Integer{Value: 5}, false},
		{"same text", &Text{Value: "a"}, &Text{Value: "a"}, true},
		{"same bytes", &Bytes{Value: []byte{1, 2}}, &Bytes{Value: []byte{1, 2}}, true},
		{"different bytes", &Bytes{Value: []byte{1}}, &Bytes{Value: []byte{2}}, false},
		{"nils", NIL, &Nil{}, true},
		{"nil value vs false", NIL, FALSE, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
			}
		})
	}
}

func TestEqualContainers(t *testing.T) {
	ints := func(vals ...int64) []Value {
		out := make([]Value, len(vals))
		for i, v := range vals {
			out[i] = &Integer{Value: v}
		}
		return out
	}

	t.Run("lists compare in order", func(t *testing.T) {
		if !Equal(&List{Elements: ints(1, 2)}, &List{Elements: ints(1, 2)}) {
			t.Errorf("equal lists reported unequal")
		}
		if Equal(&List{Elements: ints(1, 2)}, &List{Elements: ints(2, 1)}) {
			t.Errorf("reordered lists reported equal")
		}
	})

	t.Run("list never equals tuple", func(t *testing.T) {
		if Equal(&List{Elements: ints(1)}, &Tuple{Elements: ints(1)}) {
			t.Errorf("list equals tuple")
		}
	})

	t.Run("sets ignore order", func(t *testing.T) {
		if !Equal(NewSet(ints(1, 2, 3)...), NewSet(ints(3, 1, 2)...)) {
			t.Errorf("same members in other order reported unequal")
		}
		if Equal(NewSet(ints(1)...), NewSet(ints(2)...)) {
			t.Errorf("different members reported equal")
		}
	})

	t.Run("set never equals frozenset", func(t *testing.T) {
		if Equal(NewSet(ints(1)...), NewFrozenSet(ints(1)...)) {
			t.Errorf("set equals frozenset")
		}
	})

	t.Run("maps ignore insertion order", func(t *testing.T) {
		a := NewMap()
		a.Set(&Text{Value: "x"}, &Integer{Value: 1})
		a.Set(&Text{Value: "y"}, &Integer{Value: 2})
		b := NewMap()
		b.Set(&Text{Value: "y"}, &Integer{Value: 2})
		b.Set(&Text{Value: "x"}, &Integer{Value: 1})
		if !Equal(a, b) {
			t.Errorf("same entries in other order reported unequal")
		}

		c := NewMap()
		c.Set(&Text{Value: "x"}, &Integer{Value: 1})
		if Equal(a, c) {
			t.Errorf("maps of different size reported equal")
		}
	})
}

func TestEqualRecords(t *testing.T) {
	user := &descriptor.Class{
		Name: "User",
		Fields: []descriptor.Field{
			{Name: "id", Type: descriptor.Primitive{Kind: descriptor.Integer}, Required: true},
		},
	}
	impostor := &descriptor.Class{
		Name: "User",
		Fields: []descriptor.Field{
			{Name: "id", Type: descriptor.Primitive{Kind: descriptor.Integer}, Required: true},
		},
	}

	a := NewRecord(user, map[string]Value{"id": &Integer{Value: 1}})
	b := NewRecord(user, map[string]Value{"id": &Integer{Value: 1}})
	c := NewRecord(user, map[string]Value{"id": &Integer{Value: 2}})
	d := NewRecord(impostor, map[string]Value{"id": &Integer{Value: 1}})

	if !Equal(a, b) {
		t.Errorf("identical records reported unequal")
	}
	if Equal(a, c) {
		t.Errorf("records with different field values reported equal")
	}
	// Same declared name, different class identity: never equal.
	if Equal(a, d) {
		t.Errorf("records of distinct classes reported equal")
	}
}

func TestMapOverwriteKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set(&Text{Value: "a"}, &Integer{Value: 1})
	m.Set(&Text{Value: "b"}, &Integer{Value: 2})
	m.Set(&Text{Value: "a"}, &Integer{Value: 3})

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	pairs := m.Pairs()
	if pairs[0].Key.Inspect() != `"a"` || pairs[0].Value.Inspect() != "3" {
		t.Errorf("first pair = %s: %s, want \"a\": 3", pairs[0].Key.Inspect(), pairs[0].Value.Inspect())
	}
	got, ok := m.GetText("a")
	if !ok || !Equal(got, &Integer{Value: 3}) {
		t.Errorf("GetText(a) = %v, want 3", got)
	}
}

func TestSetDeduplicates(t *testing.T) {
	s := NewSet(&Integer{Value: 1}, &Integer{Value: 1}, &Integer{Value: 2})
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if !s.Contains(&Integer{Value: 1}) || s.Contains(&Integer{Value: 3}) {
		t.Errorf("membership wrong: %s", s.Inspect())
	}
}
