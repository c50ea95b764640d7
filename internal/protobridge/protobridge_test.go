package protobridge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/funtype/pkg/descriptor"
	"github.com/funvibe/funtype/pkg/typecheck"
	"github.com/funvibe/funtype/pkg/value"
)

const shopProto = `
syntax = "proto3";

package shop;

enum Status {
  STATUS_UNKNOWN = 0;
  ACTIVE = 1;
  ARCHIVED = 2;
}

message Item {
  string sku = 1;
  int64 quantity = 2;
}

message Order {
  string id = 1;
  Status status = 2;
  repeated Item items = 3;
  map<string, int64> totals = 4;
  optional string note = 5;
  bytes signature = 6;
  double weight = 7;
  bool express = 8;
}

message Tree {
  string label = 1;
  Tree left = 2;
  Tree right = 3;
}
`

func loadShop(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shop.proto"), []byte(shopProto), 0644); err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	if err := reg.LoadFile("shop.proto", dir); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return reg
}

func text(s string) value.Value { return &value.Text{Value: s} }

func TestMessageTypeDerivation(t *testing.T) {
	reg := loadShop(t)

	d, err := reg.MessageType("shop.Order")
	if err != nil {
		t.Fatalf("MessageType: %v", err)
	}
	if got := descriptor.Print(d); got != "Order" {
		t.Errorf("Order prints %q", got)
	}

	class, ok := reg.Class("Order")
	if !ok {
		t.Fatalf("Order class not derived")
	}
	wantFields := map[string]string{
		"id":        "str",
		"status":    "Literal['STATUS_UNKNOWN','ACTIVE','ARCHIVED']",
		"items":     "list[Item]",
		"totals":    "dict[str,int]",
		"note":      "str | None",
		"signature": "bytes",
		"weight":    "float",
		"express":   "bool",
	}
	for name, want := range wantFields {
		f, ok := class.Field(name)
		if !ok {
			t.Errorf("Order lost field %q", name)
			continue
		}
		if got := descriptor.Print(f.Type); got != want {
			t.Errorf("Order.%s type = %q, want %q", name, got, want)
		}
	}
}

func TestMessageTypeLookup(t *testing.T) {
	reg := loadShop(t)

	// Simple names resolve when unambiguous.
	if _, err := reg.MessageType("Item"); err != nil {
		t.Errorf("MessageType(Item): %v", err)
	}
	_, err := reg.MessageType("shop.Missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing message error = %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reg := loadShop(t)

	item := value.NewMap()
	item.Set(text("sku"), text("K-9"))
	item.Set(text("quantity"), &value.Integer{Value: 3})

	totals := value.NewMap()
	totals.Set(text("net"), &value.Integer{Value: 100})

	order := value.NewMap()
	order.Set(text("id"), text("A-1"))
	order.Set(text("status"), text("ACTIVE"))
	order.Set(text("items"), &value.List{Elements: []value.Value{item}})
	order.Set(text("totals"), totals)
	order.Set(text("signature"), &value.Bytes{Value: []byte{0x01, 0x02}})
	order.Set(text("weight"), &value.Float{Value: 2.5})
	order.Set(text("express"), value.TRUE)

	payload, err := reg.Encode("shop.Order", order)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := reg.Decode("shop.Order", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	orderType, err := reg.MessageType("shop.Order")
	if err != nil {
		t.Fatalf("MessageType: %v", err)
	}
	if err := typecheck.Validate(decoded, orderType); err != nil {
		t.Fatalf("decoded payload does not satisfy its own message type: %v", err)
	}

	rec, ok := decoded.(*value.Record)
	if !ok {
		t.Fatalf("Decode returned %T, want *value.Record", decoded)
	}
	status, _ := rec.Get("status")
	if !value.Equal(status, text("ACTIVE")) {
		t.Errorf("status = %s, want 'ACTIVE'", status.Inspect())
	}
	note, _ := rec.Get("note")
	if note != value.NIL {
		t.Errorf("unset optional field = %s, want none", note.Inspect())
	}
	items, _ := rec.Get("items")
	list, ok := items.(*value.List)
	if !ok || len(list.Elements) != 1 {
		t.Fatalf("items = %s", items.Inspect())
	}
	sku, _ := list.Elements[0].(*value.Record).Get("sku")
	if !value.Equal(sku, text("K-9")) {
		t.Errorf("item sku = %s", sku.Inspect())
	}
}

func TestDecodedRecordsShareClassIdentity(t *testing.T) {
	reg := loadShop(t)

	item := value.NewMap()
	item.Set(text("sku"), text("K-9"))
	payload, err := reg.Encode("shop.Item", item)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	first, err := reg.Decode("shop.Item", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	second, err := reg.Decode("shop.Item", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if first.(*value.Record).Class != second.(*value.Record).Class {
		t.Errorf("two decodes of the same message produced distinct classes")
	}
}

func TestRecursiveMessage(t *testing.T) {
	reg := loadShop(t)

	leaf := value.NewMap()
	leaf.Set(text("label"), text("leaf"))
	root := value.NewMap()
	root.Set(text("label"), text("root"))
	root.Set(text("left"), leaf)

	payload, err := reg.Encode("shop.Tree", root)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := reg.Decode("shop.Tree", payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	treeType, err := reg.MessageType("shop.Tree")
	if err != nil {
		t.Fatalf("MessageType: %v", err)
	}
	if err := typecheck.Validate(decoded, treeType); err != nil {
		t.Errorf("decoded tree rejected: %v", err)
	}

	rec := decoded.(*value.Record)
	left, _ := rec.Get("left")
	if _, ok := left.(*value.Record); !ok {
		t.Errorf("left child = %T, want record", left)
	}
	right, _ := rec.Get("right")
	if right != value.NIL {
		t.Errorf("absent child = %s, want none", right.Inspect())
	}
}

func TestEncodeErrors(t *testing.T) {
	reg := loadShop(t)

	badQuantity := value.NewMap()
	badQuantity.Set(text("quantity"), text("three"))
	if _, err := reg.Encode("shop.Item", badQuantity); err == nil {
		t.Errorf("Encode accepted text for an int64 field")
	}

	badStatus := value.NewMap()
	badStatus.Set(text("status"), text("NOPE"))
	_, err := reg.Encode("shop.Order", badStatus)
	if err == nil || !strings.Contains(err.Error(), "unknown Status value") {
		t.Errorf("bad enum error = %v", err)
	}

	if _, err := reg.Encode("shop.Item", value.TRUE); err == nil {
		t.Errorf("Encode accepted a scalar as a message")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	reg := loadShop(t)
	if _, err := reg.Decode("shop.Order", []byte{0xff, 0xff, 0xff}); err == nil {
		t.Errorf("Decode accepted a torn payload")
	}
}

func TestLoadFileErrors(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadFile("missing.proto", t.TempDir()); err == nil {
		t.Errorf("LoadFile accepted a missing file")
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.proto"), []byte("syntax = ???"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := reg.LoadFile("bad.proto", dir); err == nil {
		t.Errorf("LoadFile accepted a malformed proto")
	}
}
