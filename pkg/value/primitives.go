package value

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Kind() Kind      { return BOOLEAN_KIND }
func (b *Boolean) Inspect() string { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) Shape() descriptor.Descriptor {
	// Distinct from integer no matter how the host represents booleans.
	return descriptor.Primitive{Kind: descriptor.Boolean}
}
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

// Integer
type Integer struct {
	Value int64
}

func (i *Integer) Kind() Kind      { return INTEGER_KIND }
func (i *Integer) Inspect() string { return fmt.Sprintf("%d", i.Value) }
func (i *Integer) Shape() descriptor.Descriptor {
	return descriptor.Primitive{Kind: descriptor.Integer}
}
func (i *Integer) Hash() uint32 {
	return uint32(i.Value ^ (i.Value >> 32))
}

// Float
type Float struct {
	Value float64
}

func (f *Float) Kind() Kind      { return FLOAT_KIND }
func (f *Float) Inspect() string { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Shape() descriptor.Descriptor {
	return descriptor.Primitive{Kind: descriptor.Float}
}
func (f *Float) Hash() uint32 {
	bits := math.Float64bits(f.Value)
	return uint32(bits ^ (bits >> 32))
}

// Text
type Text struct {
	Value string
}

func (t *Text) Kind() Kind      { return TEXT_KIND }
func (t *Text) Inspect() string { return fmt.Sprintf("%q", t.Value) }
func (t *Text) Shape() descriptor.Descriptor {
	return descriptor.Primitive{Kind: descriptor.Text}
}
func (t *Text) Hash() uint32 { return hashString(t.Value) }

// Bytes
type Bytes struct {
	Value []byte
}

func (b *Bytes) Kind() Kind      { return BYTES_KIND }
func (b *Bytes) Inspect() string { return "0x" + hex.EncodeToString(b.Value) }
func (b *Bytes) Shape() descriptor.Descriptor {
	return descriptor.Primitive{Kind: descriptor.Bytes}
}
func (b *Bytes) Hash() uint32 { return hashBytes(b.Value) }

// Uuid
type Uuid struct {
	Value uuid.UUID
}

func (u *Uuid) Kind() Kind      { return UUID_KIND }
func (u *Uuid) Inspect() string { return u.Value.String() }
func (u *Uuid) Shape() descriptor.Descriptor {
	return descriptor.Nominal{Class: descriptor.UUIDClass}
}
func (u *Uuid) Hash() uint32 { return hashBytes(u.Value[:]) }

// Nil
type Nil struct{}

func (n *Nil) Kind() Kind      { return NIL_KIND }
func (n *Nil) Inspect() string { return "none" }
func (n *Nil) Shape() descriptor.Descriptor {
	return descriptor.Nominal{Class: descriptor.NoneClass}
}
func (n *Nil) Hash() uint32 { return 0 }
