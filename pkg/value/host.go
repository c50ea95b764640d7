package value

import (
	"fmt"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// hostClass is the fallback identity for host values whose builder did
// not derive a class of their own.
var hostClass = &descriptor.Class{Name: "HostValue"}

// Host wraps a native Go value the model has no variant for. It keeps
// validation total: unknown inputs still infer to a nominal shape and
// simply fail to match anything structural.
type Host struct {
	Value any
	Class *descriptor.Class
}

// NewHost wraps v under the given class identity; a nil class falls
// back to the shared opaque host class.
func NewHost(v any, class *descriptor.Class) *Host {
	if class == nil {
		class = hostClass
	}
	return &Host{Value: v, Class: class}
}

func (h *Host) Kind() Kind      { return HOST_KIND }
func (h *Host) Inspect() string { return fmt.Sprintf("%v", h.Value) }

func (h *Host) Shape() descriptor.Descriptor {
	if h.Class == nil {
		return descriptor.Nominal{Class: hostClass}
	}
	return descriptor.Nominal{Class: h.Class}
}

func (h *Host) Hash() uint32 {
	return hashString(fmt.Sprintf("%T:%v", h.Value, h.Value))
}
