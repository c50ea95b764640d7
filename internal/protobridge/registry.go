// Package protobridge derives type descriptors from protobuf schemas
// and decodes wire payloads into runtime values.
//
// Each message type binds to a nominal class, so decoded payloads of
// the same message share a class identity and recursive messages
// resolve through the class shell. Enum fields become literal types
// over the declared value names.
package protobridge

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// Registry holds loaded proto files and the classes derived from
// their messages. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	files   map[string]*desc.FileDescriptor
	classes map[string]*descriptor.Class // fully qualified message name
}

func NewRegistry() *Registry {
	return &Registry{
		files:   make(map[string]*desc.FileDescriptor),
		classes: make(map[string]*descriptor.Class),
	}
}

// LoadFile parses a .proto file and registers it along with its
// dependencies. Import statements resolve against importPaths; the
// current directory is used when none are given.
func (r *Registry) LoadFile(filename string, importPaths ...string) error {
	parser := protoparse.Parser{ImportPaths: importPaths}
	if len(importPaths) == 0 {
		parser.ImportPaths = []string{"."}
	}

	fds, err := parser.ParseFiles(filename)
	if err != nil {
		return fmt.Errorf("parsing proto %s: %w", filename, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fd := range fds {
		r.registerLocked(fd)
	}
	return nil
}

func (r *Registry) registerLocked(fd *desc.FileDescriptor) {
	if _, ok := r.files[fd.GetName()]; ok {
		return
	}
	r.files[fd.GetName()] = fd
	for _, dep := range fd.GetDependencies() {
		r.registerLocked(dep)
	}
}

// Files returns the names of all registered proto files.
func (r *Registry) Files() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	return names
}

// findMessage resolves a message by fully qualified name, falling
// back to a scan by simple name so CLI callers can drop the package
// prefix.
func (r *Registry) findMessageLocked(name string) (*desc.MessageDescriptor, error) {
	for _, fd := range r.files {
		if md := fd.FindMessage(name); md != nil {
			return md, nil
		}
	}
	var found *desc.MessageDescriptor
	for _, fd := range r.files {
		for _, md := range fd.GetMessageTypes() {
			if md.GetName() == name {
				if found != nil {
					return nil, fmt.Errorf("message name %q is ambiguous, use the fully qualified name", name)
				}
				found = md
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("message type %q not found (did you load the proto?)", name)
	}
	return found, nil
}

// MessageType derives the descriptor for a message type.
func (r *Registry) MessageType(name string) (descriptor.Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	md, err := r.findMessageLocked(name)
	if err != nil {
		return nil, err
	}
	c, err := r.classForLocked(md)
	if err != nil {
		return nil, err
	}
	return descriptor.Nominal{Class: c}, nil
}

// Class returns the class bound to a message type, if it has been
// derived already.
func (r *Registry) Class(name string) (*descriptor.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, err := r.findMessageLocked(name)
	if err != nil {
		return nil, false
	}
	c, ok := r.classes[md.GetFullyQualifiedName()]
	return c, ok
}
