package protobridge

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/funtype/pkg/descriptor"
)

// classForLocked derives the class of a message, caching by fully
// qualified name. The shell is cached before the field walk so
// self-referential messages terminate.
func (r *Registry) classForLocked(md *desc.MessageDescriptor) (*descriptor.Class, error) {
	fqn := md.GetFullyQualifiedName()
	if c, ok := r.classes[fqn]; ok {
		return c, nil
	}
	c := &descriptor.Class{Name: md.GetName()}
	r.classes[fqn] = c

	for _, fd := range md.GetFields() {
		ft, err := r.fieldTypeLocked(fd)
		if err != nil {
			delete(r.classes, fqn)
			return nil, fmt.Errorf("message %s: %w", fqn, err)
		}
		c.Fields = append(c.Fields, descriptor.Field{
			Name:     fd.GetName(),
			Type:     ft,
			Required: true,
		})
	}
	return c, nil
}

func (r *Registry) fieldTypeLocked(fd *desc.FieldDescriptor) (descriptor.Descriptor, error) {
	if fd.IsMap() {
		key, err := r.singleTypeLocked(fd.GetMapKeyType())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		val, err := r.singleTypeLocked(fd.GetMapValueType())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		return descriptor.Mapping{Key: key, Value: val}, nil
	}

	single, err := r.singleTypeLocked(fd)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
	}
	if fd.IsRepeated() {
		return descriptor.Sequence{Kind: descriptor.List, Element: single}, nil
	}
	if hasPresence(fd) {
		return descriptor.NewUnion(single, descriptor.Nominal{Class: descriptor.NoneClass}), nil
	}
	return single, nil
}

func (r *Registry) singleTypeLocked(fd *desc.FieldDescriptor) (descriptor.Descriptor, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return descriptor.Primitive{Kind: descriptor.Integer}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
		descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return descriptor.Primitive{Kind: descriptor.Float}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return descriptor.Primitive{Kind: descriptor.Boolean}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return descriptor.Primitive{Kind: descriptor.Text}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return descriptor.Primitive{Kind: descriptor.Bytes}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		c, err := r.classForLocked(fd.GetMessageType())
		if err != nil {
			return nil, err
		}
		return descriptor.Nominal{Class: c}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return enumType(fd.GetEnumType()), nil
	default:
		return nil, fmt.Errorf("unsupported proto field type %v", fd.GetType())
	}
}

// enumType maps an enum to a literal over its declared value names.
func enumType(ed *desc.EnumDescriptor) descriptor.Descriptor {
	constants := make([]descriptor.Constant, len(ed.GetValues()))
	for i, v := range ed.GetValues() {
		constants[i] = descriptor.TextConst{Value: v.GetName()}
	}
	return descriptor.Literal{Constants: constants}
}

// hasPresence reports whether an absent field is observable, which
// widens its type with None: singular messages, proto3 optionals and
// oneof members.
func hasPresence(fd *desc.FieldDescriptor) bool {
	if fd.GetType() == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
		return true
	}
	if fd.AsFieldDescriptorProto().GetProto3Optional() {
		return true
	}
	return fd.GetOneOf() != nil
}
