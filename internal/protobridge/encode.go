package protobridge

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/funtype/pkg/value"
)

// Encode marshals a record or mapping into the wire form of a message
// type. Keys without a matching proto field are ignored; None fields
// are left unset.
func (r *Registry) Encode(messageName string, v value.Value) ([]byte, error) {
	r.mu.RLock()
	md, err := r.findMessageLocked(messageName)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	msg := dynamic.NewMessage(md)
	if err := r.populateMessage(msg, v); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", messageName, err)
	}
	return msg.Marshal()
}

func (r *Registry) populateMessage(msg *dynamic.Message, v value.Value) error {
	var get func(name string) (value.Value, bool)
	switch o := v.(type) {
	case *value.Record:
		get = o.Get
	case *value.Map:
		get = o.GetText
	default:
		return fmt.Errorf("expected a record or mapping, got %s", v.Kind())
	}

	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		fv, ok := get(fd.GetName())
		if !ok {
			continue
		}
		if _, isNil := fv.(*value.Nil); isNil {
			continue
		}
		pv, err := r.protoValue(fv, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		msg.SetField(fd, pv)
	}
	return nil
}

func (r *Registry) protoValue(fv value.Value, fd *desc.FieldDescriptor) (interface{}, error) {
	if fd.IsMap() {
		m, ok := fv.(*value.Map)
		if !ok {
			return nil, fmt.Errorf("expected a mapping for map field, got %s", fv.Kind())
		}
		entries := make(map[interface{}]interface{}, m.Len())
		for _, pair := range m.Pairs() {
			k, err := r.protoSingle(pair.Key, fd.GetMapKeyType())
			if err != nil {
				return nil, err
			}
			v, err := r.protoSingle(pair.Value, fd.GetMapValueType())
			if err != nil {
				return nil, err
			}
			entries[k] = v
		}
		return entries, nil
	}

	if fd.IsRepeated() {
		list, ok := fv.(*value.List)
		if !ok {
			return nil, fmt.Errorf("expected a list for repeated field, got %s", fv.Kind())
		}
		slice := make([]interface{}, 0, len(list.Elements))
		for _, el := range list.Elements {
			v, err := r.protoSingle(el, fd)
			if err != nil {
				return nil, err
			}
			slice = append(slice, v)
		}
		return slice, nil
	}

	return r.protoSingle(fv, fd)
}

func (r *Registry) protoSingle(fv value.Value, fd *desc.FieldDescriptor) (interface{}, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if i, ok := fv.(*value.Integer); ok {
			return int32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if i, ok := fv.(*value.Integer); ok {
			return i.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if i, ok := fv.(*value.Integer); ok {
			return uint32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if i, ok := fv.(*value.Integer); ok {
			return uint64(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if f, ok := fv.(*value.Float); ok {
			return float32(f.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if f, ok := fv.(*value.Float); ok {
			return f.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := fv.(*value.Boolean); ok {
			return b.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if s, ok := fv.(*value.Text); ok {
			return s.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		if b, ok := fv.(*value.Bytes); ok {
			return b.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		nested := dynamic.NewMessage(fd.GetMessageType())
		if err := r.populateMessage(nested, fv); err != nil {
			return nil, err
		}
		return nested, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if s, ok := fv.(*value.Text); ok {
			ev := fd.GetEnumType().FindValueByName(s.Value)
			if ev == nil {
				return nil, fmt.Errorf("unknown %s value %q", fd.GetEnumType().GetName(), s.Value)
			}
			return ev.GetNumber(), nil
		}
		if i, ok := fv.(*value.Integer); ok {
			return int32(i.Value), nil
		}
	}
	return nil, fmt.Errorf("cannot encode %s into proto field type %v", fv.Kind(), fd.GetType())
}
