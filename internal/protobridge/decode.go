package protobridge

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/funtype/pkg/value"
)

// Decode unmarshals a wire payload into a runtime value. The result
// is a record of the message's class; derive it first so later
// matching against MessageType descriptors works by identity.
func (r *Registry) Decode(messageName string, payload []byte) (value.Value, error) {
	r.mu.Lock()
	md, err := r.findMessageLocked(messageName)
	if err == nil {
		_, err = r.classForLocked(md)
	}
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	msg := dynamic.NewMessage(md)
	if err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", messageName, err)
	}
	return r.messageValue(msg)
}

func (r *Registry) messageValue(msg *dynamic.Message) (value.Value, error) {
	md := msg.GetMessageDescriptor()
	r.mu.RLock()
	class := r.classes[md.GetFullyQualifiedName()]
	r.mu.RUnlock()
	if class == nil {
		return nil, fmt.Errorf("message %s has no derived class", md.GetFullyQualifiedName())
	}

	fields := make(map[string]value.Value)
	for _, fd := range md.GetFields() {
		fv, err := r.fieldValue(msg, fd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		fields[fd.GetName()] = fv
	}
	return value.NewRecord(class, fields), nil
}

func (r *Registry) fieldValue(msg *dynamic.Message, fd *desc.FieldDescriptor) (value.Value, error) {
	if fd.IsMap() {
		m := value.NewMap()
		entries, ok := msg.GetField(fd).(map[interface{}]interface{})
		if !ok {
			return m, nil
		}
		for k, v := range entries {
			key, err := r.singleValue(k, fd.GetMapKeyType())
			if err != nil {
				return nil, err
			}
			val, err := r.singleValue(v, fd.GetMapValueType())
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	}

	if fd.IsRepeated() {
		raw, _ := msg.GetField(fd).([]interface{})
		list := &value.List{Elements: make([]value.Value, 0, len(raw))}
		for _, item := range raw {
			el, err := r.singleValue(item, fd)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, el)
		}
		return list, nil
	}

	if hasPresence(fd) && !msg.HasField(fd) {
		return value.NIL, nil
	}
	return r.singleValue(msg.GetField(fd), fd)
}

func (r *Registry) singleValue(val interface{}, fd *desc.FieldDescriptor) (value.Value, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if v, ok := val.(int32); ok {
			return &value.Integer{Value: int64(v)}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if v, ok := val.(int64); ok {
			return &value.Integer{Value: v}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if v, ok := val.(uint32); ok {
			return &value.Integer{Value: int64(v)}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if v, ok := val.(uint64); ok {
			return &value.Integer{Value: int64(v)}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if v, ok := val.(float32); ok {
			return &value.Float{Value: float64(v)}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if v, ok := val.(float64); ok {
			return &value.Float{Value: v}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if v, ok := val.(bool); ok {
			return value.Bool(v), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if v, ok := val.(string); ok {
			return &value.Text{Value: v}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		if v, ok := val.([]byte); ok {
			return &value.Bytes{Value: v}, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		if v, ok := val.(*dynamic.Message); ok {
			return r.messageValue(v)
		}
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if v, ok := val.(int32); ok {
			ev := fd.GetEnumType().FindValueByNumber(v)
			if ev == nil {
				return nil, fmt.Errorf("unknown %s value %d", fd.GetEnumType().GetName(), v)
			}
			return &value.Text{Value: ev.GetName()}, nil
		}
	}
	return nil, fmt.Errorf("unexpected %T for proto field type %v", val, fd.GetType())
}
