package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"restrpc/internal/errs"
)

var (
	protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()
	null             = []byte("null")
)

// Serializer -> JSON serialization protocol.
// Declared types implementing proto.Message use the protobuf JSON mapping.
type Serializer struct{}

func (s Serializer) ContentType() string {
	return "application/json"
}

func (s Serializer) Encode(val reflect.Value, declared reflect.Type) ([]byte, error) {
	if !val.IsValid() {
		return null, nil
	}
	if val.Type() != declared {
		if !val.Type().AssignableTo(declared) {
			return nil, fmt.Errorf("serialize: %s is not assignable to %s", val.Type(), declared)
		}
		v := reflect.New(declared).Elem()
		v.Set(val)
		val = v
	}
	if isNil(val) {
		return null, nil
	}
	if declared.Implements(protoMessageType) {
		return protojson.Marshal(val.Interface().(proto.Message))
	}
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(val.Interface()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (s Serializer) Decode(data []byte, declared reflect.Type) (reflect.Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return reflect.Value{}, errors.New("serialize: empty value")
	}
	if bytes.Equal(data, null) {
		if !nillable(declared) {
			return reflect.Value{}, errs.NullValueError
		}
		return reflect.Zero(declared), nil
	}
	if declared.Kind() == reflect.Pointer && declared.Implements(protoMessageType) {
		msg := reflect.New(declared.Elem())
		if err := protojson.Unmarshal(data, msg.Interface().(proto.Message)); err != nil {
			return reflect.Value{}, err
		}
		return msg, nil
	}
	ptr := reflect.New(declared)
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return reflect.Value{}, errors.New("serialize: unexpected data after value")
	}
	return ptr.Elem(), nil
}

func nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}

func isNil(val reflect.Value) bool {
	return nillable(val.Type()) && val.IsNil()
}
