package serialize

import "reflect"

// Serializer -> declared-type directed serialization protocol.
// Values are always encoded and decoded against the type declared by the
// contract, never against the dynamic type of the argument alone.
type Serializer interface {
	// ContentType is sent as the HTTP Content-Type
	ContentType() string
	Encode(val reflect.Value, declared reflect.Type) ([]byte, error)
	// Decode returns a value of exactly the declared type.
	Decode(data []byte, declared reflect.Type) (reflect.Value, error)
}
