package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a Codec that serializes records using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Msgpack is compact and fast; be mindful of struct tag differences vs JSON.
// Use `msgpack:"fieldName"` tags if you need explicit control.
type Msgpack[R any] struct{}

func (Msgpack[R]) Encode(v R) ([]byte, error) {
	return msgpack.Marshal(v)
}
func (Msgpack[R]) Decode(b []byte) (R, error) {
	var v R
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
