package codec

import "encoding/json"

// JSON is the default record codec. The zero value is ready to use.
type JSON[R any] struct{}

func (JSON[R]) Encode(v R) ([]byte, error) { return json.Marshal(v) }
func (JSON[R]) Decode(b []byte) (R, error) {
	var v R
	err := json.Unmarshal(b, &v)
	return v, err
}
