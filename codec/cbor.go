package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR serializes records with fxamacker/cbor. The zero value has no
// encoder modes and will nil-panic; always construct through NewCBOR or
// MustCBOR.
type CBOR[R any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR builds the codec. deterministic selects RFC 8949 Core
// Deterministic encoding, which keeps snapshot bytes stable across runs
// for the same record set; otherwise the preferred-unsorted options
// apply. Times are encoded as RFC3339Nano either way.
func NewCBOR[R any](deterministic bool) (CBOR[R], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[R]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[R]{}, err
	}
	return CBOR[R]{enc: em, dec: dm}, nil
}

// MustCBOR panics instead of returning the error. Package-level vars and
// tests only.
func MustCBOR[R any](deterministic bool) CBOR[R] {
	c, err := NewCBOR[R](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[R]) Encode(v R) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c CBOR[R]) Decode(b []byte) (R, error) {
	var v R
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
