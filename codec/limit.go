package codec

import "fmt"

// LimitCodec wraps another codec to enforce a maximum allowed payload size
// at Decode time. Encode is forwarded to Inner unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: protect against oversized/malicious inputs coming from a
// shared cache or an untrusted remote endpoint (see source.HTTPConfig).
type LimitCodec[R any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner interface {
		Encode(R) ([]byte, error)
		Decode([]byte) (R, error)
	}
	// MaxDecode is the maximum permitted length (in bytes) of the incoming
	// payload for Decode. If payload length exceeds MaxDecode, Decode returns
	// an error without invoking Inner.
	MaxDecode int
}

func (c LimitCodec[R]) Encode(v R) ([]byte, error) { return c.Inner.Encode(v) }
func (c LimitCodec[R]) Decode(b []byte) (R, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero R
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
