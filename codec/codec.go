package codec

// Codec encodes/decodes record values R to []byte for storage.
type Codec[R any] interface {
	Encode(R) ([]byte, error)
	Decode([]byte) (R, error)
}
