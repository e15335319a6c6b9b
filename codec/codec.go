// Package codec converts operation results to and from the payload bytes
// carried inside a stored envelope.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
