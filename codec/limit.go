package codec

import "fmt"

// TooLargeError reports a payload over a LimitCodec bound.
type TooLargeError struct {
	Op    string // "encode" or "decode"
	Size  int
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("codec: %s payload too large: %d > %d", e.Op, e.Size, e.Limit)
}

// LimitCodec bounds payload sizes around Inner. A limit <= 0 is disabled.
//
// An oversized stored payload fails Decode; the cache deletes it and
// recomputes. An oversized result fails Encode, which surfaces to the caller
// as a serialization error instead of filling the store.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxEncode int
	MaxDecode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, &TooLargeError{Op: "encode", Size: len(b), Limit: c.MaxEncode}
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, &TooLargeError{Op: "decode", Size: len(b), Limit: c.MaxDecode}
	}
	return c.Inner.Decode(b)
}
