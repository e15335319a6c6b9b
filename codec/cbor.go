package codec

import (
	"github.com/fxamacker/cbor/v2"
)

type CBOROptions struct {
	// Deterministic selects RFC 8949 Core Deterministic encoding (sorted map
	// keys, shortest numbers) so equal values encode to equal bytes.
	// Otherwise preferred unsorted encoding is used.
	Deterministic bool
	// MaxNestedLevels bounds decoding depth of stored payloads; 0 keeps the
	// library default (32).
	MaxNestedLevels int
}

// CBOR encodes results with fxamacker/cbor. Times are written as RFC3339Nano
// strings. The zero value is NOT ready to use; construct with NewCBOR.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](opts CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if opts.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}

	dm, err := cbor.DecOptions{MaxNestedLevels: opts.MaxNestedLevels}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR that panics; meant for package-level variables.
func MustCBOR[V any](opts CBOROptions) CBOR[V] {
	c, err := NewCBOR[V](opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
