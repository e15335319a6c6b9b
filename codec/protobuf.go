package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var ErrNoConstructor = errors.New("codec: protobuf codec has no message constructor")

// Protobuf encodes results that are protobuf messages.
// Build it with NewProtobuf; Decode fills a message from ctor.
type Protobuf[T proto.Message] struct {
	ctor func() T // e.g. func() *pb.Report { return new(pb.Report) }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{ctor: ctor}
}

// Encode is deterministic so equal messages produce equal payloads.
func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.ctor == nil {
		var zero T
		return zero, ErrNoConstructor
	}
	m := c.ctor()
	if err := proto.Unmarshal(b, m); err != nil {
		var zero T
		return zero, err
	}
	return m, nil
}
