package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version         byte = 1
	kindComputed    byte = 1
	kindPlaceholder byte = 2

	computedHdr    = 4 + 1 + 1 + 8 + 4
	placeholderLen = 4 + 1 + 1
	softOffset     = 6
)

var (
	ErrCorrupt = errors.New("swrcache: corrupt entry")
	magic4     = [...]byte{'S', 'W', 'R', 'C'}
)

// Envelope is a decoded store entry. Pending entries carry no payload and
// no soft expiry.
type Envelope struct {
	Pending       bool
	SoftExpiresAt time.Time // zero when unknown
	Payload       []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Computed: magic(4) | ver(1) | kind(1=computed) | softExpiresAt(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
//
// A zero softExpiresAt is written as 0 and decodes back to the zero time.
func EncodeComputed(softExpiresAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(computedHdr + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindComputed)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(softExpiresAt)))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Placeholder: magic(4) | ver(1) | kind(2=placeholder)
func EncodePlaceholder() []byte {
	b := make([]byte, 0, placeholderLen)
	b = append(b, magic4[:]...)
	return append(b, version, kindPlaceholder)
}

// Decode parses either variant. Trailing bytes are rejected.
func Decode(b []byte) (Envelope, error) {
	if len(b) < placeholderLen || !hasMagic(b) || b[4] != version {
		return Envelope{}, ErrCorrupt
	}
	switch b[5] {
	case kindPlaceholder:
		if len(b) != placeholderLen {
			return Envelope{}, ErrCorrupt
		}
		return Envelope{Pending: true}, nil
	case kindComputed:
		return decodeComputed(b)
	default:
		return Envelope{}, ErrCorrupt
	}
}

func decodeComputed(b []byte) (Envelope, error) {
	if len(b) < computedHdr {
		return Envelope{}, ErrCorrupt
	}
	off := softOffset

	// softExpiresAt
	soft := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	// vlen
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return Envelope{}, ErrCorrupt
	}

	return Envelope{
		SoftExpiresAt: fromUnixNano(soft),
		Payload:       b[off : off+vlen],
	}, nil
}

// RewriteSoftExpiry returns a copy of a computed frame with a new soft expiry.
// The payload bytes are carried over untouched.
func RewriteSoftExpiry(b []byte, softExpiresAt time.Time) ([]byte, error) {
	env, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if env.Pending {
		return nil, ErrCorrupt
	}
	out := make([]byte, len(b))
	copy(out, b)
	binary.BigEndian.PutUint64(out[softOffset:softOffset+8], uint64(unixNano(softExpiresAt)))
	return out, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
