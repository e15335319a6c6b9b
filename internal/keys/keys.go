package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// canonical is the argument encoder. Core Deterministic Encoding sorts map
// keys and struct fields and picks the shortest form for numbers, so equal
// argument values hash equally regardless of map iteration order.
var canonical cbor.EncMode

func init() {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		panic(err)
	}
	canonical = em
}

// Canonical returns the deterministic encoding of args.
func Canonical(args any) ([]byte, error) {
	return canonical.Marshal(args)
}

// Hash returns the hex sha256 of the canonical encoding of args.
func Hash(args any) (string, error) {
	b, err := Canonical(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Derive builds <ns>/<ownerType>/<ownerID>/<operation>/<hash>.
// Segments are path-escaped so a '/' inside an id cannot shift segments.
// An empty ownerID leaves an empty segment (class-level operations).
// Only exported struct fields are encoded; args differing only in unexported
// fields share a key.
func Derive(ns, ownerType, ownerID, operation string, args any) (string, error) {
	h, err := Hash(args)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(ns) + len(ownerType) + len(ownerID) + len(operation) + len(h) + 4)
	sb.WriteString(url.PathEscape(ns))
	sb.WriteByte('/')
	sb.WriteString(url.PathEscape(ownerType))
	sb.WriteByte('/')
	sb.WriteString(url.PathEscape(ownerID))
	sb.WriteByte('/')
	sb.WriteString(url.PathEscape(operation))
	sb.WriteByte('/')
	sb.WriteString(h)
	return sb.String(), nil
}
