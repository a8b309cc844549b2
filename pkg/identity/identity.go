// Package identity derives stable folder identities from the paths reported
// by the sync daemon.
//
// The daemon's JSON strings frequently carry UTF-8 bytes that were decoded as
// Latin-1 somewhere upstream. The display form of a path is repaired with
// FixDecode, but the identity tag is always taken from the path exactly as it
// was received so that the repair never changes a folder's identity.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Tag returns the identity tag of a folder path: the hex MD5 digest of the
// path's single-byte representation.
func Tag(path string) string {
	sum := md5.Sum(singleByte(path))
	return hex.EncodeToString(sum[:])
}

// FixDecode repairs a string whose UTF-8 bytes were decoded as Latin-1. When
// the single-byte form of s is not valid UTF-8 the string is returned as is.
func FixDecode(s string) string {
	raw, ok := latin1(s)
	if !ok || !utf8.Valid(raw) {
		return s
	}
	return string(raw)
}

// singleByte encodes every rune of s as its Latin-1 byte. Runes outside the
// Latin-1 range keep their UTF-8 bytes.
func singleByte(s string) []byte {
	if raw, ok := latin1(s); ok {
		return raw
	}
	enc := charmap.ISO8859_1
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := enc.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = utf8.AppendRune(out, r)
	}
	return out
}

func latin1(s string) ([]byte, bool) {
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, false
	}
	return raw, true
}
