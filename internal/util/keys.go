package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MaxKeyLen is the longest key memcached accepts.
const MaxKeyLen = 250

const hashMarker = ":hash:"

// StorageKey joins prefix and key into a key every provider accepts.
// Whitespace, control bytes, '%' and bytes >= 0x7f are %XX-escaped; results longer than
// MaxKeyLen keep their head and end with a sha256 digest of the full escaped key.
func StorageKey(prefix, key string) string {
	k := escape(prefix + key)
	if len(k) <= MaxKeyLen {
		return k
	}
	sum := sha256.Sum256([]byte(k))
	digest := hex.EncodeToString(sum[:])
	return k[:MaxKeyLen-len(hashMarker)-len(digest)] + hashMarker + digest
}

func escape(s string) string {
	i := 0
	for i < len(s) && !mustEscape(s[i]) {
		i++
	}
	if i == len(s) {
		return s
	}

	const hexdigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		c := s[i]
		if !mustEscape(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexdigits[c>>4])
		b.WriteByte(hexdigits[c&0x0f])
	}
	return b.String()
}

func mustEscape(c byte) bool {
	return c <= ' ' || c == '%' || c >= 0x7f
}
