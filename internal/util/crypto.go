package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the SHA-256 hash of s as a lowercase hex string.
// Used to key lead de-duplication entries without storing contact details.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual compares two secrets without leaking their common prefix length.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MaskToken keeps the first seven characters of a token and hides the rest,
// preserving separators. "DEMO-AB12-CD34" becomes "DEMO-AB**-****".
func MaskToken(s string) string {
	if len(s) <= 7 {
		return strings.Repeat("*", len(s))
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:7])
	for _, r := range s[7:] {
		if r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('*')
	}
	return b.String()
}
