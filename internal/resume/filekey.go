// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resume

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// maxKeyLen keeps record file names well under common file name limits.
const maxKeyLen = 200

// hashPrefix marks keys derived from a digest rather than the escaped id.
const hashPrefix = "~"

// FileKey maps a canonical id to a filesystem-safe file name stem. Bytes
// outside [A-Za-z0-9._-] are written as %XX. Ids whose escaped form is too
// long use "~" followed by the SHA-256 of the id, which is not reversible.
func FileKey(id string) string {
	var b strings.Builder
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
	}
	key := b.String()
	if len(key) > maxKeyLen || key == "." || key == ".." {
		sum := sha256.Sum256([]byte(id))
		return hashPrefix + hex.EncodeToString(sum[:])
	}
	return key
}

// ParseFileKey reverses FileKey. It returns false for hashed keys and for
// stems FileKey could not have produced, such as an escaped safe byte
// ("%41") or lowercase hex ("%2f"), so each id has exactly one stem.
func ParseFileKey(key string) (string, bool) {
	if key == "" || strings.HasPrefix(key, hashPrefix) {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '%' {
			if !isSafe(c) {
				return "", false
			}
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(key) {
			return "", false
		}
		v, err := strconv.ParseUint(key[i+1:i+3], 16, 8)
		if err != nil {
			return "", false
		}
		b.WriteByte(byte(v))
		i += 2
	}
	id := b.String()
	if FileKey(id) != key {
		return "", false
	}
	return id, true
}

func isSafe(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}
