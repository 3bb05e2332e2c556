// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"1234", "1234"},
		{"mcneel/rhino3dm:docs/sample.py", "mcneel%2Frhino3dm%3Adocs%2Fsample.py"},
		{"a b", "a%20b"},
		{"100%", "100%25"},
		{"snake_case-name.py", "snake_case-name.py"},
	}
	for _, tt := range tests {
		if got := FileKey(tt.id); got != tt.want {
			t.Errorf("FileKey(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestFileKey_RoundTrip(t *testing.T) {
	ids := []string{
		"1",
		"owner/repo:src/äöü.py",
		"owner/repo:path with spaces/x.py",
		"%41",
		"x:y\\z",
	}
	for _, id := range ids {
		got, ok := ParseFileKey(FileKey(id))
		assert.True(t, ok, id)
		assert.Equal(t, id, got)
	}
}

func TestFileKey_LongIDsAreHashed(t *testing.T) {
	id := strings.Repeat("a/", 150)
	key := FileKey(id)

	assert.True(t, strings.HasPrefix(key, hashPrefix))
	assert.Len(t, key, len(hashPrefix)+64)
	assert.Equal(t, key, FileKey(id), "hashing is deterministic")
	assert.NotEqual(t, key, FileKey(id+"b"))

	_, ok := ParseFileKey(key)
	assert.False(t, ok)
}

func TestParseFileKey_Invalid(t *testing.T) {
	for _, key := range []string{"", "%", "%4", "%ZZ", "a/b", "a b"} {
		_, ok := ParseFileKey(key)
		assert.False(t, ok, key)
	}
}

func TestParseFileKey_RejectsNonCanonicalEscapes(t *testing.T) {
	for _, key := range []string{"%41", "owner%2frepo", "%2e", "."} {
		_, ok := ParseFileKey(key)
		assert.False(t, ok, key)
	}

	id, ok := ParseFileKey("owner%2Frepo")
	assert.True(t, ok)
	assert.Equal(t, "owner/repo", id)
}
