// Package contentkey derives content-addressed cache keys for embedding inputs.
package contentkey

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Normalize replaces embedded newlines with spaces and trims surrounding whitespace,
// so that incidental formatting differences map to the same key.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// Key returns the base64-encoded SHA-256 digest of text. Same text always yields the same key.
// No normalization is applied here; callers pass Normalize(text).
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Keys returns Key for each text, in order.
func Keys(texts []string) []string {
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = Key(t)
	}
	return keys
}
