// Package sha256 provides SHA-256 hashing utilities for URL and content digests.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLen is the hex length of the truncated digests stored in records.
const ShortLen = 16

// Hasher computes SHA-256 hex digests.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns the full hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Short returns the first ShortLen hex characters of the digest. Record
// URL hashes use this truncated form.
func Short(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:ShortLen]
}

// Content returns the "sha256:"-prefixed short digest used as a record
// version token. Stable across runs for identical input.
func Content(text string) string {
	return "sha256:" + Short([]byte(text))
}
