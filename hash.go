package docdex

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes the content fingerprint of a file: SHA-256 over the
// raw bytes, hex encoded. Bytes are hashed exactly as read, with no line
// ending or whitespace normalization, so fingerprints are reproducible across
// platforms. Equal fingerprints mean "treat as unchanged"; they are never
// used as a content identity across files.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
