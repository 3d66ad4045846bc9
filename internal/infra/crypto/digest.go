package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digester computes a lowercase hex-encoded digest of a byte payload.
// Implementations must be environment-independent: the same bytes produce the
// same hex string wherever they run.
type Digester interface {
	Digest(data []byte) string
}

// SHA256Digester is the production digester: 32-byte SHA-256, 64 hex chars.
type SHA256Digester struct{}

func (SHA256Digester) Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
