package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// NewOpaqueSecret returns 256 bits from crypto/rand as unpadded
// base64url. The raw value is shown to the caller once; only its hash
// is ever persisted.
func NewOpaqueSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SecretHasher turns a raw opaque secret into its storage and lookup
// key. Implementations must be deterministic and one-way.
type SecretHasher interface {
	Hash(raw string) string
}

// SHA256Hasher hashes with SHA-256 and encodes as unpadded base64url.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
