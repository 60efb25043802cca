package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

const (
	KeySize   = 32 // AES-256 key size
	IVSize    = 16 // AES block size
	SaltSize  = 16 // PBKDF2 salt size
	BlockSize = 16
)

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
