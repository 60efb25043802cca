package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey derives a 256-bit key from password and salt with
// PBKDF2-HMAC-SHA256. It is a pure function of its inputs; a wrong
// password only shows up later as a decryption failure.
func DeriveKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New)
}
