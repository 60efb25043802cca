// Package crypto provides the cryptographic primitives used by pwvault.
//
// Encryption uses AES-256-CBC with:
//   - 32-byte key derived from the master password via PBKDF2
//   - 16-byte IV supplied by the caller
//   - PKCS#7 padding, validated on decrypt
//
// There is no MAC. Padding validation on decrypt is the only signal that
// the derived key (and therefore the password) was wrong.
//
// Key derivation uses PBKDF2-HMAC-SHA256 and always yields a 256-bit key.
// Iteration counts and salts are chosen by the caller; see package vault
// for the parameter profiles.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Use Secret to keep a master password in a memguard enclave
package crypto
