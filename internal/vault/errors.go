package vault

import (
	"errors"
)

// ErrCrypto matches every CryptoError through errors.Is.
var ErrCrypto = errors.New("vault crypto failure")

const (
	decryptionMessage = "could not decrypt data, the likely cause is an incorrect password"
	encryptionMessage = "could not encrypt data"
)

// CryptoError reports a failed encryption or decryption. Its message is
// generic; the underlying cause is kept for diagnostics and is reachable
// through errors.Unwrap.
type CryptoError struct {
	Op  string // "encrypt" or "decrypt"
	Err error
}

func (e *CryptoError) Error() string {
	if e.Op == "encrypt" {
		return encryptionMessage
	}
	return decryptionMessage
}

func (e *CryptoError) Unwrap() error { return e.Err }

func (e *CryptoError) Is(target error) bool { return target == ErrCrypto }

func decryptError(err error) error { return &CryptoError{Op: "decrypt", Err: err} }

func encryptError(err error) error { return &CryptoError{Op: "encrypt", Err: err} }
