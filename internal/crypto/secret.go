package crypto

import (
	"errors"
	"fmt"

	"github.com/awnumar/memguard"
)

var ErrSecretDestroyed = errors.New("secret destroyed")

// Secret keeps a master password sealed in a memguard enclave between
// the moment it is read and the moment a vault operation needs it.
type Secret struct {
	enclave *memguard.Enclave
}

// NewSecret seals b into an enclave. b is wiped by memguard.
func NewSecret(b []byte) *Secret {
	if len(b) == 0 {
		return &Secret{}
	}
	return &Secret{enclave: memguard.NewEnclave(b)}
}

// Use opens the enclave, hands the plaintext to fn and destroys the
// opened buffer afterwards. fn must not retain the slice.
func (s *Secret) Use(fn func(password []byte) error) error {
	if s == nil {
		return ErrSecretDestroyed
	}
	if s.enclave == nil {
		return fn(nil)
	}

	buf, err := s.enclave.Open()
	if err != nil {
		return fmt.Errorf("opening password enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Empty reports whether the secret holds no bytes.
func (s *Secret) Empty() bool {
	return s == nil || s.enclave == nil
}
