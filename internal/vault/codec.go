package vault

import (
	"fmt"
	"unicode/utf8"

	"github.com/illarion/pwvault/internal/crypto"
)

// Codec turns plaintext into V2 vaults and vaults of either version back
// into plaintext.
type Codec struct {
	iterations int
	check      func([]byte) bool
}

// Option configures a Codec
type Option func(*Codec)

// WithIterations overrides the V2 PBKDF2 round count. Containers written
// with a non-default count cannot be read by a default Codec; this exists
// to keep tests fast.
func WithIterations(n int) Option {
	return func(c *Codec) {
		c.iterations = n
	}
}

// WithPlaintextCheck replaces the plaintext sanity check run after a
// successful decrypt. The default requires valid UTF-8, which catches the
// rare wrong key that still produces well-formed padding.
func WithPlaintextCheck(fn func([]byte) bool) Option {
	return func(c *Codec) {
		c.check = fn
	}
}

// NewCodec creates a codec with the V2 defaults
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		iterations: CurrentIterations,
		check:      utf8.Valid,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EncryptToVault encrypts data as a V2 vault. Every call draws a new salt
// and IV, so two calls never produce the same vault.
func (c *Codec) EncryptToVault(data, password []byte) (*Vault, error) {
	header, err := freshHeader()
	if err != nil {
		return nil, encryptError(err)
	}

	key := crypto.DeriveKey(password, header.Salt, c.iterations)
	defer crypto.ClearBytes(key)

	body, err := crypto.EncryptCBC(data, key, header.IV)
	if err != nil {
		return nil, encryptError(err)
	}

	return &Vault{Header: header, Body: body}, nil
}

// DecryptFromVault selects the parameter profile from the vault header,
// derives the key and decrypts. All failures are *CryptoError.
func (c *Codec) DecryptFromVault(v *Vault, password []byte) ([]byte, error) {
	if v == nil {
		return nil, decryptError(fmt.Errorf("nil vault"))
	}

	var salt, iv []byte
	var iterations int
	switch v.Header.Version {
	case V1:
		salt, iv, iterations = legacyProfile.salt, legacyProfile.iv, legacyProfile.iterations
	case V2:
		salt, iv, iterations = v.Header.Salt, v.Header.IV, c.iterations
	default:
		return nil, decryptError(fmt.Errorf("unsupported vault version %d", int(v.Header.Version)))
	}

	key := crypto.DeriveKey(password, salt, iterations)
	defer crypto.ClearBytes(key)

	data, err := crypto.DecryptCBC(v.Body, key, iv)
	if err != nil {
		return nil, decryptError(err)
	}
	if c.check != nil && !c.check(data) {
		crypto.ClearBytes(data)
		return nil, decryptError(fmt.Errorf("plaintext failed sanity check"))
	}
	return data, nil
}
