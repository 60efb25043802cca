package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key := DeriveKey([]byte("password"), salt, 16)
	require.Len(t, key, KeySize)

	again := DeriveKey([]byte("password"), salt, 16)
	assert.Equal(t, key, again, "derivation must be deterministic")

	other := DeriveKey([]byte("Password"), salt, 16)
	assert.NotEqual(t, key, other)

	moreRounds := DeriveKey([]byte("password"), salt, 17)
	assert.NotEqual(t, key, moreRounds)
}

func TestDeriveKeyKnownVector(t *testing.T) {
	// RFC 7914 section 11, PBKDF2-HMAC-SHA256 test vector (first 32 bytes)
	key := DeriveKey([]byte("passwd"), []byte("salt"), 1)
	want := "55ac046e56e3089fec1691c22544b605f94185216dde0465e68b9d57c20dacbc"
	assert.Equal(t, want, hex.EncodeToString(key))
}

func TestEncryptDecryptCBC(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	iv := bytes.Repeat([]byte{0x24}, IVSize)

	tests := []struct {
		name      string
		plaintext []byte
		wantLen   int
	}{
		{"empty", []byte{}, 16},
		{"short", []byte("plain text"), 16},
		{"block aligned", bytes.Repeat([]byte("a"), 16), 32},
		{"multi block", bytes.Repeat([]byte("b"), 40), 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := EncryptCBC(tt.plaintext, key, iv)
			require.NoError(t, err)
			assert.Len(t, ciphertext, tt.wantLen)

			plaintext, err := DecryptCBC(ciphertext, key, iv)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestDecryptCBCRejectsBadInput(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, KeySize)
	iv := bytes.Repeat([]byte{0x02}, IVSize)

	_, err := DecryptCBC(nil, key, iv)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = DecryptCBC(make([]byte, 17), key, iv)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = DecryptCBC(make([]byte, 16), key[:16], iv)
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = DecryptCBC(make([]byte, 16), key, iv[:8])
	assert.ErrorIs(t, err, ErrInvalidIVSize)
}

func TestDecryptCBCWrongKeyFailsPadding(t *testing.T) {
	iv := bytes.Repeat([]byte{0x07}, IVSize)
	key := DeriveKey([]byte("encryption password"), []byte("fixed-salt-value"), 16)
	wrong := DeriveKey([]byte("decryption password"), []byte("fixed-salt-value"), 16)

	ciphertext, err := EncryptCBC([]byte("plain text, long enough to span blocks"), key, iv)
	require.NoError(t, err)

	// A wrong key passes the padding check roughly once in 256 keys;
	// the output is garbage either way.
	plaintext, err := DecryptCBC(ciphertext, wrong, iv)
	if err == nil {
		assert.NotEqual(t, "plain text, long enough to span blocks", string(plaintext))
		return
	}
	assert.ErrorIs(t, err, ErrInvalidPadding)
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
		wantErr bool
	}{
		{"one byte pad", append(bytes.Repeat([]byte{'x'}, 15), 0x01), bytes.Repeat([]byte{'x'}, 15), false},
		{"full block pad", bytes.Repeat([]byte{0x10}, 16), []byte{}, false},
		{"zero pad byte", append(bytes.Repeat([]byte{'x'}, 15), 0x00), nil, true},
		{"pad larger than block", append(bytes.Repeat([]byte{'x'}, 15), 0x11), nil, true},
		{"inconsistent pad", append(bytes.Repeat([]byte{'x'}, 14), 0x03, 0x02), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unpad(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPadding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateRandom(t *testing.T) {
	a, err := GenerateRandom(SaltSize)
	require.NoError(t, err)
	b, err := GenerateRandom(SaltSize)
	require.NoError(t, err)

	assert.Len(t, a, SaltSize)
	assert.NotEqual(t, a, b)
}

func TestClearBytes(t *testing.T) {
	b := []byte("secret")
	ClearBytes(b)
	assert.Equal(t, make([]byte, 6), b)
}

func TestSecretUse(t *testing.T) {
	s := NewSecret([]byte("master password"))
	require.False(t, s.Empty())

	var seen string
	err := s.Use(func(password []byte) error {
		seen = string(password)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "master password", seen)

	// Enclave can be opened repeatedly
	require.NoError(t, s.Use(func([]byte) error { return nil }))

	empty := NewSecret(nil)
	assert.True(t, empty.Empty())
}
