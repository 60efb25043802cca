package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illarion/pwvault/internal/crypto"
)

// Version identifies a container format
type Version int

const (
	// V1 is insecure: weak key derivation and hard-coded IV and salt.
	V1 Version = 1
	// V2 stores a random IV and salt in a self-describing header.
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1"
	case V2:
		return "V2"
	default:
		return fmt.Sprintf("V%d(unknown)", int(v))
	}
}

var (
	ErrNotV2         = errors.New("not a V2 container")
	ErrNotV1         = errors.New("not a V1 container")
	ErrEncodeVersion = errors.New("only V2 containers can be written")
)

// Header carries the parameters needed to decrypt a body. For V1 it is
// reconstructed from constants.
type Header struct {
	Version Version `json:"version"`
	IV      []byte  `json:"iv"`
	Salt    []byte  `json:"salt"`
}

// Vault is a header plus ciphertext body
type Vault struct {
	Header Header `json:"header"`
	Body   []byte `json:"body"`
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// wireVault uses a pointer so a missing header can be told apart from a
// zero one.
type wireVault struct {
	Header *Header `json:"header"`
	Body   []byte  `json:"body"`
}

// Kind is the outcome of probing container bytes
type Kind int

const (
	KindUnrecognized Kind = iota
	KindV1
	KindV2
)

func (k Kind) String() string {
	switch k {
	case KindV1:
		return "V1"
	case KindV2:
		return "V2"
	default:
		return "unrecognized"
	}
}

// Result is the tagged outcome of Probe. Vault is set for KindV1 and
// KindV2; Reason explains a KindUnrecognized result.
type Result struct {
	Kind   Kind
	Vault  *Vault
	Reason error
}

// Probe classifies raw container bytes. V2 is tried first; bytes that do
// not form a structurally valid V2 document are then interpreted as a raw
// V1 ciphertext blob. Nothing is decrypted here, so a V1 result is only a
// structural match.
func Probe(data []byte) Result {
	v2, errV2 := Decode(data)
	if errV2 == nil {
		return Result{Kind: KindV2, Vault: v2}
	}

	v1, errV1 := decodeLegacy(data)
	if errV1 == nil {
		return Result{Kind: KindV1, Vault: v1}
	}

	return Result{Kind: KindUnrecognized, Reason: errors.Join(errV2, errV1)}
}

// Decode parses V2 container bytes and validates their structure.
func Decode(data []byte) (*Vault, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrNotV2)
	}

	var w wireVault
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotV2, err)
	}
	if w.Header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrNotV2)
	}

	v := &Vault{Header: *w.Header, Body: w.Body}
	if err := v.validate(V2); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotV2, err)
	}
	return v, nil
}

// decodeLegacy treats the whole input as V1 ciphertext. The only
// structural requirement is a positive multiple of the AES block size.
func decodeLegacy(data []byte) (*Vault, error) {
	if len(data) == 0 || len(data)%crypto.BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d",
			ErrNotV1, len(data), crypto.BlockSize)
	}
	return &Vault{
		Header: legacyHeader(),
		Body:   append([]byte(nil), data...),
	}, nil
}

// Encode serializes a V2 vault to its on-disk JSON form.
func Encode(v *Vault) ([]byte, error) {
	if v == nil {
		return nil, errors.New("nil vault")
	}
	if v.Header.Version != V2 {
		return nil, fmt.Errorf("%w: got %s", ErrEncodeVersion, v.Header.Version)
	}
	if err := v.validate(V2); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vault: %w", err)
	}
	return data, nil
}

func (v *Vault) validate(want Version) error {
	if v.Header.Version != want {
		return fmt.Errorf("unsupported version %d", int(v.Header.Version))
	}
	if len(v.Header.IV) != crypto.IVSize {
		return fmt.Errorf("iv must be %d bytes, got %d", crypto.IVSize, len(v.Header.IV))
	}
	if len(v.Header.Salt) != crypto.SaltSize {
		return fmt.Errorf("salt must be %d bytes, got %d", crypto.SaltSize, len(v.Header.Salt))
	}
	if len(v.Body) == 0 || len(v.Body)%crypto.BlockSize != 0 {
		return fmt.Errorf("body length %d is not a positive multiple of %d", len(v.Body), crypto.BlockSize)
	}
	return nil
}
