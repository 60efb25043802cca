package vault

import (
	"github.com/illarion/pwvault/internal/crypto"
)

// CurrentIterations is the PBKDF2 round count for V2 containers
// (OWASP recommendation for PBKDF2-HMAC-SHA256).
const CurrentIterations = 600_000

// profile groups the key derivation and cipher parameters of one format
// version. Random profiles draw fresh salt and IV for every encryption.
type profile struct {
	version    Version
	iterations int
	salt       []byte
	iv         []byte
}

// legacyProfile holds the V1 constants. It is reachable only from the
// V1 decrypt path; nothing encrypts with it.
var legacyProfile = profile{
	version:    V1,
	iterations: 16,
	salt: []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16,
	},
	iv: []byte{
		0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x09,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	},
}

// legacyHeader reconstructs the implicit V1 header.
func legacyHeader() Header {
	return Header{
		Version: V1,
		IV:      append([]byte(nil), legacyProfile.iv...),
		Salt:    append([]byte(nil), legacyProfile.salt...),
	}
}

// freshHeader draws a random V2 header
func freshHeader() (Header, error) {
	salt, err := crypto.GenerateRandom(crypto.SaltSize)
	if err != nil {
		return Header{}, err
	}
	iv, err := crypto.GenerateRandom(crypto.IVSize)
	if err != nil {
		return Header{}, err
	}
	return Header{Version: V2, IV: iv, Salt: salt}, nil
}
