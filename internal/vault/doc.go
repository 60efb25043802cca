// Package vault implements the versioned encrypted container.
//
// Two formats exist:
//   - V1 (legacy, read only): the file is raw AES-256-CBC ciphertext. IV,
//     salt and the 16 PBKDF2 rounds are fixed constants and never stored.
//   - V2 (current): the file is UTF-8 JSON holding a header (version, IV,
//     salt) and the base64 ciphertext body. IV and salt are random per
//     encryption and the key is derived with 600,000 PBKDF2 rounds.
//
// Probe classifies raw file bytes as V2, V1 or unrecognized without
// decrypting anything. Codec always encrypts V2 and decrypts either
// version, so every save of a legacy container upgrades it.
package vault
