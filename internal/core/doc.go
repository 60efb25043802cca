// Package core reads and writes encrypted credential containers.
//
// Core operations include:
//   - Read: probe the format (current JSON or legacy raw ciphertext),
//     decrypt and deserialize
//   - Write: snapshot the previous file, then encrypt in the current
//     format and replace the file atomically
//   - CreateContainer/OpenContainer/SaveContainer/ChangePassword:
//     synchronous container-level calls (the CLI uses CreateContainer
//     and ChangePassword, and reads and saves entries through Async)
//
// Legacy containers are upgraded implicitly: every write produces the
// current format. Async moves operations onto a background goroutine for
// callers that must not block.
package core
