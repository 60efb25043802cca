// Package storage provides the BBolt catalog of known containers.
//
// The catalog uses three buckets:
//   - meta: schema version and creation time
//   - containers: one record per container path (ID, format version,
//     last open/save, migration time)
//   - backups: one nested bucket per container ID holding the snapshot
//     history in sequence order
//
// Nothing stored here is secret, so `pwvault status` and
// `pwvault backups` work without the master password. The container ID
// keys the cached password in the OS keyring.
package storage
