// Package backup snapshots a container file into a sibling folder before
// it is overwritten.
//
// For a container at /home/u/passwords.vault the snapshots live in
// /home/u/passwords_Backup/ and are named passwords_20240131235959.vault,
// using the local time of the copy.
package backup
