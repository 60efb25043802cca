// Package security confines file writes to a single directory with
// os.Root so that derived file names cannot escape it.
package security
