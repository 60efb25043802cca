// Package git reports whether a container or its backups are exposed
// through an enclosing git repository.
//
// Checks performed:
//   - Whether the container is tracked by git (should not be)
//   - Whether backup snapshots are tracked by git (should not be)
//   - Whether the container and backup folder are in .gitignore (should be)
//
// Containers are encrypted, but committing them publishes every
// historical version for offline password guessing.
package git
