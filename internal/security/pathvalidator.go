package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	ErrPathEscapes  = errors.New("path escapes directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrNotFlat      = errors.New("nested paths are not allowed")
)

// PathValidator confines file operations to a single flat directory
// using Go's os.Root API. Backups are written through it so a crafted
// container name can never place a snapshot outside its backup folder.
type PathValidator struct {
	root *os.Root
	dir  string
}

// New opens dir as the confinement root. The directory must exist.
func New(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory root: %w", err)
	}

	return &PathValidator{
		root: root,
		dir:  absPath,
	}, nil
}

// Close releases resources held by the PathValidator.
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Dir returns the absolute path of the root directory
func (pv *PathValidator) Dir() string {
	return pv.dir
}

// ValidateName checks that name is a plain file name directly inside the
// root. It rejects:
// - Empty names
// - Absolute paths
// - Names that escape the root (using ..)
// - Names with directory components
// - Windows reserved names (via filepath.IsLocal)
func (pv *PathValidator) ValidateName(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(name) {
		if filepath.IsAbs(name) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, name)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, name)
	}

	clean := filepath.Clean(name)
	if clean != filepath.Base(clean) {
		return "", fmt.Errorf("%w: %s", ErrNotFlat, name)
	}
	return clean, nil
}

// CreateFileInRoot writes data to a new file name inside the root. An
// existing file is never replaced; the error then matches fs.ErrExist.
func (pv *PathValidator) CreateFileInRoot(name string, data []byte, perm os.FileMode) error {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.OpenFile(clean, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		pv.root.Remove(clean)
		return err
	}
	if err := f.Close(); err != nil {
		pv.root.Remove(clean)
		return err
	}
	return nil
}

// StatInRoot stats name inside the root.
func (pv *PathValidator) StatInRoot(name string) (os.FileInfo, error) {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Stat(clean)
}

// RemoveInRoot removes name from inside the root.
func (pv *PathValidator) RemoveInRoot(name string) error {
	clean, err := pv.ValidateName(name)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Remove(clean)
}

// ReadDirInRoot lists the root directory
func (pv *PathValidator) ReadDirInRoot() ([]fs.DirEntry, error) {
	return fs.ReadDir(pv.root.FS(), ".")
}
