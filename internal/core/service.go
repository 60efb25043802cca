package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/illarion/pwvault/internal/backup"
	"github.com/illarion/pwvault/internal/credential"
	"github.com/illarion/pwvault/internal/crypto"
	"github.com/illarion/pwvault/internal/vault"
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only
)

// AccessRequest names a container and the password to open it with
type AccessRequest struct {
	Path     string
	Password []byte
	// IsNew marks a container being created; no backup is taken.
	IsNew bool
}

// Detected is what Read learned about the container on disk
type Detected struct {
	Version vault.Version
	Salt    []byte
}

// Backuper snapshots a file before it is overwritten
type Backuper interface {
	Backup(path string) (string, error)
}

// Journal observes successful operations. Its errors are logged and
// never fail the operation.
type Journal interface {
	Opened(path string, version vault.Version) error
	Saved(path string, previous vault.Version) error
	BackedUp(path, snapshot string) error
}

// Accessor reads and writes credential collections
type Accessor interface {
	Read(req AccessRequest) (credential.Collection, Detected, error)
	Write(req AccessRequest, c credential.Collection, prev *Detected) error
}

// Vaults is the container-level API. The CLI creates containers and
// changes passwords through it; interactive reads and saves go through
// Async.
type Vaults interface {
	CreateContainer(path string, password []byte) error
	OpenContainer(path string, password []byte) (credential.Collection, Detected, error)
	SaveContainer(path string, password []byte, c credential.Collection) error
	ChangePassword(path string, oldPassword, newPassword []byte) error
}

// Service reads and writes encrypted containers
type Service struct {
	codec   *vault.Codec
	backup  Backuper
	journal Journal
	logger  zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCodec replaces the default codec
func WithCodec(c *vault.Codec) Option {
	return func(s *Service) {
		s.codec = c
	}
}

// WithBackup sets the backup service; nil disables backups
func WithBackup(b Backuper) Option {
	return func(s *Service) {
		s.backup = b
	}
}

// WithJournal sets the operation observer
func WithJournal(j Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service with the current codec and backups enabled
func NewService(opts ...Option) *Service {
	s := &Service{
		codec:  vault.NewCodec(),
		backup: backup.New(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read loads and decrypts the container named by req. Wrong passwords
// surface as *vault.CryptoError; every other failure is a
// *DataAccessError.
func (s *Service) Read(req AccessRequest) (credential.Collection, Detected, error) {
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, Detected{}, readError(req.Path, err)
	}

	probe := vault.Probe(data)
	if probe.Kind == vault.KindUnrecognized {
		return nil, Detected{}, readError(req.Path, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, probe.Reason))
	}

	plaintext, err := s.codec.DecryptFromVault(probe.Vault, req.Password)
	if err != nil {
		return nil, Detected{}, err
	}
	defer crypto.ClearBytes(plaintext)

	c, err := credential.Unmarshal(plaintext)
	if err != nil {
		return nil, Detected{}, readError(req.Path, err)
	}

	detected := Detected{
		Version: probe.Vault.Header.Version,
		Salt:    append([]byte(nil), probe.Vault.Header.Salt...),
	}

	log := s.logger.With().Str("container", req.Path).Stringer("format", detected.Version).Logger()
	if detected.Version == vault.V1 {
		log.Info().Msg("legacy container opened, next save upgrades it")
	} else {
		log.Debug().Int("entries", len(c)).Msg("container opened")
	}

	if s.journal != nil {
		if err := s.journal.Opened(req.Path, detected.Version); err != nil {
			log.Warn().Err(err).Msg("failed to record open")
		}
	}

	return c, detected, nil
}

// Write encrypts c in the current format and replaces the container
// named by req. Unless req.IsNew the previous file is snapshotted first;
// a failed snapshot is logged and does not stop the save. prev is the
// Detected value of the read that produced c, if any.
func (s *Service) Write(req AccessRequest, c credential.Collection, prev *Detected) error {
	if err := c.Validate(); err != nil {
		return saveError(req.Path, err)
	}

	log := s.logger.With().Str("container", req.Path).Logger()

	if !req.IsNew && s.backup != nil {
		snapshot, err := s.backup.Backup(req.Path)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("backup failed, saving anyway")
		case snapshot != "" && s.journal != nil:
			if err := s.journal.BackedUp(req.Path, snapshot); err != nil {
				log.Warn().Err(err).Msg("failed to record backup")
			}
		}
	}

	plaintext, err := credential.Marshal(c)
	if err != nil {
		return saveError(req.Path, err)
	}
	defer crypto.ClearBytes(plaintext)

	v, err := s.codec.EncryptToVault(plaintext, req.Password)
	if err != nil {
		return err
	}

	data, err := vault.Encode(v)
	if err != nil {
		return saveError(req.Path, err)
	}

	if err := writeFileAtomic(req.Path, data); err != nil {
		return saveError(req.Path, err)
	}

	var previous vault.Version
	if prev != nil {
		previous = prev.Version
	}
	if previous == vault.V1 {
		log.Info().Msg("legacy container upgraded to current format")
	} else {
		log.Debug().Int("entries", len(c)).Msg("container saved")
	}

	if s.journal != nil {
		if err := s.journal.Saved(req.Path, previous); err != nil {
			log.Warn().Err(err).Msg("failed to record save")
		}
	}

	return nil
}

// CreateContainer writes an empty container. It refuses to overwrite an
// existing file.
func (s *Service) CreateContainer(path string, password []byte) error {
	if _, err := os.Stat(path); err == nil {
		return &DataAccessError{Op: "create", Path: path, Err: ErrAlreadyExists}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &DataAccessError{Op: "create", Path: path, Err: err}
	}

	req := AccessRequest{Path: path, Password: password, IsNew: true}
	return s.Write(req, credential.NewCollection(), nil)
}

// OpenContainer reads an existing container
func (s *Service) OpenContainer(path string, password []byte) (credential.Collection, Detected, error) {
	return s.Read(AccessRequest{Path: path, Password: password})
}

// SaveContainer overwrites an existing container with c
func (s *Service) SaveContainer(path string, password []byte, c credential.Collection) error {
	return s.Write(AccessRequest{Path: path, Password: password}, c, nil)
}

// ChangePassword re-encrypts the container under newPassword. The
// container is read with oldPassword first, so a wrong old password
// leaves the file untouched. Reusing the old password is refused with
// ErrPasswordUnchanged.
func (s *Service) ChangePassword(path string, oldPassword, newPassword []byte) error {
	if crypto.ConstantTimeCompare(oldPassword, newPassword) {
		return ErrPasswordUnchanged
	}
	c, detected, err := s.Read(AccessRequest{Path: path, Password: oldPassword})
	if err != nil {
		return err
	}
	return s.Write(AccessRequest{Path: path, Password: newPassword}, c, &detected)
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so a failed write never leaves a truncated container.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermSecure); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(FilePermSecure); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
