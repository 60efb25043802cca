package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/illarion/pwvault/internal/backup"
	"github.com/illarion/pwvault/internal/config"
	"github.com/illarion/pwvault/internal/core"
	"github.com/illarion/pwvault/internal/credential"
	"github.com/illarion/pwvault/internal/crypto"
	"github.com/illarion/pwvault/internal/keyring"
	"github.com/illarion/pwvault/internal/logging"
	"github.com/illarion/pwvault/internal/storage"
	"github.com/illarion/pwvault/internal/vault"
)

// codecOptions tune the container codec; tests lower the iteration count.
var codecOptions []vault.Option

// errKeyringPassword marks a wrong password that came from the keyring
var errKeyringPassword = errors.New("password stored in keyring does not open this container")

// session bundles what every command needs: configuration, the resolved
// container path and the wired services
type session struct {
	cfg     config.Config
	path    string
	logger  zerolog.Logger
	catalog *storage.Catalog
	backups *backup.Service
	svc     *core.Service
}

func openSession() (*session, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		path:   cfg.Container,
		logger: logger,
	}
	if flagFile != "" {
		s.path = flagFile
	}

	s.backups = backup.New(
		backup.WithLogger(logger),
		backup.WithRetention(cfg.Backup.Keep),
	)

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithCodec(vault.NewCodec(codecOptions...)),
	}
	if cfg.Backup.Enabled {
		opts = append(opts, core.WithBackup(s.backups))
	} else {
		opts = append(opts, core.WithBackup(nil))
	}

	// The catalog only holds bookkeeping; a locked or broken catalog must
	// not keep anyone out of their passwords.
	catalog, err := storage.Open(cfg.Catalog)
	if err != nil {
		logger.Warn().Err(err).Str("catalog", cfg.Catalog).Msg("catalog unavailable")
	} else {
		s.catalog = catalog
		opts = append(opts, core.WithJournal(catalog))
	}

	s.svc = core.NewService(opts...)
	return s, nil
}

func (s *session) Close() {
	if s.catalog != nil {
		s.catalog.Close()
	}
}

// containerID returns the catalog ID of the current container, if known
func (s *session) containerID() (string, bool) {
	if s.catalog == nil {
		return "", false
	}
	rec, err := s.catalog.Container(s.path)
	if err != nil {
		return "", false
	}
	return rec.ID, true
}

// passwordSource tells where a master password came from
type passwordSource int

const (
	fromEnv passwordSource = iota
	fromKeyring
	fromPrompt
)

// masterPassword retrieves the master password from the environment, the
// OS keyring or the terminal, in that order. The returned secret holds
// the password in a memguard enclave.
func (s *session) masterPassword(prompt string) (*crypto.Secret, passwordSource, error) {
	// Try environment variable first
	if password := core.GetPasswordFromEnv(); password != nil {
		return crypto.NewSecret(password), fromEnv, nil
	}

	if s.cfg.Keyring.Enabled {
		if id, ok := s.containerID(); ok {
			password, err := keyring.GetPassword(id)
			if err == nil {
				s.logger.Debug().Str("container", s.path).Msg("using password from keyring")
				return crypto.NewSecret(password), fromKeyring, nil
			}
			if !errors.Is(err, keyring.ErrNotFound) {
				s.logger.Debug().Err(err).Msg("keyring unavailable")
			}
		}
	}

	// Prompt user
	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, fromPrompt, err
	}
	if len(password) == 0 {
		return nil, fromPrompt, core.ErrPasswordRequired
	}
	return crypto.NewSecret(password), fromPrompt, nil
}

// newMasterPassword retrieves the password for a new container:
// PWVAULT_PASSWORD first, then a confirmed prompt
func (s *session) newMasterPassword() (*crypto.Secret, error) {
	return s.confirmedPassword(core.GetPasswordFromEnv())
}

// replacementPassword retrieves the new password for a password change.
// It reads PWVAULT_NEW_PASSWORD, never PWVAULT_PASSWORD, which still holds
// the current password.
func (s *session) replacementPassword() (*crypto.Secret, error) {
	return s.confirmedPassword(core.GetNewPasswordFromEnv())
}

// confirmedPassword length-checks a password taken from the environment,
// or prompts twice when there is none
func (s *session) confirmedPassword(password []byte) (*crypto.Secret, error) {
	if password != nil {
		if err := core.CheckPasswordLength(password, s.cfg.MinPasswordLength); err != nil {
			crypto.ClearBytes(password)
			return nil, err
		}
		return crypto.NewSecret(password), nil
	}

	password, err := core.ReadPasswordConfirm(s.cfg.MinPasswordLength)
	if err != nil {
		return nil, err
	}
	return crypto.NewSecret(password), nil
}

// openedContainer is a decrypted container together with the password
// that opened it
type openedContainer struct {
	entries  credential.Collection
	detected core.Detected
	secret   *crypto.Secret
}

// requireContainer fails with a hint when there is no container yet
func (s *session) requireContainer() error {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no container at %s (run 'pwvault init' to create one)", s.path)
		}
		return err
	}
	return nil
}

// explainPasswordError marks a decryption failure with a keyring password
// as a stale keyring entry
func explainPasswordError(source passwordSource, err error) error {
	if source == fromKeyring && errors.Is(err, vault.ErrCrypto) {
		return fmt.Errorf("%w: %w", errKeyringPassword, err)
	}
	return err
}

// open asks for the master password and decrypts the container. Key
// derivation runs on a background goroutine so an interrupt returns
// immediately.
func (s *session) open(ctx context.Context) (*openedContainer, error) {
	if err := s.requireContainer(); err != nil {
		return nil, err
	}

	secret, source, err := s.masterPassword("Master password: ")
	if err != nil {
		return nil, err
	}

	async := core.NewAsync(s.svc)
	var results <-chan core.ReadResult
	if err := secret.Use(func(password []byte) error {
		results = async.ReadAsync(core.AccessRequest{Path: s.path, Password: password})
		return nil
	}); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, explainPasswordError(source, res.Err)
		}
		return &openedContainer{
			entries:  res.Collection,
			detected: res.Detected,
			secret:   secret,
		}, nil
	}
}

// save writes entries back with the password that opened the container.
// A save in progress is never abandoned.
func (s *session) save(oc *openedContainer) error {
	async := core.NewAsync(s.svc)
	var done <-chan error
	if err := oc.secret.Use(func(password []byte) error {
		done = async.WriteAsync(core.AccessRequest{Path: s.path, Password: password}, oc.entries, &oc.detected)
		return nil
	}); err != nil {
		return err
	}
	return <-done
}

// HandleError prints err for the user
func HandleError(err error) {
	var dataErr *core.DataAccessError
	switch {
	case errors.Is(err, errKeyringPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
		fmt.Fprintf(os.Stderr, "The password stored in the keyring is outdated, run 'pwvault keyring delete'\n")
	case errors.Is(err, vault.ErrCrypto):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: container already exists\n")
		fmt.Fprintf(os.Stderr, "Use 'pwvault status' to see current state\n")
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Interrupted\n")
	case errors.As(err, &dataErr):
		fmt.Fprintf(os.Stderr, "Error: %s\n", dataErr)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}
