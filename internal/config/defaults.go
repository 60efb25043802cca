package config

import (
	"os"
	"path/filepath"
)

const (
	appDirName           = "pwvault"
	defaultContainerName = "passwords.vault"
	catalogFileName      = "catalog.db"
	flatpakDataDirName   = "EncryptedData"
)

// DefaultConfig returns the configuration used when no file overrides it
func DefaultConfig() Config {
	return Config{
		Container:         filepath.Join(DefaultDataDir(), defaultContainerName),
		Catalog:           filepath.Join(configDir(), catalogFileName),
		MinPasswordLength: 8,
		LogLevel:          "warn",
		Backup: BackupConfig{
			Enabled: true,
			Keep:    0,
		},
		Keyring: KeyringConfig{
			Enabled: true,
		},
	}
}

// DefaultDataDir returns the directory that holds the default container.
// Inside a Flatpak sandbox the home directory is not persistent, so the
// container goes next to the application data instead.
func DefaultDataDir() string {
	if os.Getenv("FLATPAK_ID") != "" {
		if dataDir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(filepath.Dir(dataDir), flatpakDataDirName)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(dir, appDirName)
}
