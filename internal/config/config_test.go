package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("FLATPAK_ID", "")
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"ContainerName", filepath.Base(cfg.Container), "passwords.vault"},
		{"CatalogName", filepath.Base(cfg.Catalog), "catalog.db"},
		{"MinPasswordLength", cfg.MinPasswordLength, 8},
		{"LogLevel", cfg.LogLevel, "warn"},
		{"BackupEnabled", cfg.Backup.Enabled, true},
		{"BackupKeep", cfg.Backup.Keep, 0},
		{"KeyringEnabled", cfg.Keyring.Enabled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}

	assert.Empty(t, cfg.Validate())
}

func TestDefaultDataDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".var", "app", "org.example.Vault", "config"))

	t.Run("home directory", func(t *testing.T) {
		t.Setenv("FLATPAK_ID", "")
		assert.Equal(t, home, DefaultDataDir())
	})

	t.Run("flatpak sandbox", func(t *testing.T) {
		t.Setenv("FLATPAK_ID", "org.example.Vault")
		want := filepath.Join(home, ".var", "app", "org.example.Vault", "EncryptedData")
		assert.Equal(t, want, DefaultDataDir())
	})
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
container: /srv/vaults/team.vault
min_password_length: 12
log_level: debug
backup:
  enabled: false
  keep: 5
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/vaults/team.vault", cfg.Container)
	assert.Equal(t, 12, cfg.MinPasswordLength)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 5, cfg.Backup.Keep)
	// untouched keys keep their defaults
	assert.True(t, cfg.Keyring.Enabled)
	assert.Equal(t, "catalog.db", filepath.Base(cfg.Catalog))
}

func TestLoadFromExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "container: ~/secret/passwords.vault\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "secret", "passwords.vault"), cfg.Container)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := writeConfig(t, "container: [unterminated\n")
	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MinPasswordLength)
}

func TestLoadUsesEnvPath(t *testing.T) {
	path := writeConfig(t, "log_level: error\n")
	t.Setenv(EnvConfig, path)

	assert.Equal(t, path, Path())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestValidationReportsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Container = ""
	cfg.MinPasswordLength = 0
	cfg.LogLevel = "loud"
	cfg.Backup.Keep = -1

	errs := cfg.Validate()
	require.Len(t, errs, 4)

	paths := make([]string, 0, len(errs))
	for _, e := range errs {
		paths = append(paths, e.Path)
	}
	assert.ElementsMatch(t, []string{"container", "min_password_length", "log_level", "backup.keep"}, paths)

	path := writeConfig(t, "min_password_length: 0\nlog_level: loud\n")
	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 validation errors")
}
