package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig overrides the configuration file location
	EnvConfig = "PWVAULT_CONFIG"

	configFileName = "config.yaml"
)

// Path returns the configuration file location
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(configDir(), configFileName)
}

// Load loads the configuration from Path. A missing file yields the
// defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, Path()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	}
	return finish(cfg)
}

// LoadFrom loads configuration from a specific file path. The file must
// exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	cfg.Container = expandHome(cfg.Container)
	cfg.Catalog = expandHome(cfg.Catalog)

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("invalid config: %s", formatValidationErrors(validationErrors))
	}
	return cfg, nil
}

// mergeConfigFile decodes the YAML file over cfg; keys absent from the
// file keep their current value.
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func formatValidationErrors(errs []ValidationError) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(errs))
	for _, err := range errs {
		b.WriteString("  - " + err.Error() + "\n")
	}
	return b.String()
}
