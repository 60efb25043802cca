package config

// Config represents the complete pwvault configuration
type Config struct {
	Container         string        `yaml:"container"`
	Catalog           string        `yaml:"catalog"`
	MinPasswordLength int           `yaml:"min_password_length"`
	LogLevel          string        `yaml:"log_level"`
	Backup            BackupConfig  `yaml:"backup"`
	Keyring           KeyringConfig `yaml:"keyring"`
}

// BackupConfig represents backup-on-write configuration
type BackupConfig struct {
	Enabled bool `yaml:"enabled"`
	// Keep is the number of snapshots retained per container, 0 keeps all.
	Keep int `yaml:"keep"`
}

// KeyringConfig represents OS keyring configuration
type KeyringConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}
