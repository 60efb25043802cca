package config

import (
	"fmt"
	"strings"
)

// MinPasswordFloor is the lowest accepted min_password_length
const MinPasswordFloor = 1

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Container) == "" {
		errors = append(errors, ValidationError{
			Path:    "container",
			Message: "must not be empty",
		})
	}

	if strings.TrimSpace(c.Catalog) == "" {
		errors = append(errors, ValidationError{
			Path:    "catalog",
			Message: "must not be empty",
		})
	}

	if c.MinPasswordLength < MinPasswordFloor {
		errors = append(errors, ValidationError{
			Path:    "min_password_length",
			Message: fmt.Sprintf("must be at least %d, got %d", MinPasswordFloor, c.MinPasswordLength),
		})
	}

	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, ValidationError{
			Path:    "log_level",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validLogLevels, c.LogLevel),
		})
	}

	if c.Backup.Keep < 0 {
		errors = append(errors, ValidationError{
			Path:    "backup.keep",
			Message: fmt.Sprintf("must not be negative, got %d", c.Backup.Keep),
		})
	}

	return errors
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
