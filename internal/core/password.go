package core

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/pwvault/internal/crypto"
)

const (
	// EnvPassword is read before any prompt
	EnvPassword = "PWVAULT_PASSWORD"
	// EnvNewPassword supplies the replacement password for a password
	// change. EnvPassword keeps naming the current one.
	EnvNewPassword = "PWVAULT_NEW_PASSWORD"
)

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a new password twice and ensures they match
// and are at least minLength bytes long
func ReadPasswordConfirm(minLength int) ([]byte, error) {
	password1, err := ReadPassword("Enter new password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	if err := CheckPasswordLength(password1, minLength); err != nil {
		return nil, err
	}

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if err := CheckPasswordsMatch(password1, password2); err != nil {
		return nil, err
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// CheckPasswordLength rejects empty passwords and those shorter than
// minLength
func CheckPasswordLength(password []byte, minLength int) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}
	if len(password) < minLength {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, minLength)
	}
	return nil
}

// CheckPasswordsMatch compares a password with its confirmation
func CheckPasswordsMatch(password, confirmation []byte) error {
	if !crypto.ConstantTimeCompare(password, confirmation) {
		return ErrPasswordMismatch
	}
	return nil
}

// GetPasswordFromEnv reads password from PWVAULT_PASSWORD environment variable
func GetPasswordFromEnv() []byte {
	return passwordFromEnv(EnvPassword)
}

// GetNewPasswordFromEnv reads the replacement password from
// PWVAULT_NEW_PASSWORD
func GetNewPasswordFromEnv() []byte {
	return passwordFromEnv(EnvNewPassword)
}

func passwordFromEnv(name string) []byte {
	password := os.Getenv(name)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, []byte(password))
	return result
}
