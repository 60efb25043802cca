// Package keyring caches container master passwords in the OS keyring,
// keyed by the catalog's container ID.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "pwvault"

// ErrNotFound is returned when no password is stored for a container
var ErrNotFound = keyring.ErrNotFound

// SavePassword stores a password in the OS keyring
func SavePassword(containerID string, password []byte) error {
	return keyring.Set(serviceName, containerID, string(password))
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(containerID string) ([]byte, error) {
	secret, err := keyring.Get(serviceName, containerID)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// DeletePassword removes a password from the OS keyring. Deleting a
// password that is not stored is not an error.
func DeletePassword(containerID string) error {
	err := keyring.Delete(serviceName, containerID)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(containerID string) bool {
	_, err := keyring.Get(serviceName, containerID)
	return err == nil
}
