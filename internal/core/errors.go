package core

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("container already exists")
	ErrUnrecognizedFormat = errors.New("unrecognized container format")
	ErrPasswordRequired   = errors.New("password required")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordUnchanged  = errors.New("new password is the same as the current one")
)

// DataAccessError reports a failure to read, create or save a container
// that is not a cryptographic failure.
type DataAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *DataAccessError) Error() string {
	switch e.Op {
	case "read":
		return fmt.Sprintf("could not read data from file %q: %v", e.Path, e.Err)
	case "create":
		return fmt.Sprintf("could not create file %q: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("could not save data to file %q: %v", e.Path, e.Err)
	}
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func readError(path string, err error) error {
	return &DataAccessError{Op: "read", Path: path, Err: err}
}

func saveError(path string, err error) error {
	return &DataAccessError{Op: "save", Path: path, Err: err}
}
