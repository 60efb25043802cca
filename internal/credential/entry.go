package credential

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed    = errors.New("malformed credential data")
	ErrInvalidEntry = errors.New("invalid credential entry")
)

// Entry is a single credential record. Name identifies the entry within a
// collection; the remaining fields are optional and nil means unset.
type Entry struct {
	Name     string  `json:"name"`
	URL      *string `json:"url"`
	User     *string `json:"user"`
	Password *string `json:"password"`
	Notes    *string `json:"notes"`
}

// UnmarshalJSON accepts the older "website" key as an alias for url.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var aux struct {
		plain
		Website *string `json:"website"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Entry(aux.plain)
	if e.URL == nil && aux.Website != nil {
		e.URL = aux.Website
	}
	return nil
}

// Equal reports whether two entries hold the same values, treating nil
// and empty string as different.
func (e Entry) Equal(o Entry) bool {
	return e.Name == o.Name &&
		equalPtr(e.URL, o.URL) &&
		equalPtr(e.User, o.User) &&
		equalPtr(e.Password, o.Password) &&
		equalPtr(e.Notes, o.Notes)
}

// Validate checks the entry on its own.
func (e Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidEntry)
	}
	return nil
}

// String returns a pointer to s, for building entries literally.
func String(s string) *string {
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
