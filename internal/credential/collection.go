package credential

import (
	"fmt"
)

// Collection is the ordered list of entries held by one container.
// Order is kept for display only.
type Collection []Entry

// NewCollection returns an empty, non-nil collection
func NewCollection() Collection {
	return make(Collection, 0)
}

// Find returns the entry with the given name, or nil.
func (c Collection) Find(name string) *Entry {
	for i := range c {
		if c[i].Name == name {
			return &c[i]
		}
	}
	return nil
}

// Upsert replaces the entry with the same name or appends a new one.
// It reports whether an existing entry was replaced.
func (c *Collection) Upsert(entry Entry) bool {
	for i := range *c {
		if (*c)[i].Name == entry.Name {
			(*c)[i] = entry
			return true
		}
	}
	*c = append(*c, entry)
	return false
}

// Remove deletes the entry with the given name
func (c *Collection) Remove(name string) bool {
	for i, e := range *c {
		if e.Name == name {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns entry names in collection order
func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// Validate checks that every entry is valid and names are unique.
// Names are compared case-sensitively.
func (c Collection) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, e := range c {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidEntry, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// Equal compares two collections entry by entry, in order.
func (c Collection) Equal(o Collection) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
