package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Marshal serializes the collection as indented JSON. A nil collection is
// written as an empty array.
func Marshal(c Collection) ([]byte, error) {
	if c == nil {
		c = NewCollection()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entries: %w", err)
	}
	return data, nil
}

// mappingDocument is the early layout: an object keyed by entry name.
// Dates it carried are dropped.
type mappingDocument struct {
	Mapping *map[string]Entry `json:"NameToAccountEntryMapping"`
}

// Unmarshal parses JSON produced by Marshal. A top-level null yields an
// empty collection. The early name-keyed object layout is also accepted;
// its entries come back sorted by name. Any syntax or shape error wraps
// ErrMalformed.
func Unmarshal(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	if trimmed[0] == '{' {
		return unmarshalMapping(trimmed)
	}

	var c Collection
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if c == nil {
		c = NewCollection()
	}
	return c, nil
}

func unmarshalMapping(data []byte) (Collection, error) {
	var doc mappingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Mapping == nil {
		return nil, fmt.Errorf("%w: object without entry mapping", ErrMalformed)
	}

	c := make(Collection, 0, len(*doc.Mapping))
	for name, e := range *doc.Mapping {
		if e.Name == "" {
			e.Name = name
		}
		c = append(c, e)
	}
	sort.Slice(c, func(i, j int) bool { return c[i].Name < c[j].Name })
	return c, nil
}
