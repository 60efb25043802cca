package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/pwvault/internal/credential"
)

// ChangeKind classifies an entry difference
type ChangeKind int

const (
	EntryAdded ChangeKind = iota
	EntryRemoved
	EntryChanged
)

func (k ChangeKind) String() string {
	switch k {
	case EntryAdded:
		return "added"
	case EntryRemoved:
		return "removed"
	default:
		return "changed"
	}
}

// FieldChange describes one changed field of an entry. Password values
// are never carried; Old and New are empty for the password field.
type FieldChange struct {
	Field string
	Old   string
	New   string
	// Patch is a line diff, set for notes only
	Patch string
}

// EntryChange describes how one named entry differs
type EntryChange struct {
	Name   string
	Kind   ChangeKind
	Fields []FieldChange
}

// CompareCollections reports how b differs from a, sorted by entry name
func CompareCollections(a, b credential.Collection) []EntryChange {
	var changes []EntryChange

	for _, old := range a {
		cur := b.Find(old.Name)
		if cur == nil {
			changes = append(changes, EntryChange{Name: old.Name, Kind: EntryRemoved})
			continue
		}
		if fields := compareEntries(old, *cur); len(fields) > 0 {
			changes = append(changes, EntryChange{Name: old.Name, Kind: EntryChanged, Fields: fields})
		}
	}

	for _, cur := range b {
		if a.Find(cur.Name) == nil {
			changes = append(changes, EntryChange{Name: cur.Name, Kind: EntryAdded})
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Name < changes[j].Name
	})
	return changes
}

func compareEntries(a, b credential.Entry) []FieldChange {
	var fields []FieldChange

	plain := []struct {
		name string
		a, b *string
	}{
		{"url", a.URL, b.URL},
		{"user", a.User, b.User},
	}
	for _, f := range plain {
		if !samePtr(f.a, f.b) {
			fields = append(fields, FieldChange{Field: f.name, Old: show(f.a), New: show(f.b)})
		}
	}

	if !samePtr(a.Password, b.Password) {
		fields = append(fields, FieldChange{Field: "password"})
	}

	if !samePtr(a.Notes, b.Notes) {
		fields = append(fields, FieldChange{
			Field: "notes",
			Patch: NotesDiff(credential.Value(a.Notes), credential.Value(b.Notes)),
		})
	}

	return fields
}

// NotesDiff generates a line diff of two notes using go-diff.
// Returns an empty string when they are identical.
func NotesDiff(oldNotes, newNotes string) string {
	if oldNotes == newNotes {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(oldNotes, newNotes)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var result strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		default:
			prefix = " "
		}
		for _, line := range splitLines(d.Text) {
			result.WriteString(prefix + line + "\n")
		}
	}
	return result.String()
}

// FormatChanges renders changes as text for the terminal
func FormatChanges(changes []EntryChange) string {
	var b strings.Builder
	for _, c := range changes {
		switch c.Kind {
		case EntryAdded:
			fmt.Fprintf(&b, "+ %s\n", c.Name)
		case EntryRemoved:
			fmt.Fprintf(&b, "- %s\n", c.Name)
		default:
			fmt.Fprintf(&b, "~ %s\n", c.Name)
			for _, f := range c.Fields {
				switch {
				case f.Patch != "":
					fmt.Fprintf(&b, "    %s:\n", f.Field)
					for _, line := range splitLines(f.Patch) {
						fmt.Fprintf(&b, "      %s\n", line)
					}
				case f.Field == "password":
					fmt.Fprintf(&b, "    password: changed\n")
				default:
					fmt.Fprintf(&b, "    %s: %s -> %s\n", f.Field, f.Old, f.New)
				}
			}
		}
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func show(p *string) string {
	if p == nil {
		return "(none)"
	}
	return fmt.Sprintf("%q", *p)
}
