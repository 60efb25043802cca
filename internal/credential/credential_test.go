package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Collection
	}{
		{"empty", NewCollection()},
		{"defaults", Collection{{Name: "Google"}}},
		{"custom values", Collection{{
			Name:     "Google",
			URL:      String("https://mail.google.com"),
			User:     String("john.doe"),
			Password: String("123456**&&"),
			Notes:    String("line one\nline two"),
		}}},
		{"empty strings differ from null", Collection{{
			Name:     "Blank",
			URL:      String(""),
			User:     nil,
			Password: String(""),
			Notes:    nil,
		}}},
		{"two entries keep order", Collection{
			{Name: "Microsoft", URL: String("https://azure.microsoft.com"), User: String("john_doe"), Password: String("654321&&**")},
			{Name: "Google", URL: String("https://mail.google.com"), User: String("john.doe"), Password: String("123456**&&")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.NoError(t, err)

			out, err := Unmarshal(data)
			require.NoError(t, err)
			require.NotNil(t, out)
			assert.True(t, tt.in.Equal(out), "round trip changed the collection:\n%s", data)
		})
	}
}

func TestMarshalWritesExplicitNulls(t *testing.T) {
	data, err := Marshal(Collection{{Name: "Example"}})
	require.NoError(t, err)

	text := string(data)
	for _, key := range []string{`"url": null`, `"user": null`, `"password": null`, `"notes": null`} {
		assert.Contains(t, text, key)
	}

	// Field order is name, url, user, password, notes
	idx := func(s string) int { return strings.Index(text, s) }
	assert.Less(t, idx(`"name"`), idx(`"url"`))
	assert.Less(t, idx(`"url"`), idx(`"user"`))
	assert.Less(t, idx(`"user"`), idx(`"password"`))
	assert.Less(t, idx(`"password"`), idx(`"notes"`))
}

func TestMarshalNilCollection(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestUnmarshalLegacyKeys(t *testing.T) {
	data := []byte(`[{"Name":"Google","Website":"https://mail.google.com","User":"john.doe","Password":"pw","DateAdded":"2024-01-01T15:30:00"}]`)

	c, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, "Google", c[0].Name)
	assert.Equal(t, "https://mail.google.com", Value(c[0].URL))
	assert.Equal(t, "john.doe", Value(c[0].User))
	assert.Nil(t, c[0].Notes)
}

func TestUnmarshalNullIsEmpty(t *testing.T) {
	c, err := Unmarshal([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestUnmarshalMappingLayout(t *testing.T) {
	in := `{"NameToAccountEntryMapping":{
		"Google":{"Name":"Google","Website":"https://mail.google.com","User":"john.doe","Password":"123456**\u0026\u0026","DateAdded":"2024-01-01T15:30:00","DateChanged":null},
		"Amazon":{"Name":"Amazon","Website":null,"User":null,"Password":null,"DateAdded":"2024-01-01T15:30:00","DateChanged":null}}}`

	c, err := Unmarshal([]byte(in))
	require.NoError(t, err)
	require.Len(t, c, 2)

	assert.Equal(t, "Amazon", c[0].Name)
	assert.Nil(t, c[0].URL)
	assert.Equal(t, "Google", c[1].Name)
	assert.Equal(t, "https://mail.google.com", Value(c[1].URL))
	assert.Equal(t, "john.doe", Value(c[1].User))
	assert.Equal(t, "123456**&&", Value(c[1].Password))
	assert.Nil(t, c[1].Notes)

	empty, err := Unmarshal([]byte(`{"NameToAccountEntryMapping":{}}`))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUnmarshalMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"{",
		`{"name":"not an array"}`,
		`[{"name": 42}]`,
		"\x8f\x01\xff binary",
		`[] trailing`,
	}
	for _, in := range inputs {
		_, err := Unmarshal([]byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestCollectionOperations(t *testing.T) {
	c := NewCollection()
	assert.False(t, c.Upsert(Entry{Name: "a", User: String("one")}))
	assert.False(t, c.Upsert(Entry{Name: "b"}))
	assert.True(t, c.Upsert(Entry{Name: "a", User: String("two")}))

	assert.Equal(t, []string{"a", "b"}, c.Names())
	require.NotNil(t, c.Find("a"))
	assert.Equal(t, "two", Value(c.Find("a").User))
	assert.Nil(t, c.Find("A"), "names are case-sensitive")

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, []string{"b"}, c.Names())
}

func TestCollectionValidate(t *testing.T) {
	assert.NoError(t, NewCollection().Validate())
	assert.NoError(t, Collection{{Name: "a"}, {Name: "A"}}.Validate())

	err := Collection{{Name: "a"}, {Name: "a"}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = Collection{{Name: ""}}.Validate()
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestEntryEqualDistinguishesNull(t *testing.T) {
	a := Entry{Name: "x", Notes: nil}
	b := Entry{Name: "x", Notes: String("")}
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(Entry{Name: "x"}))
}
