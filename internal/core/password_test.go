package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordLength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		min      int
		wantErr  error
	}{
		{"long enough", "12345678", 8, nil},
		{"too short", "1234567", 8, ErrPasswordTooShort},
		{"empty", "", 0, ErrPasswordRequired},
		{"no minimum", "x", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordLength([]byte(tt.password), tt.min)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckPasswordsMatch(t *testing.T) {
	assert.NoError(t, CheckPasswordsMatch([]byte("same"), []byte("same")))
	assert.ErrorIs(t, CheckPasswordsMatch([]byte("same"), []byte("Same")), ErrPasswordMismatch)
}

func TestGetPasswordFromEnv(t *testing.T) {
	t.Setenv(EnvPassword, "")
	assert.Nil(t, GetPasswordFromEnv())

	t.Setenv(EnvPassword, "from env")
	assert.Equal(t, []byte("from env"), GetPasswordFromEnv())
}

func TestGetNewPasswordFromEnv(t *testing.T) {
	t.Setenv(EnvPassword, "current")
	t.Setenv(EnvNewPassword, "")
	assert.Nil(t, GetNewPasswordFromEnv())

	t.Setenv(EnvNewPassword, "replacement")
	assert.Equal(t, []byte("replacement"), GetNewPasswordFromEnv())
	assert.Equal(t, []byte("current"), GetPasswordFromEnv())
}
