package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("abcabcabc")
	require.NoError(t, err)
	assert.NotEqual(t, "abcabcabc", hash)
	assert.Contains(t, hash, "$2a$")

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{name: "Correct password", hash: hash, password: "abcabcabc", want: true},
		{name: "Wrong password", hash: hash, password: "abcabcabd", want: false},
		{name: "Empty password", hash: hash, password: "", want: false},
		{name: "Invalid hash", hash: "not-a-hash", password: "abcabcabc", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	hash1, err := HashPassword("pw432joij")
	require.NoError(t, err)
	hash2, err := HashPassword("pw432joij")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, VerifyPassword(hash1, "pw432joij"))
	assert.True(t, VerifyPassword(hash2, "pw432joij"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		want     error
	}{
		{name: "Acceptable", password: "abcabcabc", email: "user@domain.com", want: nil},
		{name: "Too short", password: "abc123", want: ErrPasswordTooShort},
		{name: "Numeric", password: "1234567890", want: ErrPasswordNumeric},
		{name: "Contains email local part", password: "luke-secret", email: "luke@rebels.org", want: ErrPasswordSimilar},
		{name: "Short local part ignored", password: "abcabcabc", email: "ab@domain.com", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.email)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
