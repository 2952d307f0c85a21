package utils

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	password := gofakeit.Password(true, true, true, false, false, 16)

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)
	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash(password+"x", hash))
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("admin", "admin"))
	assert.False(t, ConstantTimeEqual("admin", "admin2"))
	assert.False(t, ConstantTimeEqual("", "admin"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail(gofakeit.Email()))
	assert.True(t, IsValidEmail("  arbiter@club.example.org "))
	for _, bad := range []string{"", "arbiter", "arbiter@", "@club.org", "arbiter@club"} {
		assert.False(t, IsValidEmail(bad), bad)
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := GenerateSecureToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
