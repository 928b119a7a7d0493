package security

import (
	"strings"
	"testing"

	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple", config.PasswordConfig{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("", config.PasswordConfig{})
	require.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("same password", config.PasswordConfig{})
	require.NoError(t, err)
	second, err := HashPassword("same password", config.PasswordConfig{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	_, err := VerifyPassword("anything", "$not$a$real$hash")
	require.Error(t, err)
}
