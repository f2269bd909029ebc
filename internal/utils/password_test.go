package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	h1, err := HashPassword("same-password")
	require.NoError(t, err)
	h2, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	_, err := VerifyPassword("pw", "not-a-valid-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("pw", "$bcrypt$v=19$m=1,t=1,p=1$salt$hash")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s1, 32)

	s2, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}
