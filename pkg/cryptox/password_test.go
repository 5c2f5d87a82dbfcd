package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, VerifyPassword("wrong password", hash), ErrMismatch)
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	err := VerifyPassword("whatever", "$argon2id$v=19$bogus")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrMismatch)
}

func TestDummyHashNeverMatches(t *testing.T) {
	dummy := DummyHash()
	require.ErrorIs(t, VerifyPassword("", dummy), ErrMismatch)
	require.ErrorIs(t, VerifyPassword("guess", dummy), ErrMismatch)
}
