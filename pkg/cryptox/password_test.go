package cryptox_test

import (
	"strings"
	"testing"

	"github.com/snippetlab/auth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("wrong password", hash), cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSalted(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashPassword("same input")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same input")
	require.NoError(t, err)

	// Random salt means two hashes of the same password differ.
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	t.Parallel()

	err := cryptox.VerifyPassword("password", "not-a-phc-string")
	require.Error(t, err)
	require.NotErrorIs(t, err, cryptox.ErrPasswordMismatch)
}
