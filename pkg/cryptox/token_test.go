package cryptox_test

import (
	"testing"

	"github.com/snippetlab/auth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestFingerprintTokenDeterministic(t *testing.T) {
	t.Parallel()

	a := cryptox.FingerprintToken("some-refresh-token")
	b := cryptox.FingerprintToken("some-refresh-token")
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	// Lowercase hex only.
	require.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestFingerprintTokenDistinctInputs(t *testing.T) {
	t.Parallel()

	a := cryptox.FingerprintToken("token-a")
	b := cryptox.FingerprintToken("token-b")
	require.NotEqual(t, a, b)
}
