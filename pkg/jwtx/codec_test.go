package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/snippetlab/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", 64))

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(testSecret, "snippet-auth", 30*time.Minute, 14*24*time.Hour)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewCodec([]byte(strings.Repeat("s", 63)), "snippet-auth", 0, 0)
	require.ErrorIs(t, err, jwtx.ErrShortSecret)

	_, err = jwtx.NewCodec(testSecret, "snippet-auth", 0, 0)
	require.NoError(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now().UTC()

	token, expiresAt, err := codec.IssueAccess("01ABCUSER", "a@x.com", "ADMIN", now)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(30*time.Minute), expiresAt, time.Second)

	claims, err := codec.Verify(token, now)
	require.NoError(t, err)
	require.Equal(t, "01ABCUSER", claims.UserID())
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, "snippet-auth", claims.Issuer)
	require.Equal(t, jwtx.TypeAccess, claims.Type)
	require.Equal(t, jwtx.TypeAccess, codec.TypeOf(token))
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now().UTC()

	token, expiresAt, err := codec.IssueRefresh("01ABCUSER", now)
	require.NoError(t, err)
	require.WithinDuration(t, now.Add(14*24*time.Hour), expiresAt, time.Second)

	claims, err := codec.Verify(token, now)
	require.NoError(t, err)
	require.Equal(t, "01ABCUSER", claims.UserID())
	require.Empty(t, claims.Email)
	require.Empty(t, claims.Role)
	require.Equal(t, jwtx.TypeRefresh, claims.Type)
	require.Equal(t, jwtx.TypeRefresh, codec.TypeOf(token))
}

func TestVerifyExpiredStillYieldsClaims(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	issued := time.Now().UTC().Add(-time.Hour)

	token, _, err := codec.IssueAccess("01ABCUSER", "a@x.com", "USER", issued)
	require.NoError(t, err)

	claims, err := codec.Verify(token, time.Now().UTC())
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.Equal(t, "01ABCUSER", claims.UserID())
	require.Equal(t, jwtx.TypeAccess, claims.Type)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	now := time.Now().UTC()

	token, _, err := codec.IssueAccess("01ABCUSER", "a@x.com", "USER", now)
	require.NoError(t, err)

	other, err := jwtx.NewCodec([]byte(strings.Repeat("x", 64)), "snippet-auth", 0, 0)
	require.NoError(t, err)

	_, err = other.Verify(token, now)
	require.ErrorIs(t, err, jwtx.ErrInvalidSignature)

	_, err = codec.Verify("not-a-token", now)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestTypeOfUnknown(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	require.Equal(t, jwtx.TypeUnknown, codec.TypeOf("garbage"))
	require.Equal(t, jwtx.TypeUnknown, codec.TypeOf(""))
}
