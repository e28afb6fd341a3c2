package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordFailureLocksAtThreshold(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cred := LocalCredential{UserID: "u1"}

	for i := 0; i < 4; i++ {
		cred = cred.RecordFailure(now)
		require.Nil(t, cred.LockedUntil, "no lock before threshold")
	}
	require.Equal(t, 4, cred.FailedLoginCount)

	cred = cred.RecordFailure(now)
	require.Equal(t, 5, cred.FailedLoginCount)
	require.NotNil(t, cred.LockedUntil)
	require.Equal(t, now.Add(30*time.Minute), *cred.LockedUntil)

	// A sixth failure inside the window keeps the account locked.
	cred = cred.RecordFailure(now.Add(time.Minute))
	locked, _, _ := cred.Locked(now.Add(2 * time.Minute))
	require.True(t, locked)
}

func TestLockedLazilyClearsLapsedLock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cred := LocalCredential{UserID: "u1"}
	for i := 0; i < 5; i++ {
		cred = cred.RecordFailure(now)
	}

	locked, state, changed := cred.Locked(now.Add(10 * time.Minute))
	require.True(t, locked)
	require.False(t, changed)
	require.Equal(t, 5, state.FailedLoginCount)

	// Past the window the read clears both the lock and the counter.
	locked, state, changed = cred.Locked(now.Add(31 * time.Minute))
	require.False(t, locked)
	require.True(t, changed)
	require.Nil(t, state.LockedUntil)
	require.Zero(t, state.FailedLoginCount)
}

func TestRecordSuccessResetsState(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cred := LocalCredential{UserID: "u1"}
	for i := 0; i < 5; i++ {
		cred = cred.RecordFailure(now)
	}

	cred = cred.RecordSuccess(now.Add(time.Hour))
	require.Zero(t, cred.FailedLoginCount)
	require.Nil(t, cred.LockedUntil)
	require.NotNil(t, cred.LastLoginAt)
	require.Equal(t, now.Add(time.Hour), *cred.LastLoginAt)
}

func TestSessionValidity(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(time.Hour)}

	require.True(t, s.Valid(now))
	require.False(t, s.Valid(now.Add(2*time.Hour)))

	s.Revoked = true
	require.False(t, s.Valid(now))
}

func TestNormalizeIdentityGoogle(t *testing.T) {
	t.Parallel()

	identity, err := NormalizeIdentity(ProviderGoogle, map[string]any{
		"sub":            "abc123",
		"email":          "a@x.com",
		"name":           "Alice",
		"email_verified": true,
	})
	require.NoError(t, err)
	require.Equal(t, ProviderGoogle, identity.Provider)
	require.Equal(t, "abc123", identity.Subject)
	require.Equal(t, "a@x.com", identity.Email)
	require.Equal(t, "Alice", identity.Name)
	require.True(t, identity.EmailVerified)
}

func TestNormalizeIdentityUnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, err := NormalizeIdentity(Provider("KAKAO"), map[string]any{"sub": "x"})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNormalizeIdentityMissingSubject(t *testing.T) {
	t.Parallel()

	_, err := NormalizeIdentity(ProviderGoogle, map[string]any{"email": "a@x.com"})
	require.Error(t, err)
}
