package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
	"github.com/snippetlab/auth/internal/auth/store"
	"github.com/snippetlab/auth/internal/auth/store/drivers/sqlite"
	"github.com/snippetlab/auth/pkg/cryptox"
	"github.com/snippetlab/auth/pkg/idx"
	"github.com/snippetlab/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.NewCodec(bytes.Repeat([]byte("k"), 64), "test-issuer", 30*time.Minute, 14*24*time.Hour)
	require.NoError(t, err)
	return codec
}

func createTestUser(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := domain.User{
		ID:          idx.New().String(),
		Email:       email,
		DisplayName: "Test User",
		Status:      domain.StatusActive,
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

func createTestCredential(t *testing.T, st store.Store, userID, password string) {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, st.Credentials().CreateCredential(context.Background(), domain.LocalCredential{
		UserID:            userID,
		PasswordHash:      hash,
		PasswordUpdatedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}))
}

func TestIssueSessionStoresFingerprintOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "test-agent", "203.0.113.9", now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	session, err := st.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID)
	require.False(t, session.Revoked)
	require.NotEqual(t, pair.RefreshToken, session.RefreshTokenHash)
	require.Equal(t, "test-agent", session.UserAgent)
	require.Equal(t, "203.0.113.9", session.IPAddress)
}

func TestRefreshAccessDoesNotRotate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "", "", now)
	require.NoError(t, err)

	refreshed, err := svc.RefreshAccess(ctx, pair.RefreshToken, now.Add(time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	// The same refresh token keeps working: no rotation, no row mutation.
	again, err := svc.RefreshAccess(ctx, pair.RefreshToken, now.Add(2*time.Minute))
	require.NoError(t, err)
	require.NotEmpty(t, again.AccessToken)

	count, err := st.Sessions().CountValidUserSessions(ctx, user.ID, now.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestRefreshAccessRejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	codec := newTestCodec(t)
	svc := &TokenService{Codec: codec, Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	// Authentic token that was never issued through a session.
	orphan, _, err := codec.IssueRefresh(user.ID, now)
	require.NoError(t, err)

	_, err = svc.RefreshAccess(ctx, orphan, now)
	require.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshAccessRejectsEmptyToken(t *testing.T) {
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	_, err := svc.RefreshAccess(context.Background(), "  ", time.Now())
	require.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshAccessRejectsGarbage(t *testing.T) {
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	_, err := svc.RefreshAccess(context.Background(), "not-a-token", time.Now())
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshAccessRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	codec := newTestCodec(t)
	svc := &TokenService{Codec: codec, Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "", "", now)
	require.NoError(t, err)

	_, err = svc.RefreshAccess(ctx, pair.AccessToken, now)
	require.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshAccessRejectsRevokedSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "", "", now)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken, now))

	_, err = svc.RefreshAccess(ctx, pair.RefreshToken, now)
	require.ErrorIs(t, err, ErrRevokedRefreshToken)
}

func TestRefreshAccessTokenExpiryBeatsStoreState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Short refresh TTL so the token's own expiry lapses quickly.
	codec, err := jwtx.NewCodec(bytes.Repeat([]byte("k"), 64), "test-issuer", 30*time.Minute, time.Minute)
	require.NoError(t, err)
	svc := &TokenService{Codec: codec, Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "", "", now)
	require.NoError(t, err)

	// Revoke the row, then present the token after its embedded expiry.
	// Token-embedded state is checked first, so expiry wins over revoked.
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken, now))

	_, err = svc.RefreshAccess(ctx, pair.RefreshToken, now.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	codec := newTestCodec(t)
	svc := &TokenService{Codec: codec, Store: st}

	user := createTestUser(t, st, "alice@example.com")
	now := time.Now().UTC()

	pair, err := svc.IssueSession(ctx, user, "", "", now)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken, now))
	require.NoError(t, svc.Logout(ctx, pair.RefreshToken, now)) // already revoked
	require.NoError(t, svc.Logout(ctx, "", now))                // no token at all

	unknown, _, err := codec.IssueRefresh(user.ID, now)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, unknown, now)) // never stored
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	other := createTestUser(t, st, "bob@example.com")
	now := time.Now().UTC()

	for range 3 {
		_, err := svc.IssueSession(ctx, user, "", "", now)
		require.NoError(t, err)
	}
	otherPair, err := svc.IssueSession(ctx, other, "", "", now)
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, user.ID))

	count, err := st.Sessions().CountValidUserSessions(ctx, user.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	// Other users' sessions are untouched.
	_, err = svc.RefreshAccess(ctx, otherPair.RefreshToken, now)
	require.NoError(t, err)

	// Zero remaining rows is still a success.
	require.NoError(t, svc.LogoutAll(ctx, user.ID))
}

func TestAuthenticateLocalHappyPath(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	createTestCredential(t, st, user.ID, "correct horse battery")
	now := time.Now().UTC()

	pair, err := svc.AuthenticateLocal(ctx, "alice@example.com", "correct horse battery", "", "", now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	cred, err := st.Credentials().GetCredentialByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, cred.FailedLoginCount)
	require.NotNil(t, cred.LastLoginAt)
}

func TestAuthenticateLocalLockout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	user := createTestUser(t, st, "alice@example.com")
	createTestCredential(t, st, user.ID, "right-password")
	now := time.Now().UTC()

	for i := range domain.LockThreshold {
		_, err := svc.AuthenticateLocal(ctx, "alice@example.com", "wrong-password", "", "", now)
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// Locked now, even with the right password.
	_, err := svc.AuthenticateLocal(ctx, "alice@example.com", "right-password", "", "", now)
	require.ErrorIs(t, err, ErrAccountLocked)

	// Past the lock window the lock lazily clears and login succeeds.
	later := now.Add(domain.LockDuration + time.Minute)
	pair, err := svc.AuthenticateLocal(ctx, "alice@example.com", "right-password", "", "", later)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	cred, err := st.Credentials().GetCredentialByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, cred.FailedLoginCount)
	require.Nil(t, cred.LockedUntil)
}

func TestAuthenticateLocalUnknownUser(t *testing.T) {
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	_, err := svc.AuthenticateLocal(context.Background(), "nobody@example.com", "pw", "", "", time.Now())
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLocalInactiveUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &TokenService{Codec: newTestCodec(t), Store: st}

	now := time.Now().UTC()
	user := domain.User{
		ID:          idx.New().String(),
		Email:       "gone@example.com",
		DisplayName: "Gone",
		Status:      domain.StatusSuspended,
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))
	createTestCredential(t, st, user.ID, "pw")

	_, err := svc.AuthenticateLocal(ctx, "gone@example.com", "pw", "", "", now)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
