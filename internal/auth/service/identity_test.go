package service

import (
	"context"
	"testing"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
	"github.com/snippetlab/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func googleIdentity(subject, email, name string) domain.FederatedIdentity {
	return domain.FederatedIdentity{
		Provider:      domain.ProviderGoogle,
		Subject:       subject,
		Email:         email,
		Name:          name,
		EmailVerified: true,
	}
}

func TestResolveFederatedLoginFirstContactCreatesUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	user, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-123", "carol@example.com", "Carol"))
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", user.Email)
	require.Equal(t, "Carol", user.DisplayName)
	require.Equal(t, domain.RoleUser, user.Role)
	require.Equal(t, domain.StatusActive, user.Status)

	account, err := st.OAuthAccounts().GetOAuthAccount(ctx, domain.ProviderGoogle, "goog-123")
	require.NoError(t, err)
	require.Equal(t, user.ID, account.UserID)
	require.NotNil(t, account.LastLoginAt)
}

func TestResolveFederatedLoginSecondLoginReusesUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	first, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-123", "carol@example.com", "Carol"))
	require.NoError(t, err)

	second, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-123", "carol@example.com", "Carol"))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestResolveFederatedLoginLinksByEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	existing := createTestUser(t, st, "dave@example.com")

	user, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-456", "dave@example.com", "Dave"))
	require.NoError(t, err)
	require.Equal(t, existing.ID, user.ID)

	account, err := st.OAuthAccounts().GetOAuthAccount(ctx, domain.ProviderGoogle, "goog-456")
	require.NoError(t, err)
	require.Equal(t, existing.ID, account.UserID)
}

func TestResolveFederatedLoginRejectsInactiveUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	now := time.Now().UTC()
	suspended := domain.User{
		ID:          idx.New().String(),
		Email:       "frozen@example.com",
		DisplayName: "Frozen",
		Status:      domain.StatusSuspended,
		Role:        domain.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, suspended))

	_, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-789", "frozen@example.com", "Frozen"))
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveFederatedLoginStampsLastLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	_, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-123", "carol@example.com", "Carol"))
	require.NoError(t, err)

	before, err := st.OAuthAccounts().GetOAuthAccount(ctx, domain.ProviderGoogle, "goog-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = svc.ResolveFederatedLogin(ctx, googleIdentity("goog-123", "carol@example.com", "Carol"))
	require.NoError(t, err)

	after, err := st.OAuthAccounts().GetOAuthAccount(ctx, domain.ProviderGoogle, "goog-123")
	require.NoError(t, err)
	require.True(t, after.LastLoginAt.After(*before.LastLoginAt))
}

func TestResolveFederatedLoginFallsBackToEmailAsName(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &IdentityService{Store: st}

	user, err := svc.ResolveFederatedLogin(ctx, googleIdentity("goog-999", "noname@example.com", ""))
	require.NoError(t, err)
	require.Equal(t, "noname@example.com", user.DisplayName)
}
