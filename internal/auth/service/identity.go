package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
	"github.com/snippetlab/auth/internal/auth/store"
	"github.com/snippetlab/auth/pkg/idx"
	"github.com/snippetlab/auth/pkg/slogx"
)

// IdentityService resolves federated login assertions to local users,
// creating users and provider linkages on first contact.
type IdentityService struct {
	Store store.Store
}

// ResolveFederatedLogin maps a normalized provider assertion to a local
// user. Resolution order: existing (provider, subject) linkage, then an
// existing user with the same email (cross-provider merge), then a brand
// new user. Linkage creation and user creation run in one transaction.
//
// Two concurrent first logins for the same subject race on the linkage's
// unique key; the loser retries the lookup once and lands on the winner's
// row.
func (s *IdentityService) ResolveFederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (domain.User, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	user, err := s.resolveOnce(ctx, identity, now)
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("federated linkage race lost, retrying lookup",
			slog.String("provider", string(identity.Provider)),
			slog.String("subject", identity.Subject))
		user, err = s.resolveOnce(ctx, identity, now)
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *IdentityService) resolveOnce(ctx context.Context, identity domain.FederatedIdentity, now time.Time) (domain.User, error) {
	account, err := s.Store.OAuthAccounts().GetOAuthAccount(ctx, identity.Provider, identity.Subject)
	switch {
	case err == nil:
		user, err := s.Store.Users().GetUserByID(ctx, account.UserID)
		if err != nil {
			return domain.User{}, err
		}
		if !user.Active() {
			return domain.User{}, ErrInvalidCredentials
		}
		if err := s.Store.OAuthAccounts().TouchOAuthAccountLogin(ctx, account.ID, now); err != nil {
			return domain.User{}, err
		}
		return user, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, err
	}

	// No linkage yet. Create-or-link inside one transaction so a failure
	// leaves neither a dangling user nor a dangling linkage.
	var resolved domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, identity.Email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user = domain.User{
				ID:          idx.New().String(),
				Email:       identity.Email,
				DisplayName: displayNameFor(identity),
				Status:      domain.StatusActive,
				Role:        domain.RoleUser,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if !user.Active() {
				return ErrInvalidCredentials
			}
		}

		loginAt := now
		account := domain.OAuthAccount{
			ID:              idx.New().String(),
			UserID:          user.ID,
			Provider:        identity.Provider,
			ProviderSubject: identity.Subject,
			Email:           identity.Email,
			EmailVerified:   identity.EmailVerified,
			LastLoginAt:     &loginAt,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.OAuthAccounts().CreateOAuthAccount(ctx, account); err != nil {
			return err
		}

		resolved = user
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return resolved, nil
}

func displayNameFor(identity domain.FederatedIdentity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	return identity.Email
}
