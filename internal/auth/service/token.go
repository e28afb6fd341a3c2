package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
	"github.com/snippetlab/auth/internal/auth/store"
	"github.com/snippetlab/auth/pkg/cryptox"
	"github.com/snippetlab/auth/pkg/idx"
	"github.com/snippetlab/auth/pkg/jwtx"
	"github.com/snippetlab/auth/pkg/slogx"

	"github.com/getsentry/sentry-go"
)

// TokenService owns the session token lifecycle: issuing token pairs,
// exchanging refresh tokens for fresh access tokens, and revoking sessions.
type TokenService struct {
	Codec *jwtx.Codec
	Store store.Store
}

// IssueSession mints an access+refresh pair for the user and persists the
// backing session row. Only the refresh token's SHA-256 fingerprint is
// stored. Used by both local and federated logins.
func (s *TokenService) IssueSession(ctx context.Context, user domain.User, userAgent, ipAddress string, now time.Time) (*domain.TokenPair, error) {
	accessToken, _, err := s.Codec.IssueAccess(user.ID, user.Email, string(user.Role), now)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiry, err := s.Codec.IssueRefresh(user.ID, now)
	if err != nil {
		return nil, err
	}

	session := domain.Session{
		ID:               idx.New().String(),
		UserID:           user.ID,
		RefreshTokenHash: cryptox.FingerprintToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		CreatedAt:        now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.Codec.AccessTTL(),
	}, nil
}

// RefreshAccess exchanges a presented refresh token for a new access token.
//
// The refresh token itself is NOT rotated and its session row is not
// mutated: the pair stays bound to the same row until logout or expiry, so
// a client can retry a refresh that failed mid-flight without losing its
// session.
//
// Token-embedded state is checked before store state: a token that is
// expired at the signature level reports expiry even when its row was also
// revoked.
func (s *TokenService) RefreshAccess(ctx context.Context, presented string, now time.Time) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, ErrRefreshTokenNotFound
	}

	claims, err := s.Codec.Verify(presented, now)
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		// Authentic but lapsed. Claims are still populated, so the type
		// check below still applies before reporting expiry.
		if claims.Type != jwtx.TypeRefresh {
			return nil, ErrInvalidTokenType
		}
		return nil, ErrExpiredRefreshToken
	case err != nil:
		return nil, ErrInvalidRefreshToken
	}

	if claims.Type != jwtx.TypeRefresh {
		return nil, ErrInvalidTokenType
	}

	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(presented))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	if session.Revoked {
		return nil, ErrRevokedRefreshToken
	}
	if session.Expired(now) {
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A valid session pointing at a missing user is a data
			// integrity fault, not a client error.
			l.Error("session references missing user",
				slog.String("session_id", session.ID),
				slog.String("user_id", session.UserID))
			sentry.CaptureException(err)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	accessToken, _, err := s.Codec.IssueAccess(user.ID, user.Email, string(user.Role), now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: presented,
		TokenType:    "Bearer",
		ExpiresIn:    s.Codec.AccessTTL(),
	}, nil
}

// Logout revokes the session behind the presented refresh token. It is
// idempotent: a missing, unknown or already-revoked token is a successful
// no-op so clients can always clear local state.
func (s *TokenService) Logout(ctx context.Context, presented string, now time.Time) error {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil
	}
	return s.Store.Sessions().RevokeSession(ctx, cryptox.FingerprintToken(presented))
}

// LogoutAll revokes every session the user holds, in one transaction.
// Revoking zero rows is still a success.
func (s *TokenService) LogoutAll(ctx context.Context, userID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Sessions().RevokeAllUserSessions(ctx, userID)
	})
}

// AuthenticateLocal performs an email+password login with lockout
// enforcement, then issues a session on success.
//
// Lock checks happen before password verification so a locked account
// leaks nothing about whether the password was right. Failure and success
// transitions are computed by the domain and persisted here.
func (s *TokenService) AuthenticateLocal(ctx context.Context, email, password, userAgent, ipAddress string, now time.Time) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active() {
		return nil, ErrInvalidCredentials
	}

	cred, err := s.Store.Credentials().GetCredentialByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Federated-only account, no password to check.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	locked, cred, changed := cred.Locked(now)
	if changed {
		cred.UpdatedAt = now
		if err := s.Store.Credentials().UpdateCredential(ctx, cred); err != nil {
			return nil, err
		}
	}
	if locked {
		l.Info("login rejected, account locked", slog.String("user_id", user.ID))
		return nil, ErrAccountLocked
	}

	if err := cryptox.VerifyPassword(password, cred.PasswordHash); err != nil {
		cred = cred.RecordFailure(now)
		cred.UpdatedAt = now
		if err := s.Store.Credentials().UpdateCredential(ctx, cred); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	cred = cred.RecordSuccess(now)
	cred.UpdatedAt = now
	if err := s.Store.Credentials().UpdateCredential(ctx, cred); err != nil {
		return nil, err
	}

	return s.IssueSession(ctx, user, userAgent, ipAddress, now)
}
