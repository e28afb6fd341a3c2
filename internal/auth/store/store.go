package store

import (
	"context"
	"errors"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	Credentials() Credentials
	Sessions() Sessions
	OAuthAccounts() OAuthAccounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: committed when fn returns
	// nil, rolled back otherwise. Multi-step operations (logout-all,
	// federated create-or-link) must run through here so they either fully
	// commit or fully roll back.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used for local login and cross-provider account
	// merge by email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type Credentials interface {
	// GetCredentialByUserID returns the local credential, including its
	// lock state, for a user.
	GetCredentialByUserID(ctx context.Context, userID string) (domain.LocalCredential, error)

	// CreateCredential inserts a new local credential row.
	CreateCredential(ctx context.Context, c domain.LocalCredential) error

	// UpdateCredential persists counter/lock/last-login transitions
	// produced by the domain state functions.
	UpdateCredential(ctx context.Context, c domain.LocalCredential) error
}

type Sessions interface {
	// CreateSession stores a new session record (refresh token hash only).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session by its SHA-256 fingerprint.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// RevokeSession flips revoked for the matching row. Revoking an
	// already-revoked or missing row is a no-op.
	RevokeSession(ctx context.Context, hash string) error

	// RevokeAllUserSessions bulk-flips every non-revoked row for a user.
	RevokeAllUserSessions(ctx context.Context, userID string) error

	// CountValidUserSessions counts non-revoked, non-expired rows.
	CountValidUserSessions(ctx context.Context, userID string, now time.Time) (int64, error)

	// DeleteExpiredSessions is the housekeeping sweep.
	DeleteExpiredSessions(ctx context.Context, before time.Time) error
}

type OAuthAccounts interface {
	// GetOAuthAccount resolves a (provider, subject) pair to its linkage.
	GetOAuthAccount(ctx context.Context, provider domain.Provider, subject string) (domain.OAuthAccount, error)

	// CreateOAuthAccount inserts a linkage row. Returns ErrAlreadyExists
	// on a (provider, subject) uniqueness violation; concurrent first
	// logins use that as the arbiter.
	CreateOAuthAccount(ctx context.Context, a domain.OAuthAccount) error

	// TouchOAuthAccountLogin stamps last_login_at.
	TouchOAuthAccountLogin(ctx context.Context, id string, at time.Time) error
}
