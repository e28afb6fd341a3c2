package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
)

type oauthAccountsRepo struct {
	db dbtx
}

func (r *oauthAccountsRepo) GetOAuthAccount(ctx context.Context, provider domain.Provider, subject string) (domain.OAuthAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_subject, email, email_verified, last_login_at, created_at, updated_at
		 FROM oauth_accounts WHERE provider = $1 AND provider_subject = $2`, string(provider), subject)

	var a domain.OAuthAccount
	var lastLoginAt sql.NullTime
	err := row.Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderSubject, &a.Email,
		&a.EmailVerified, &lastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.OAuthAccount{}, mapNotFound(err)
	}
	a.LastLoginAt = mapNullTimePtr(lastLoginAt)
	return a, nil
}

func (r *oauthAccountsRepo) CreateOAuthAccount(ctx context.Context, a domain.OAuthAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO oauth_accounts (id, user_id, provider, provider_subject, email, email_verified, last_login_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, string(a.Provider), a.ProviderSubject, a.Email, a.EmailVerified,
		mapOptionalTime(a.LastLoginAt), a.CreatedAt, a.UpdatedAt)
	return mapConstraint(err)
}

func (r *oauthAccountsRepo) TouchOAuthAccountLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE oauth_accounts SET last_login_at = $1, updated_at = $2 WHERE id = $3`, at, at, id)
	return err
}
