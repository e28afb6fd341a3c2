package postgres

import (
	"context"
	"database/sql"

	"github.com/snippetlab/auth/internal/auth/domain"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredentialByUserID(ctx context.Context, userID string) (domain.LocalCredential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, password_hash, password_updated_at, failed_login_count, locked_until, last_login_at, created_at, updated_at
		 FROM local_credentials WHERE user_id = $1`, userID)

	var c domain.LocalCredential
	var lockedUntil, lastLoginAt sql.NullTime
	err := row.Scan(&c.UserID, &c.PasswordHash, &c.PasswordUpdatedAt, &c.FailedLoginCount,
		&lockedUntil, &lastLoginAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.LocalCredential{}, mapNotFound(err)
	}
	c.LockedUntil = mapNullTimePtr(lockedUntil)
	c.LastLoginAt = mapNullTimePtr(lastLoginAt)
	return c, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.LocalCredential) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO local_credentials (user_id, password_hash, password_updated_at, failed_login_count, locked_until, last_login_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.UserID, c.PasswordHash, c.PasswordUpdatedAt, c.FailedLoginCount,
		mapOptionalTime(c.LockedUntil), mapOptionalTime(c.LastLoginAt), c.CreatedAt, c.UpdatedAt)
	return mapConstraint(err)
}

func (r *credentialsRepo) UpdateCredential(ctx context.Context, c domain.LocalCredential) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE local_credentials
		 SET password_hash = $1, password_updated_at = $2, failed_login_count = $3, locked_until = $4, last_login_at = $5, updated_at = $6
		 WHERE user_id = $7`,
		c.PasswordHash, c.PasswordUpdatedAt, c.FailedLoginCount,
		mapOptionalTime(c.LockedUntil), mapOptionalTime(c.LastLoginAt), c.UpdatedAt, c.UserID)
	return err
}
