package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/snippetlab/auth/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, revoked, user_agent, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.RefreshTokenHash, s.ExpiresAt, s.Revoked,
		mapStringNull(s.UserAgent), mapStringNull(s.IPAddress), s.CreatedAt)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, refresh_token_hash, expires_at, revoked, user_agent, ip_address, created_at
		 FROM sessions WHERE refresh_token_hash = $1`, hash)

	var s domain.Session
	var userAgent, ipAddress sql.NullString
	err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.ExpiresAt, &s.Revoked,
		&userAgent, &ipAddress, &s.CreatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.UserAgent = mapNullString(userAgent)
	s.IPAddress = mapNullString(ipAddress)
	return s, nil
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked = TRUE WHERE refresh_token_hash = $1 AND revoked = FALSE`, hash)
	return err
}

func (r *sessionsRepo) RevokeAllUserSessions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	return err
}

func (r *sessionsRepo) CountValidUserSessions(ctx context.Context, userID string, now time.Time) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2`,
		userID, now)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < $1`, before)
	return err
}
