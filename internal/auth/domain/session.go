package domain

import "time"

// Session is the server-side revocable record backing a refresh token. Only
// the SHA-256 fingerprint of the token is stored, never the token itself.
//
// Revoked is one-way: it flips false to true and never back. Rows are only
// physically removed by the expiry sweep.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	Revoked          bool
	UserAgent        string // audit metadata
	IPAddress        string // audit metadata, never an authorization input
	CreatedAt        time.Time
}

// Expired reports whether the session's own expiry has lapsed. This is
// independent of the token's embedded expiry; the store is authoritative
// for revocation state.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Valid reports whether the session can still mint access tokens.
func (s Session) Valid(now time.Time) bool {
	return !s.Revoked && !s.Expired(now)
}
