package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token with the slot it may be used in. Access tokens
// authorize API calls; refresh tokens only mint new access tokens.
type TokenType string

const (
	TypeAccess  TokenType = "ACCESS"
	TypeRefresh TokenType = "REFRESH"
	TypeUnknown TokenType = ""
)

// Default token TTLs. Services can override these via configuration.
const (
	// DefaultAccessTokenTTL keeps access tokens short-lived since they are
	// stateless and cannot be revoked before expiry.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is days-scale; refresh tokens are additionally
	// checked against server state so a longer lifetime is acceptable.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Claims are the claims embedded in both token types. Email and Role are
// denormalized onto access tokens so per-request authorization needs no
// store lookup; refresh tokens carry only the subject and type.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (access tokens only).
	Email string `json:"email,omitempty"`

	// Role of the authenticated user, e.g. "USER" or "ADMIN" (access tokens only).
	Role string `json:"role,omitempty"`

	// Type is the token slot tag: "ACCESS" or "REFRESH". A token must never
	// be accepted in the other slot.
	Type TokenType `json:"type"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }
