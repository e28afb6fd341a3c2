package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the minimum signing secret length. HS512 needs at least
// a 64-byte key to deliver its full security margin, so anything shorter is
// rejected at construction time rather than discovered in production.
const MinSecretBytes = 64

var (
	ErrShortSecret = errors.New("jwtx: signing secret must be at least 64 bytes")

	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")

	// ErrExpired is returned together with the parsed claims: an
	// expired-but-authentic token still yields its contents so callers can
	// make decisions off them (e.g. which session row to inspect).
	ErrExpired = errors.New("jwtx: token expired")
)

// Codec issues and verifies signed, self-contained session tokens using a
// single process-wide HS512 secret. Verification is pure and needs no store
// access, which is what makes per-request access token checks stateless.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec validates the secret length and returns a ready codec. A short
// secret is a startup failure, never a per-request error path.
func NewCodec(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("%w: got %d", ErrShortSecret, len(secret))
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Codec{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints a signed access token carrying the denormalized email and
// role claims. Returns the compact token and its expiry instant.
func (c *Codec) IssueAccess(userID, email, role string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.accessTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  role,
		Type:  TypeAccess,
	}
	token, err := c.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// IssueRefresh mints a signed refresh token carrying only the subject. No
// denormalized claims: refresh tokens are resolved against the session store.
func (c *Codec) IssueRefresh(userID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.refreshTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type: TypeRefresh,
	}
	token, err := c.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first, then expiry against now. Signature
// failures report ErrInvalidSignature (or ErrMalformed) with zero claims.
// Expiry failures report ErrExpired but still return the parsed claims.
func (c *Codec) Verify(token string, now time.Time) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		// Expiry is checked manually below so expired tokens still yield
		// their claims, per the codec contract.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, ErrInvalidSignature
		}
	}

	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return claims, ErrExpired
	}
	return claims, nil
}

// TypeOf reports the token's type tag without verifying its signature.
// Unparseable tokens report TypeUnknown.
func (c *Codec) TypeOf(token string) TokenType {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TypeUnknown
	}
	switch claims.Type {
	case TypeAccess, TypeRefresh:
		return claims.Type
	default:
		return TypeUnknown
	}
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	return c.secret, nil
}
