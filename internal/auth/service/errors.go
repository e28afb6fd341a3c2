package service

import "errors"

// Sentinel errors for the token lifecycle and login flows. The HTTP layer
// maps these onto status codes and OAuth-style error strings; everything
// else surfaces as an internal fault.
var (
	ErrRefreshTokenNotFound = errors.New("refresh_token_not_found")
	ErrInvalidRefreshToken  = errors.New("invalid_refresh_token")
	ErrInvalidTokenType     = errors.New("invalid_token_type")
	ErrRevokedRefreshToken  = errors.New("revoked_refresh_token")
	ErrExpiredRefreshToken  = errors.New("expired_refresh_token")

	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("account_locked")
)
