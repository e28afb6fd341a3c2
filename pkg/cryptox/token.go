package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintToken returns a deterministic SHA-256 digest of a token as a
// 64-char lowercase hex string. Sessions store only this digest, so a
// database compromise never yields a usable bearer credential directly.
//
// This is for opaque token storage only; passwords go through the salted
// adaptive hash in password.go.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
