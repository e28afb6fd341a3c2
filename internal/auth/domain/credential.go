package domain

import "time"

// Lockout policy for local-credential logins.
const (
	// LockThreshold is the failed-login count that triggers a lock.
	LockThreshold = 5

	// LockDuration is how long an account stays locked once triggered.
	LockDuration = 30 * time.Minute
)

// LocalCredential is the password record for a user, 1:1 with a User row.
// The lock state lives here: a failed-login counter plus an optional timed
// lock. All transitions are pure; the caller persists the returned value.
// The lock is self-healing on read, so no background sweeper is needed.
type LocalCredential struct {
	UserID            string
	PasswordHash      string // argon2id encoded, never the SHA-256 token digest
	PasswordUpdatedAt time.Time
	FailedLoginCount  int
	LockedUntil       *time.Time
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecordFailure increments the failure counter and, once it reaches
// LockThreshold, sets the timed lock.
func (c LocalCredential) RecordFailure(now time.Time) LocalCredential {
	c.FailedLoginCount++
	if c.FailedLoginCount >= LockThreshold {
		until := now.Add(LockDuration)
		c.LockedUntil = &until
	}
	return c
}

// RecordSuccess resets the counter, clears any lock and stamps last login.
func (c LocalCredential) RecordSuccess(now time.Time) LocalCredential {
	c.FailedLoginCount = 0
	c.LockedUntil = nil
	c.LastLoginAt = &now
	return c
}

// Locked reports the lock status at now. A lapsed lock is cleared together
// with the failure counter as a side effect of the read; this lazy clear is
// part of the contract, not an optimization. The returned credential must be
// persisted when changed is true.
func (c LocalCredential) Locked(now time.Time) (locked bool, state LocalCredential, changed bool) {
	if c.LockedUntil == nil {
		return false, c, false
	}
	if now.After(*c.LockedUntil) {
		c.LockedUntil = nil
		c.FailedLoginCount = 0
		return false, c, true
	}
	return true, c, false
}
