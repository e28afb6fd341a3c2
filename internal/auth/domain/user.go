package domain

import "time"

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusDeleted   UserStatus = "DELETED"
)

// UserRole is the coarse authorization role denormalized onto access tokens.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID          string
	Email       string // unique
	DisplayName string
	Status      UserStatus
	Role        UserRole
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether the user may authenticate.
func (u User) Active() bool { return u.Status == StatusActive }
