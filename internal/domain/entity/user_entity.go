package entity

import (
	"strings"
	"time"
)

// AccountState is derived from the activation flag; it is never stored.
type AccountState string

const (
	StatePendingActivation AccountState = "pending_activation"
	StateActive            AccountState = "active"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never the plain credential.
type User struct {
	ID        string
	Email     string
	FirstName string
	Password  string
	IsActive  bool
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsStaff reports staff capability. All admins are staff.
func (u *User) IsStaff() bool { return u.IsAdmin }

func (u *User) State() AccountState {
	if u.IsActive {
		return StateActive
	}
	return StatePendingActivation
}

// NormalizeEmail trims and lower-cases an address so uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
