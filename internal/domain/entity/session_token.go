package entity

import "time"

// SessionToken is the opaque bearer credential bound to exactly one user.
type SessionToken struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
