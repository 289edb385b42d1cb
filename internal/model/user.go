// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. Users are never updated or deleted.
type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"-"` // argon2id PHC string, never serialized
	JoinedAt time.Time `json:"joined_at"`
}

// Viewer is the identity attached to a request by the session middleware.
// SessionID is always set; UserID is zero for anonymous visitors.
type Viewer struct {
	SessionID string
	UserID    int64
	Username  string
}

// IsLoggedIn reports whether the viewer has an authenticated session.
func (v *Viewer) IsLoggedIn() bool {
	return v != nil && v.UserID != 0
}
