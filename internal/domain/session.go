package domain

import "time"

// Session binds a browser cookie to the identity that logged in.
// Role is captured at login and never re-read from the users table.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	Role      Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
