// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the authorization level of a user account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a registered user account.
//
// WHY PasswordHash HAS json:"-"?
// The struct is encoded directly in API responses. The "-" tag tells
// encoding/json to skip the field entirely, so the bcrypt hash can never
// leak to a client by accident, no matter which handler returns the user.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserDetail is a user with its relations, as returned by GET and
// PUT/PATCH /users/{id}. Todos is always present (possibly []) and
// Profile is null for a user without one.
type UserDetail struct {
	User
	Todos   []Todo   `json:"todos"`
	Profile *Profile `json:"profile"`
}
