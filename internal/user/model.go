// Package user provides the user domain model, credential storage and account operations.
package user

import "time"

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Group        string    `json:"group"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest holds the fields needed to create an account.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Group    string `json:"group"`
}

// UpdateRequest holds the profile fields a user may change on their own account.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Group    *string `json:"group,omitempty"`
}
