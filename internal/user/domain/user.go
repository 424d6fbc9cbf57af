// Package domain holds the user account model.
package domain

import "time"

// User role constants.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a registered user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the result of a successful login or registration.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
