// Package repository defines the persistence interface for users.
package repository

import (
	"context"

	"github.com/tidegrove/storefront/internal/user/domain"
)

// UserRepository is the persistence interface for user accounts.
type UserRepository interface {
	// Create inserts a new user, returning ErrAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile updates the user's name fields.
	UpdateProfile(ctx context.Context, user *domain.User) error
}
