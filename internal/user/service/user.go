// Package service implements account registration, login, and profile
// management.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tidegrove/storefront/internal/auth"
	"github.com/tidegrove/storefront/internal/user/domain"
	"github.com/tidegrove/storefront/internal/user/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// EventPublisher publishes user lifecycle events. A nil publisher
// disables eventing.
type EventPublisher interface {
	UserRegistered(ctx context.Context, user *domain.User) error
}

// UserService implements the business logic for account operations.
type UserService struct {
	repo     repository.UserRepository
	jwt      *auth.JWTManager
	producer EventPublisher
	logger   *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(repo repository.UserRepository, jwt *auth.JWTManager, producer EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, jwt: jwt, producer: producer, logger: logger}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a new customer account and returns a session.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Session, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperrors.InvalidInput("email is not valid")
	}
	if input.FirstName == "" {
		return nil, nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, nil, apperrors.InvalidInput("last name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, nil, err
	}

	if s.producer != nil {
		if err := s.producer.UserRegistered(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.registered event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, session, nil
}

// Login authenticates a user by email and password. The same error is
// returned for an unknown email and a wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return user, session, nil
}

// Profile retrieves the user's account.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// UpdateProfileInput holds the parameters for a profile update. Nil
// fields are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// UpdateProfile updates the user's name fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name cannot be empty")
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name cannot be empty")
		}
		user.LastName = *input.LastName
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user.UpdatedAt = time.Now().UTC()
	return user, nil
}

func (s *UserService) newSession(user *domain.User) (*domain.Session, error) {
	token, err := s.jwt.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &domain.Session{Token: token, UserID: user.ID}, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
