package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidegrove/storefront/internal/user/domain"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

func newTestRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.User{
		ID:           "user-001",
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		FirstName:    "Ada",
		LastName:     "Rivers",
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRows(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"role", "is_active", "created_at", "updated_at",
	}).AddRow(
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
}

func TestUserRepository_Create_Success(t *testing.T) {
	repo, mock := newTestRepo(t)

	u := sampleUser()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newTestRepo(t)

	u := sampleUser()
	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_CaseInsensitive(t *testing.T) {
	repo, mock := newTestRepo(t)

	u := sampleUser()
	mock.ExpectQuery("SELECT(.+)FROM users WHERE lower\\(email\\) = lower\\(\\$1\\)").
		WithArgs("Ada@Example.COM").
		WillReturnRows(userRows(u))

	got, err := repo.GetByEmail(context.Background(), "Ada@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT(.+)FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(userRows(sampleUser()).RowError(0, errors.New("no rows")))

	mock.ExpectQuery("SELECT(.+)FROM users WHERE id").
		WithArgs("missing2").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "password_hash", "first_name", "last_name",
			"role", "is_active", "created_at", "updated_at",
		}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.Error(t, err)

	_, err = repo.GetByID(context.Background(), "missing2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	u := sampleUser()
	mock.ExpectExec("UPDATE users").
		WithArgs(u.FirstName, u.LastName, pgxmock.AnyArg(), u.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateProfile(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
