package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func userRows(id string, role Role) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow(id, "Test User", "test@example.com", "$2a$10$hash", role, now, now)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, name, email, password_hash, role)")).
		WithArgs(sqlmock.AnyArg(), "Test User", "test@example.com", "$2a$10$hash", RoleTrainee).
		WillReturnRows(userRows("user-1", RoleTrainee))

	created, err := repo.Create(context.Background(), "Test User", "test@example.com", "$2a$10$hash", RoleTrainee)
	require.NoError(t, err)
	require.Equal(t, "user-1", created.ID)
	require.Equal(t, RoleTrainee, created.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("test@example.com").
		WillReturnRows(userRows("user-1", RoleTrainee))

	found, err := repo.FindByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	require.Equal(t, "test@example.com", found.Email)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
}

func TestRepository_EmailExists(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("test@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "test@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRepository_Update(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("user-1", "Renamed", "new@example.com", "$2a$10$newhash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow("user-1", "Renamed", "new@example.com", "$2a$10$newhash", RoleTrainee, time.Now(), time.Now()))

	updated, err := repo.Update(context.Background(), "user-1", "Renamed", "new@example.com", "$2a$10$newhash")
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "new@example.com", updated.Email)
}

func TestRepository_ListByRole(t *testing.T) {
	repo, mock, closeFn := setupMock(t)
	defer closeFn()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE role = $1")).
		WithArgs(RoleTrainer).
		WillReturnRows(userRows("trainer-1", RoleTrainer))

	trainers, err := repo.ListByRole(context.Background(), RoleTrainer)
	require.NoError(t, err)
	require.Len(t, trainers, 1)
	require.Equal(t, RoleTrainer, trainers[0].Role)
}
