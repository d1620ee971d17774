package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bukohub/gym-fusion-training-sub001/internal/auth"
)

var userRowColumns = []string{"id", "name", "email", "password_hash", "role", "active", "cedula", "holler", "phone", "created_at", "updated_at"}

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	ctx := context.Background()
	now := time.Now()
	id := uuid.New()
	hash := "hash"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, role, active, cedula, holler, phone) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING " + userColumns)).
		WithArgs("Alice", "a@example.com", &hash, auth.RoleReceptionist, true, "100200", nil, nil).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "Alice", "a@example.com", "hash", "RECEPTIONIST", true, "100200", nil, nil, now, now))

	u, err := repo.Create(ctx, &User{
		Name:         "Alice",
		Email:        "a@example.com",
		PasswordHash: &hash,
		Role:         auth.RoleReceptionist,
		Active:       true,
		Cedula:       "100200",
	})
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, auth.RoleReceptionist, u.Role)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "Alice", "a@example.com", "hash", "RECEPTIONIST", true, "100200", nil, nil, now, now))

	fu, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", fu.Name)
	require.NotNil(t, fu.PasswordHash)
	assert.Nil(t, fu.Holler)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		expected   error
	}{
		{"users_email_key", ErrEmailExists},
		{"users_cedula_key", ErrCedulaExists},
		{"users_holler_key", ErrHollerExists},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock, close := setupUserMock(t)
			defer close()

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			_, err := repo.Create(context.Background(), &User{Name: "Bob", Email: "b@example.com", Role: auth.RoleClient, Cedula: "1"})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestFindByCedula_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE cedula = $1")).
		WithArgs("999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCedula(context.Background(), "999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers_RoleFilter(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	now := time.Now()
	role := auth.RoleTrainer

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE role = $1 ORDER BY created_at DESC")).
		WithArgs(role).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.New().String(), "Tom", "t@example.com", "hash", "TRAINER", true, "3", nil, nil, now, now).
			AddRow(uuid.New().String(), "Tia", "tia@example.com", "hash", "TRAINER", true, "4", nil, nil, now, now))

	users, err := repo.List(context.Background(), &role)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPassword_ActivatesOnlyFirstPassword(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1, active = (active OR password_hash IS NULL), updated_at = NOW() WHERE id = $2")).
		WithArgs("newhash", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPassword(context.Background(), id, "newhash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_Referenced(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserInUse)
}

func TestCountUsers(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
