package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"
)

var userCols = []string{
	"id", "nombre", "email", "password_hash", "rol", "edad", "is_active", "deleted", "deleted_at",
	"session_token", "last_login", "last_access", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgUserRepository(db), mock
}

func anaRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).AddRow(
		"u1", "Ana", "ana@x.com", "$2a$10$hash", model.RoleUsuario, 30, true, false, nil,
		nil, nil, nil, now, now,
	)
}

func TestFindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM usuarios WHERE email = \$1 AND deleted = FALSE`).
		WithArgs("ana@x.com").
		WillReturnRows(anaRow())

	user, err := repo.FindByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Nombre)
	assert.Equal(t, model.RoleUsuario, user.Rol)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM usuarios WHERE email = \$1 AND deleted = FALSE`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySessionToken_FiltersInactiveAndDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE session_token = \$1 AND is_active = TRUE AND deleted = FALSE`).
		WithArgs("tok").
		WillReturnRows(anaRow())

	user, err := repo.FindBySessionToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmailIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO usuarios`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.User{
		ID: "u2", Nombre: "Ana", Email: "ana@x.com", PasswordHash: "h",
		Rol: model.RoleUsuario, Edad: 30, IsActive: true,
	})
	assert.ErrorIs(t, err, common.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSessionToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE usuarios SET session_token = \$2, last_login = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSessionToken(context.Background(), "u1", "tok", time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSessionToken_UnknownTokenIsNoOp(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE usuarios SET session_token = NULL`).
		WithArgs("unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ClearSessionToken(context.Background(), "unknown"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE usuarios SET deleted = TRUE, deleted_at = NOW\(\), session_token = NULL`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDelete_AlreadyDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE usuarios SET deleted = TRUE`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAll_ExcludesDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM usuarios WHERE deleted = FALSE ORDER BY created_at`).
		WillReturnRows(anaRow())

	users, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana@x.com", users[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
