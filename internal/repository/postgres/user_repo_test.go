package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "nome", "email", "usuario", "senha", "foto_perfil", "token", "criado_em"}

func newRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewUserRepo(db), mock
}

func anaRow(token any) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(int64(1), "Ana", "ana@example.com", "ana", "$2a$hash", "https://cdn/ana.png", token, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func TestGetUserByIdentifier_MatchesEmailOrUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT .+ FROM usuarios WHERE email = \$1 OR usuario = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(anaRow(nil))

	u, err := repo.GetUserByIdentifier(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "ana", u.Usuario)
	assert.Equal(t, "$2a$hash", u.SenhaHash)
	require.NotNil(t, u.FotoPerfil)
	assert.Equal(t, "https://cdn/ana.png", *u.FotoPerfil)
	assert.Nil(t, u.Token)
}

func TestGetUserByIdentifier_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM usuarios WHERE email = \$1 OR usuario = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByIdentifier(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserByIdentifier_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM usuarios WHERE email`).
		WithArgs("ana").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetUserByIdentifier(context.Background(), "ana")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	assert.Contains(t, err.Error(), "failed to get user: db down")
}

func TestGetUserByToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM usuarios WHERE token = \$1`).
		WithArgs("T1").
		WillReturnRows(anaRow("T1"))

	u, err := repo.GetUserByToken(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "T1", u.CurrentToken())
}

func TestGetUserByToken_NoRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM usuarios WHERE token = \$1`).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetUserByToken(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetUserByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM usuarios WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(anaRow(nil))

	u, err := repo.GetUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Nome)
}

func TestUpdateToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE usuarios SET token = \$2 WHERE id = \$1`).
		WithArgs(int64(1), "T2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateToken(context.Background(), 1, "T2"))
}

func TestUpdateToken_UnknownUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE usuarios SET token`).
		WithArgs(int64(99), "T").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdateToken(context.Background(), 99, "T"), domain.ErrUserNotFound)
}

func TestUpdateToken_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE usuarios SET token`).
		WithArgs(int64(1), "T").
		WillReturnError(errors.New("conn reset"))

	err := repo.UpdateToken(context.Background(), 1, "T")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update token: conn reset")
}

func TestClearToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE usuarios SET token = NULL WHERE id = \$1 AND token = \$2`).
		WithArgs(int64(1), "T1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE usuarios SET token = NULL`).
		WithArgs(int64(1), "T1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	cleared, err := repo.ClearToken(context.Background(), 1, "T1")
	require.NoError(t, err)
	assert.True(t, cleared)

	cleared, err = repo.ClearToken(context.Background(), 1, "T1")
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestCreateUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	u := &domain.User{Nome: "Ana", Email: "ana@example.com", Usuario: "ana", SenhaHash: "$2a$hash"}
	mock.ExpectQuery(`INSERT INTO usuarios \(nome, email, usuario, senha, foto_perfil\)`).
		WithArgs("Ana", "ana@example.com", "ana", "$2a$hash", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	id, err := repo.CreateUser(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO usuarios`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.CreateUser(context.Background(), &domain.User{Nome: "Ana", Email: "a", Usuario: "a", SenhaHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}
