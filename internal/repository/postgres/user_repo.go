package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const uniqueViolation = "23505"

type UserRepo struct {
	DB DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{DB: db}
}

// CreateUser inserts a user whose senha is already hashed and returns its id.
func (r *UserRepo) CreateUser(ctx context.Context, u *domain.User) (int64, error) {
	query := `
	INSERT INTO usuarios (nome, email, usuario, senha, foto_perfil)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id;
	`
	var userID int64
	err := r.DB.QueryRowContext(ctx, query, u.Nome, u.Email, u.Usuario, u.SenhaHash, u.FotoPerfil).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.ErrUserExists
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return userID, nil
}

// scanUser is a helper that scans a row into a domain.User
func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		user  domain.User
		foto  sql.NullString
		token sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Nome,
		&user.Email,
		&user.Usuario,
		&user.SenhaHash,
		&foto,
		&token,
		&user.CriadoEm,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if foto.Valid {
		user.FotoPerfil = &foto.String
	}
	if token.Valid {
		user.Token = &token.String
	}
	return &user, nil
}

const userSelectFields = `id, nome, email, usuario, senha, foto_perfil, token, criado_em`

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByIdentifier retrieves a user by email OR usuario
func (r *UserRepo) GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userSelectFields + ` FROM usuarios WHERE email = $1 OR usuario = $1 LIMIT 1;`
	return r.getOne(ctx, query, identifier)
}

// GetUserByToken retrieves the user whose session field holds exactly token
func (r *UserRepo) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	query := `SELECT ` + userSelectFields + ` FROM usuarios WHERE token = $1;`
	return r.getOne(ctx, query, token)
}

// GetUserByID retrieves a user by ID
func (r *UserRepo) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT ` + userSelectFields + ` FROM usuarios WHERE id = $1;`
	return r.getOne(ctx, query, userID)
}

// UpdateToken overwrites the session field, superseding any prior token.
func (r *UserRepo) UpdateToken(ctx context.Context, userID int64, token string) error {
	query := `UPDATE usuarios SET token = $2 WHERE id = $1;`
	res, err := r.DB.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ClearToken empties the session field only while it still holds token.
// It reports whether a row was changed.
func (r *UserRepo) ClearToken(ctx context.Context, userID int64, token string) (bool, error) {
	query := `UPDATE usuarios SET token = NULL WHERE id = $1 AND token = $2;`
	res, err := r.DB.ExecContext(ctx, query, userID, token)
	if err != nil {
		return false, fmt.Errorf("failed to clear token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}
