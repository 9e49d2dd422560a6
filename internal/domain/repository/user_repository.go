package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the directory consulted and mutated by the auth core.
// Every read filters out soft-deleted rows; every statement is parameterized.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindBySessionToken(ctx context.Context, token string) (*model.User, error)
	GetAll(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id string, nombre *string, edad *int, rol *string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateSessionToken(ctx context.Context, id string, token string, lastLogin time.Time) error
	ClearSessionToken(ctx context.Context, token string) error
	TouchLastAccess(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (total, active int, byRole map[string]int, err error)
}

const userColumns = `id, nombre, email, password_hash, rol, edad, is_active, deleted, deleted_at,
	session_token, last_login, last_access, created_at, updated_at`

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Nombre, &user.Email, &user.PasswordHash, &user.Rol, &user.Edad,
		&user.IsActive, &user.Deleted, &user.DeletedAt,
		&user.SessionToken, &user.LastLogin, &user.LastAccess,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO usuarios (id, nombre, email, password_hash, rol, edad, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Nombre, user.Email, user.PasswordHash, user.Rol, user.Edad, user.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE email = $1 AND deleted = FALSE`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1 AND deleted = FALSE`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

// FindBySessionToken resolves a bearer token to its active owner. Inactive and
// soft-deleted owners are filtered here so callers see a uniform not-found.
func (r *pgUserRepository) FindBySessionToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios
	          WHERE session_token = $1 AND is_active = TRUE AND deleted = FALSE`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindBySessionToken: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) GetAll(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE deleted = FALSE ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetAll: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(
			&user.ID, &user.Nombre, &user.Email, &user.PasswordHash, &user.Rol, &user.Edad,
			&user.IsActive, &user.Deleted, &user.DeletedAt,
			&user.SessionToken, &user.LastLogin, &user.LastAccess,
			&user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetAll scan: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetAll rows: %w", err)
	}
	return users, nil
}

// Update mutates the profile fields that are non-nil. Email is immutable.
func (r *pgUserRepository) Update(ctx context.Context, id string, nombre *string, edad *int, rol *string) error {
	query := `UPDATE usuarios SET
	            nombre = COALESCE($2, nombre),
	            edad = COALESCE($3, edad),
	            rol = COALESCE($4, rol),
	            updated_at = NOW()
	          WHERE id = $1 AND deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, nombre, edad, rol)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Update: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.Update")
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE usuarios SET password_hash = $2, updated_at = NOW()
	          WHERE id = $1 AND deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.UpdatePassword")
}

// UpdateSessionToken overwrites any previous token for the user, so at most
// one token is live per user at a time.
func (r *pgUserRepository) UpdateSessionToken(ctx context.Context, id string, token string, lastLogin time.Time) error {
	query := `UPDATE usuarios SET session_token = $2, last_login = $3, updated_at = NOW()
	          WHERE id = $1 AND deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, token, lastLogin)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateSessionToken: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.UpdateSessionToken")
}

// ClearSessionToken is idempotent: clearing an unknown token affects zero rows
// and is not an error.
func (r *pgUserRepository) ClearSessionToken(ctx context.Context, token string) error {
	query := `UPDATE usuarios SET session_token = NULL, updated_at = NOW() WHERE session_token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("pgUserRepository.ClearSessionToken: %w", err)
	}
	return nil
}

func (r *pgUserRepository) TouchLastAccess(ctx context.Context, id string) error {
	query := `UPDATE usuarios SET last_access = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgUserRepository.TouchLastAccess: %w", err)
	}
	return nil
}

// SoftDelete marks the row removed and kills its live session. The row is
// never physically deleted.
func (r *pgUserRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE usuarios SET deleted = TRUE, deleted_at = NOW(), session_token = NULL,
	            updated_at = NOW()
	          WHERE id = $1 AND deleted = FALSE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SoftDelete: %w", err)
	}
	return requireRowAffected(res, "pgUserRepository.SoftDelete")
}

func (r *pgUserRepository) CountByRole(ctx context.Context) (int, int, map[string]int, error) {
	query := `SELECT rol, is_active, COUNT(*) FROM usuarios
	          WHERE deleted = FALSE GROUP BY rol, is_active`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("pgUserRepository.CountByRole: %w", err)
	}
	defer rows.Close()

	total, active := 0, 0
	byRole := make(map[string]int)
	for rows.Next() {
		var rol string
		var isActive bool
		var count int
		if err := rows.Scan(&rol, &isActive, &count); err != nil {
			return 0, 0, nil, fmt.Errorf("pgUserRepository.CountByRole scan: %w", err)
		}
		total += count
		if isActive {
			active += count
		}
		byRole[rol] += count
	}
	if err := rows.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("pgUserRepository.CountByRole rows: %w", err)
	}
	return total, active, byRole, nil
}

func requireRowAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
