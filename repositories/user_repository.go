package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email is already in use")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nome, email, password_hash, role, organizacao_id, criado_em, atualizado_em`

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Nome, &u.Email, &u.PasswordHash, &u.Role, &u.OrganizacaoID, &u.CriadoEm, &u.AtualizadoEm)
}

func (r *postgresUserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO backend_users (nome, email, password_hash, role, organizacao_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, criado_em, atualizado_em`

	err := r.db.QueryRowContext(ctx, query,
		u.Nome, u.Email, u.PasswordHash, u.Role, u.OrganizacaoID,
	).Scan(&u.ID, &u.CriadoEm, &u.AtualizadoEm)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM backend_users WHERE id = $1`

	u := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, id), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by id %d: %w", id, err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM backend_users WHERE email = $1`

	u := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, email), u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user by email: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE backend_users SET
			nome = $1, email = $2, password_hash = $3, role = $4, organizacao_id = $5,
			atualizado_em = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		u.Nome, u.Email, u.PasswordHash, u.Role, u.OrganizacaoID, u.ID)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		if pqErr.Constraint == "backend_users_email_key" {
			return ErrUserEmailConflict
		}
	}
	return err
}
