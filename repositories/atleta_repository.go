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
	ErrAtletaNotFound      = errors.New("athlete not found")
	ErrAtletaEmailConflict = errors.New("athlete email is already in use")
	ErrAtletaCPFConflict   = errors.New("athlete CPF is already in use")
)

type AtletaRepository interface {
	Create(ctx context.Context, atleta *models.Atleta) error
	GetByID(ctx context.Context, id int) (*models.Atleta, error)
	GetByEmail(ctx context.Context, email string) (*models.Atleta, error)
	ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Atleta, error)
	Update(ctx context.Context, atleta *models.Atleta) error
	UpdateImagemPerfil(ctx context.Context, id int, key *string) error
}

type postgresAtletaRepository struct {
	db *sql.DB
}

func NewPostgresAtletaRepository(db *sql.DB) AtletaRepository {
	return &postgresAtletaRepository{db: db}
}

func (r *postgresAtletaRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const atletaColumns = `
	id, nome, cpf, email, password_hash, data_nascimento, imagem_perfil_key,
	endereco, cidade, estado, pais, criado_em, atualizado_em`

func scanAtleta(row interface{ Scan(...interface{}) error }, a *models.Atleta) error {
	return row.Scan(
		&a.ID, &a.Nome, &a.CPF, &a.Email, &a.PasswordHash, &a.DataNascimento, &a.ImagemPerfil,
		&a.Endereco, &a.Cidade, &a.Estado, &a.Pais, &a.CriadoEm, &a.AtualizadoEm,
	)
}

func (r *postgresAtletaRepository) Create(ctx context.Context, a *models.Atleta) error {
	query := `
		INSERT INTO atletas (nome, cpf, email, password_hash, data_nascimento, endereco, cidade, estado, pais)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, criado_em, atualizado_em`

	err := r.db.QueryRowContext(ctx, query,
		a.Nome, a.CPF, a.Email, a.PasswordHash, a.DataNascimento,
		a.Endereco, a.Cidade, a.Estado, a.Pais,
	).Scan(&a.ID, &a.CriadoEm, &a.AtualizadoEm)

	return r.handleAtletaError(err)
}

func (r *postgresAtletaRepository) GetByID(ctx context.Context, id int) (*models.Atleta, error) {
	query := `SELECT` + atletaColumns + ` FROM atletas WHERE id = $1`

	a := &models.Atleta{}
	err := scanAtleta(r.db.QueryRowContext(ctx, query, id), a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAtletaNotFound
		}
		return nil, fmt.Errorf("failed to scan athlete by id %d: %w", id, err)
	}
	return a, nil
}

func (r *postgresAtletaRepository) GetByEmail(ctx context.Context, email string) (*models.Atleta, error) {
	query := `SELECT` + atletaColumns + ` FROM atletas WHERE email = $1`

	a := &models.Atleta{}
	err := scanAtleta(r.db.QueryRowContext(ctx, query, email), a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAtletaNotFound
		}
		return nil, fmt.Errorf("failed to scan athlete by email: %w", err)
	}
	return a, nil
}

func (r *postgresAtletaRepository) ListByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Atleta, error) {
	if len(ids) == 0 {
		return []models.Atleta{}, nil
	}
	executor := r.getExecutor(exec)
	query := `SELECT` + atletaColumns + ` FROM atletas WHERE id = ANY($1) ORDER BY nome`

	rows, err := executor.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	atletas := make([]models.Atleta, 0, len(ids))
	for rows.Next() {
		var a models.Atleta
		if scanErr := scanAtleta(rows, &a); scanErr != nil {
			return nil, scanErr
		}
		atletas = append(atletas, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return atletas, nil
}

func (r *postgresAtletaRepository) Update(ctx context.Context, a *models.Atleta) error {
	query := `
		UPDATE atletas SET
			nome = $1, data_nascimento = $2, endereco = $3, cidade = $4, estado = $5, pais = $6,
			atualizado_em = NOW()
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		a.Nome, a.DataNascimento, a.Endereco, a.Cidade, a.Estado, a.Pais, a.ID)
	if err != nil {
		return r.handleAtletaError(err)
	}
	return checkAffectedRows(result, ErrAtletaNotFound)
}

func (r *postgresAtletaRepository) UpdateImagemPerfil(ctx context.Context, id int, key *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE atletas SET imagem_perfil_key = $1, atualizado_em = NOW() WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update athlete profile image key: %w", err)
	}
	return checkAffectedRows(result, ErrAtletaNotFound)
}

func (r *postgresAtletaRepository) handleAtletaError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "atletas_email_key":
			return ErrAtletaEmailConflict
		case "atletas_cpf_key":
			return ErrAtletaCPFConflict
		}
	}
	return err
}
