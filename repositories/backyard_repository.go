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
	ErrBackyardNotFound           = errors.New("backyard not found")
	ErrBackyardNameConflict       = errors.New("backyard name conflict for this organization")
	ErrBackyardInvalidOrganizacao = errors.New("invalid organization reference")
	ErrBackyardInUse              = errors.New("backyard is in use (registrations/loops exist)")
)

type ListBackyardsFilter struct {
	OrganizacaoID *int
	Status        *models.BackyardStatus
	Limit         int
	Offset        int
}

type BackyardRepository interface {
	Create(ctx context.Context, backyard *models.Backyard) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Backyard, error)
	List(ctx context.Context, filter ListBackyardsFilter) ([]models.Backyard, error)
	Update(ctx context.Context, backyard *models.Backyard) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BackyardStatus) error
	UpdateImageKey(ctx context.Context, id int, column string, key *string) error
	Delete(ctx context.Context, id int) error
}

type postgresBackyardRepository struct {
	db *sql.DB
}

func NewPostgresBackyardRepository(db *sql.DB) BackyardRepository {
	return &postgresBackyardRepository{db: db}
}

func (r *postgresBackyardRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const backyardColumns = `
	id, nome, organizacao_id, descricao, endereco, cidade, estado, pais,
	capacidade, numero_inicial, status, data_evento,
	profile_picture_key, logo_key, data_criacao, data_ultima_atualizacao`

func scanBackyard(row interface{ Scan(...interface{}) error }, b *models.Backyard) error {
	return row.Scan(
		&b.ID, &b.Nome, &b.OrganizacaoID, &b.Descricao, &b.Endereco, &b.Cidade, &b.Estado, &b.Pais,
		&b.Capacidade, &b.NumeroInicial, &b.Status, &b.DataEvento,
		&b.ProfilePictureKey, &b.LogoKey, &b.DataCriacao, &b.DataUltimaAtualizacao,
	)
}

func (r *postgresBackyardRepository) Create(ctx context.Context, b *models.Backyard) error {
	query := `
		INSERT INTO backyards (
			nome, organizacao_id, descricao, endereco, cidade, estado, pais,
			capacidade, numero_inicial, status, data_evento, profile_picture_key, logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, data_criacao, data_ultima_atualizacao`

	err := r.db.QueryRowContext(ctx, query,
		b.Nome, b.OrganizacaoID, b.Descricao, b.Endereco, b.Cidade, b.Estado, b.Pais,
		b.Capacidade, b.NumeroInicial, b.Status, b.DataEvento, b.ProfilePictureKey, b.LogoKey,
	).Scan(&b.ID, &b.DataCriacao, &b.DataUltimaAtualizacao)

	return r.handleBackyardError(err)
}

func (r *postgresBackyardRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Backyard, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + backyardColumns + ` FROM backyards WHERE id = $1`

	b := &models.Backyard{}
	err := scanBackyard(executor.QueryRowContext(ctx, query, id), b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBackyardNotFound
		}
		return nil, fmt.Errorf("failed to scan backyard by id %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresBackyardRepository) List(ctx context.Context, filter ListBackyardsFilter) ([]models.Backyard, error) {
	query := `SELECT` + backyardColumns + ` FROM backyards WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizacaoID != nil {
		query += fmt.Sprintf(" AND organizacao_id = $%d", argID)
		args = append(args, *filter.OrganizacaoID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY data_evento DESC NULLS LAST, data_criacao DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	backyards := make([]models.Backyard, 0)
	for rows.Next() {
		var b models.Backyard
		if scanErr := scanBackyard(rows, &b); scanErr != nil {
			return nil, scanErr
		}
		backyards = append(backyards, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return backyards, nil
}

func (r *postgresBackyardRepository) Update(ctx context.Context, b *models.Backyard) error {
	query := `
		UPDATE backyards SET
			nome = $1, descricao = $2, endereco = $3, cidade = $4, estado = $5, pais = $6,
			capacidade = $7, numero_inicial = $8, status = $9, data_evento = $10,
			data_ultima_atualizacao = NOW()
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		b.Nome, b.Descricao, b.Endereco, b.Cidade, b.Estado, b.Pais,
		b.Capacidade, b.NumeroInicial, b.Status, b.DataEvento,
		b.ID,
	)
	if err != nil {
		return r.handleBackyardError(err)
	}
	return checkAffectedRows(result, ErrBackyardNotFound)
}

func (r *postgresBackyardRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.BackyardStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE backyards SET status = $1, data_ultima_atualizacao = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleBackyardError(err)
	}
	return checkAffectedRows(result, ErrBackyardNotFound)
}

// UpdateImageKey sets profile_picture_key or logo_key. The column name is
// restricted here because it cannot be a bind parameter.
func (r *postgresBackyardRepository) UpdateImageKey(ctx context.Context, id int, column string, key *string) error {
	if column != "profile_picture_key" && column != "logo_key" {
		return fmt.Errorf("unsupported backyard image column: %q", column)
	}
	query := fmt.Sprintf(`UPDATE backyards SET %s = $1, data_ultima_atualizacao = NOW() WHERE id = $2`, column)
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("failed to update backyard image key: %w", err)
	}
	return checkAffectedRows(result, ErrBackyardNotFound)
}

func (r *postgresBackyardRepository) Delete(ctx context.Context, id int) error {
	// Loops and atleta_loop rows cascade with the backyard.
	query := `DELETE FROM backyards WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleBackyardError(err)
	}
	return checkAffectedRows(result, ErrBackyardNotFound)
}

func (r *postgresBackyardRepository) handleBackyardError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "backyards_organizacao_id_nome_key" {
				return ErrBackyardNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "backyards_organizacao_id_fkey":
				return ErrBackyardInvalidOrganizacao
			default:
				return ErrBackyardInUse
			}
		}
	}
	return err
}
