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
	ErrInscricaoNotFound        = errors.New("registration not found")
	ErrInscricaoConflict        = errors.New("athlete is already registered for this backyard")
	ErrNumeroPeitoConflict      = errors.New("bib number is already assigned in this backyard")
	ErrInscricaoInvalidAtleta   = errors.New("invalid athlete reference")
	ErrInscricaoInvalidBackyard = errors.New("invalid backyard reference")
)

type InscricaoRepository interface {
	Create(ctx context.Context, inscricao *models.Inscricao) error
	GetByID(ctx context.Context, id int) (*models.Inscricao, error)
	FindByAtletaAndBackyard(ctx context.Context, atletaID, backyardID int) (*models.Inscricao, error)
	ListByBackyard(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error)
	// ListActiveByBackyard returns non-canceled registrations, the roster a
	// race starts from.
	ListActiveByBackyard(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error)
	// ListUnnumbered returns registrations without a bib, oldest first, so
	// the allocator assigns in registration order.
	ListUnnumbered(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error)
	MaxNumeroPeito(ctx context.Context, exec SQLExecutor, backyardID int) (*int, error)
	CountByBackyard(ctx context.Context, backyardID int) (int, error)
	UpdateNumeroPeito(ctx context.Context, exec SQLExecutor, id int, numero int) error
	UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresInscricaoRepository struct {
	db *sql.DB
}

func NewPostgresInscricaoRepository(db *sql.DB) InscricaoRepository {
	return &postgresInscricaoRepository{db: db}
}

func (r *postgresInscricaoRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const inscricaoColumns = `
	id, atleta_id, backyard_id, numero_peito, status_inscricao, data_inscricao`

func scanInscricao(row interface{ Scan(...interface{}) error }, i *models.Inscricao) error {
	return row.Scan(&i.ID, &i.AtletaID, &i.BackyardID, &i.NumeroPeito, &i.StatusInscricao, &i.DataInscricao)
}

func (r *postgresInscricaoRepository) Create(ctx context.Context, i *models.Inscricao) error {
	query := `
		INSERT INTO atleta_backyard (atleta_id, backyard_id, numero_peito, status_inscricao)
		VALUES ($1, $2, $3, $4)
		RETURNING id, data_inscricao`

	err := r.db.QueryRowContext(ctx, query,
		i.AtletaID, i.BackyardID, i.NumeroPeito, i.StatusInscricao,
	).Scan(&i.ID, &i.DataInscricao)

	return r.handleInscricaoError(err)
}

func (r *postgresInscricaoRepository) GetByID(ctx context.Context, id int) (*models.Inscricao, error) {
	query := `SELECT` + inscricaoColumns + ` FROM atleta_backyard WHERE id = $1`

	i := &models.Inscricao{}
	err := scanInscricao(r.db.QueryRowContext(ctx, query, id), i)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInscricaoNotFound
		}
		return nil, fmt.Errorf("failed to scan registration by id %d: %w", id, err)
	}
	return i, nil
}

func (r *postgresInscricaoRepository) FindByAtletaAndBackyard(ctx context.Context, atletaID, backyardID int) (*models.Inscricao, error) {
	query := `SELECT` + inscricaoColumns + ` FROM atleta_backyard WHERE atleta_id = $1 AND backyard_id = $2`

	i := &models.Inscricao{}
	err := scanInscricao(r.db.QueryRowContext(ctx, query, atletaID, backyardID), i)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInscricaoNotFound
		}
		return nil, fmt.Errorf("failed to scan registration for athlete %d in backyard %d: %w", atletaID, backyardID, err)
	}
	return i, nil
}

func (r *postgresInscricaoRepository) ListByBackyard(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	query := `SELECT` + inscricaoColumns + ` FROM atleta_backyard WHERE backyard_id = $1 ORDER BY data_inscricao`
	return r.list(ctx, exec, query, backyardID)
}

func (r *postgresInscricaoRepository) ListActiveByBackyard(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	query := `SELECT` + inscricaoColumns + `
		FROM atleta_backyard
		WHERE backyard_id = $1 AND status_inscricao != $2
		ORDER BY data_inscricao`
	return r.list(ctx, exec, query, backyardID, models.InscricaoStatusCancelado)
}

func (r *postgresInscricaoRepository) ListUnnumbered(ctx context.Context, exec SQLExecutor, backyardID int) ([]models.Inscricao, error) {
	query := `SELECT` + inscricaoColumns + `
		FROM atleta_backyard
		WHERE backyard_id = $1 AND numero_peito IS NULL AND status_inscricao != $2
		ORDER BY data_inscricao`
	return r.list(ctx, exec, query, backyardID, models.InscricaoStatusCancelado)
}

func (r *postgresInscricaoRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Inscricao, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.Inscricao, 0)
	for rows.Next() {
		var i models.Inscricao
		if scanErr := scanInscricao(rows, &i); scanErr != nil {
			return nil, scanErr
		}
		result = append(result, i)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresInscricaoRepository) MaxNumeroPeito(ctx context.Context, exec SQLExecutor, backyardID int) (*int, error) {
	executor := r.getExecutor(exec)
	var max sql.NullInt64
	err := executor.QueryRowContext(ctx,
		`SELECT MAX(numero_peito) FROM atleta_backyard WHERE backyard_id = $1`, backyardID,
	).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("failed to query max bib number for backyard %d: %w", backyardID, err)
	}
	if !max.Valid {
		return nil, nil
	}
	n := int(max.Int64)
	return &n, nil
}

func (r *postgresInscricaoRepository) CountByBackyard(ctx context.Context, backyardID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM atleta_backyard WHERE backyard_id = $1 AND status_inscricao != $2`,
		backyardID, models.InscricaoStatusCancelado,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations for backyard %d: %w", backyardID, err)
	}
	return count, nil
}

func (r *postgresInscricaoRepository) UpdateNumeroPeito(ctx context.Context, exec SQLExecutor, id int, numero int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE atleta_backyard SET numero_peito = $1 WHERE id = $2`, numero, id)
	if err != nil {
		return r.handleInscricaoError(err)
	}
	return checkAffectedRows(result, ErrInscricaoNotFound)
}

func (r *postgresInscricaoRepository) UpdateStatus(ctx context.Context, id int, status models.InscricaoStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE atleta_backyard SET status_inscricao = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleInscricaoError(err)
	}
	return checkAffectedRows(result, ErrInscricaoNotFound)
}

func (r *postgresInscricaoRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM atleta_backyard WHERE id = $1`, id)
	if err != nil {
		return r.handleInscricaoError(err)
	}
	return checkAffectedRows(result, ErrInscricaoNotFound)
}

func (r *postgresInscricaoRepository) handleInscricaoError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "atleta_backyard_atleta_id_backyard_id_key":
				return ErrInscricaoConflict
			case "atleta_backyard_backyard_id_numero_peito_key":
				return ErrNumeroPeitoConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "atleta_backyard_atleta_id_fkey":
				return ErrInscricaoInvalidAtleta
			case "atleta_backyard_backyard_id_fkey":
				return ErrInscricaoInvalidBackyard
			}
		}
	}
	return err
}
