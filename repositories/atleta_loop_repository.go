package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/lib/pq"
)

var (
	ErrAtletaLoopNotFound      = errors.New("athlete loop record not found")
	ErrAtletaLoopConflict      = errors.New("athlete is already seeded into this loop")
	ErrAtletaLoopInvalidAtleta = errors.New("invalid athlete reference")
	ErrAtletaLoopInvalidLoop   = errors.New("invalid loop reference")
)

type AtletaLoopRepository interface {
	Create(ctx context.Context, exec SQLExecutor, al *models.AtletaLoop) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AtletaLoop, error)
	ListByLoop(ctx context.Context, exec SQLExecutor, loopID int) ([]models.AtletaLoop, error)
	ListByLoopAndStatus(ctx context.Context, exec SQLExecutor, loopID int, status models.AtletaLoopStatus) ([]models.AtletaLoop, error)
	CountByLoop(ctx context.Context, exec SQLExecutor, loopID int) (int, error)
	Update(ctx context.Context, exec SQLExecutor, al *models.AtletaLoop) error
	// MarkActiveAs moves every ATIVO row of the loop to the given terminal
	// status in one statement, returning how many rows changed. Used for
	// time-limit eliminations and straggler DNFs on loop close.
	MarkActiveAs(ctx context.Context, exec SQLExecutor, loopID int, status models.AtletaLoopStatus, tempoFim time.Time, observacoes *string) (int, error)
	// PropagateStart stamps tempo_inicio on every ATIVO row of the loop.
	PropagateStart(ctx context.Context, exec SQLExecutor, loopID int, tempoInicio time.Time) error
}

type postgresAtletaLoopRepository struct {
	db *sql.DB
}

func NewPostgresAtletaLoopRepository(db *sql.DB) AtletaLoopRepository {
	return &postgresAtletaLoopRepository{db: db}
}

func (r *postgresAtletaLoopRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const atletaLoopColumns = `
	id, atleta_id, loop_id, status, tempo_inicio, tempo_fim,
	tempo_total_segundos, observacoes, atualizado_em`

func scanAtletaLoop(row interface{ Scan(...interface{}) error }, al *models.AtletaLoop) error {
	return row.Scan(
		&al.ID, &al.AtletaID, &al.LoopID, &al.Status, &al.TempoInicio, &al.TempoFim,
		&al.TempoTotalSegundos, &al.Observacoes, &al.AtualizadoEm,
	)
}

func (r *postgresAtletaLoopRepository) Create(ctx context.Context, exec SQLExecutor, al *models.AtletaLoop) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO atleta_loop (atleta_id, loop_id, status, tempo_inicio, tempo_fim, tempo_total_segundos, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, atualizado_em`

	err := executor.QueryRowContext(ctx, query,
		al.AtletaID, al.LoopID, al.Status, al.TempoInicio, al.TempoFim,
		al.TempoTotalSegundos, al.Observacoes,
	).Scan(&al.ID, &al.AtualizadoEm)

	return r.handleAtletaLoopError(err)
}

func (r *postgresAtletaLoopRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.AtletaLoop, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + atletaLoopColumns + ` FROM atleta_loop WHERE id = $1`

	al := &models.AtletaLoop{}
	err := scanAtletaLoop(executor.QueryRowContext(ctx, query, id), al)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAtletaLoopNotFound
		}
		return nil, fmt.Errorf("failed to scan atleta_loop by id %d: %w", id, err)
	}
	return al, nil
}

func (r *postgresAtletaLoopRepository) ListByLoop(ctx context.Context, exec SQLExecutor, loopID int) ([]models.AtletaLoop, error) {
	query := `SELECT` + atletaLoopColumns + ` FROM atleta_loop WHERE loop_id = $1 ORDER BY tempo_total_segundos ASC NULLS LAST, id`
	return r.list(ctx, exec, query, loopID)
}

func (r *postgresAtletaLoopRepository) ListByLoopAndStatus(ctx context.Context, exec SQLExecutor, loopID int, status models.AtletaLoopStatus) ([]models.AtletaLoop, error) {
	query := `SELECT` + atletaLoopColumns + ` FROM atleta_loop WHERE loop_id = $1 AND status = $2 ORDER BY id`
	return r.list(ctx, exec, query, loopID, status)
}

func (r *postgresAtletaLoopRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.AtletaLoop, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]models.AtletaLoop, 0)
	for rows.Next() {
		var al models.AtletaLoop
		if scanErr := scanAtletaLoop(rows, &al); scanErr != nil {
			return nil, scanErr
		}
		result = append(result, al)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresAtletaLoopRepository) CountByLoop(ctx context.Context, exec SQLExecutor, loopID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM atleta_loop WHERE loop_id = $1`, loopID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count atleta_loop rows for loop %d: %w", loopID, err)
	}
	return count, nil
}

func (r *postgresAtletaLoopRepository) Update(ctx context.Context, exec SQLExecutor, al *models.AtletaLoop) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE atleta_loop SET
			status = $1,
			tempo_inicio = $2,
			tempo_fim = $3,
			tempo_total_segundos = $4,
			observacoes = $5,
			atualizado_em = NOW()
		WHERE id = $6`

	result, err := executor.ExecContext(ctx, query,
		al.Status, al.TempoInicio, al.TempoFim, al.TempoTotalSegundos, al.Observacoes, al.ID,
	)
	if err != nil {
		return r.handleAtletaLoopError(err)
	}
	return checkAffectedRows(result, ErrAtletaLoopNotFound)
}

func (r *postgresAtletaLoopRepository) MarkActiveAs(ctx context.Context, exec SQLExecutor, loopID int, status models.AtletaLoopStatus, tempoFim time.Time, observacoes *string) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE atleta_loop SET
			status = $1,
			tempo_fim = $2,
			observacoes = COALESCE($3, observacoes),
			atualizado_em = NOW()
		WHERE loop_id = $4 AND status = $5`

	result, err := executor.ExecContext(ctx, query, status, tempoFim, observacoes, loopID, models.AtletaLoopStatusAtivo)
	if err != nil {
		return 0, fmt.Errorf("failed to mark active athletes of loop %d as %s: %w", loopID, status, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresAtletaLoopRepository) PropagateStart(ctx context.Context, exec SQLExecutor, loopID int, tempoInicio time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE atleta_loop SET tempo_inicio = $1, atualizado_em = NOW()
		WHERE loop_id = $2 AND status = $3`

	_, err := executor.ExecContext(ctx, query, tempoInicio, loopID, models.AtletaLoopStatusAtivo)
	if err != nil {
		return fmt.Errorf("failed to propagate start time to loop %d athletes: %w", loopID, err)
	}
	return nil
}

func (r *postgresAtletaLoopRepository) handleAtletaLoopError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "atleta_loop_atleta_id_loop_id_key" {
				return ErrAtletaLoopConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "atleta_loop_atleta_id_fkey":
				return ErrAtletaLoopInvalidAtleta
			case "atleta_loop_loop_id_fkey":
				return ErrAtletaLoopInvalidLoop
			}
		}
	}
	return err
}
