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
	ErrLoopNotFound        = errors.New("loop not found")
	ErrLoopNumberConflict  = errors.New("loop number already exists for this backyard")
	ErrLoopInvalidBackyard = errors.New("invalid backyard reference")
)

type LoopRepository interface {
	Create(ctx context.Context, exec SQLExecutor, loop *models.Loop) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Loop, error)
	// LockByID reads the loop with SELECT ... FOR UPDATE, serializing
	// concurrent engine operations (foreground handlers vs. the time-limit
	// monitor) on the same loop row.
	LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Loop, error)
	ListByBackyard(ctx context.Context, backyardID int) ([]models.Loop, error)
	ListActive(ctx context.Context) ([]models.Loop, error)
	GetCurrent(ctx context.Context, exec SQLExecutor, backyardID int) (*models.Loop, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LoopStatus, dataInicio, dataFim *time.Time) error
}

type postgresLoopRepository struct {
	db *sql.DB
}

func NewPostgresLoopRepository(db *sql.DB) LoopRepository {
	return &postgresLoopRepository{db: db}
}

func (r *postgresLoopRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const loopColumns = `
	id, backyard_id, numero_loop, status, data_inicio, data_fim,
	tempo_limite, distancia_km, criado_em`

func scanLoop(row interface{ Scan(...interface{}) error }, l *models.Loop) error {
	return row.Scan(
		&l.ID, &l.BackyardID, &l.NumeroLoop, &l.Status, &l.DataInicio, &l.DataFim,
		&l.TempoLimite, &l.DistanciaKM, &l.CriadoEm,
	)
}

func (r *postgresLoopRepository) Create(ctx context.Context, exec SQLExecutor, loop *models.Loop) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO loops (backyard_id, numero_loop, status, data_inicio, data_fim, tempo_limite, distancia_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, criado_em`

	err := executor.QueryRowContext(ctx, query,
		loop.BackyardID, loop.NumeroLoop, loop.Status, loop.DataInicio, loop.DataFim,
		loop.TempoLimite, loop.DistanciaKM,
	).Scan(&loop.ID, &loop.CriadoEm)

	return r.handleLoopError(err)
}

func (r *postgresLoopRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Loop, error) {
	return r.getByID(ctx, exec, id, false)
}

func (r *postgresLoopRepository) LockByID(ctx context.Context, exec SQLExecutor, id int) (*models.Loop, error) {
	return r.getByID(ctx, exec, id, true)
}

func (r *postgresLoopRepository) getByID(ctx context.Context, exec SQLExecutor, id int, forUpdate bool) (*models.Loop, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + loopColumns + ` FROM loops WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	l := &models.Loop{}
	err := scanLoop(executor.QueryRowContext(ctx, query, id), l)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoopNotFound
		}
		return nil, fmt.Errorf("failed to scan loop by id %d: %w", id, err)
	}
	return l, nil
}

func (r *postgresLoopRepository) ListByBackyard(ctx context.Context, backyardID int) ([]models.Loop, error) {
	query := `SELECT` + loopColumns + ` FROM loops WHERE backyard_id = $1 ORDER BY numero_loop`

	rows, err := r.db.QueryContext(ctx, query, backyardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loops := make([]models.Loop, 0)
	for rows.Next() {
		var l models.Loop
		if scanErr := scanLoop(rows, &l); scanErr != nil {
			return nil, scanErr
		}
		loops = append(loops, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loops, nil
}

// ListActive returns every loop currently in ATIVO, for the time-limit monitor.
func (r *postgresLoopRepository) ListActive(ctx context.Context) ([]models.Loop, error) {
	query := `SELECT` + loopColumns + ` FROM loops WHERE status = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, models.LoopStatusAtivo)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loops: %w", err)
	}
	defer rows.Close()

	loops := make([]models.Loop, 0)
	for rows.Next() {
		var l models.Loop
		if scanErr := scanLoop(rows, &l); scanErr != nil {
			return nil, fmt.Errorf("failed to scan active loop: %w", scanErr)
		}
		loops = append(loops, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loops, nil
}

// GetCurrent returns the single non-finished loop of a backyard, or the
// highest-numbered finished one when the race is over.
func (r *postgresLoopRepository) GetCurrent(ctx context.Context, exec SQLExecutor, backyardID int) (*models.Loop, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + loopColumns + `
		FROM loops
		WHERE backyard_id = $1
		ORDER BY (status != $2), numero_loop DESC
		LIMIT 1`

	l := &models.Loop{}
	err := scanLoop(executor.QueryRowContext(ctx, query, backyardID, models.LoopStatusFinalizado), l)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoopNotFound
		}
		return nil, fmt.Errorf("failed to scan current loop for backyard %d: %w", backyardID, err)
	}
	return l, nil
}

func (r *postgresLoopRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.LoopStatus, dataInicio, dataFim *time.Time) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE loops SET
			status = $1,
			data_inicio = COALESCE($2, data_inicio),
			data_fim = COALESCE($3, data_fim)
		WHERE id = $4`

	result, err := executor.ExecContext(ctx, query, status, dataInicio, dataFim, id)
	if err != nil {
		return r.handleLoopError(err)
	}
	return checkAffectedRows(result, ErrLoopNotFound)
}

func (r *postgresLoopRepository) handleLoopError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "loops_backyard_id_numero_loop_key" {
				return ErrLoopNumberConflict
			}
		case "23503":
			if pqErr.Constraint == "loops_backyard_id_fkey" {
				return ErrLoopInvalidBackyard
			}
		}
	}
	return err
}
