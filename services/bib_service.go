package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glaucius/back-to-the-loop/db"
	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
)

type GenerateBibNumbersResult struct {
	Assigned  int    `json:"assigned"`
	Remaining int    `json:"remaining"` // registrations left without a bib
	Message   string `json:"message"`
}

// BibService assigns sequential bib numbers within a backyard's configured
// window [numero_inicial, numero_inicial+capacidade-1]. Numbers are never
// reused after cancellations: the next bib is always max(assigned)+1.
type BibService interface {
	NextBibNumber(ctx context.Context, backyardID int) (int, error)
	GenerateBibNumbers(ctx context.Context, backyardID int) (*GenerateBibNumbersResult, error)
}

type bibService struct {
	tx            db.Transactor
	backyardRepo  repositories.BackyardRepository
	inscricaoRepo repositories.InscricaoRepository
	logger        *slog.Logger
}

func NewBibService(
	tx db.Transactor,
	backyardRepo repositories.BackyardRepository,
	inscricaoRepo repositories.InscricaoRepository,
	logger *slog.Logger,
) BibService {
	return &bibService{
		tx:            tx,
		backyardRepo:  backyardRepo,
		inscricaoRepo: inscricaoRepo,
		logger:        logger,
	}
}

// nextBib computes the lowest unassigned bib for the backyard given the
// highest number already handed out. Pure rule, shared by both operations.
func nextBib(backyard *models.Backyard, maxAssigned *int) (int, error) {
	next := backyard.NumeroInicial
	if maxAssigned != nil && *maxAssigned >= backyard.NumeroInicial {
		next = *maxAssigned + 1
	}
	if next > backyard.UltimoNumeroPeito() {
		return 0, ErrBibCapacityExhausted
	}
	return next, nil
}

func (s *bibService) NextBibNumber(ctx context.Context, backyardID int) (int, error) {
	var next int

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		backyard, err := s.backyardRepo.GetByID(ctx, exec, backyardID)
		if err != nil {
			return mapBackyardRepoError(err)
		}
		maxAssigned, err := s.inscricaoRepo.MaxNumeroPeito(ctx, exec, backyardID)
		if err != nil {
			return err
		}
		next, err = nextBib(backyard, maxAssigned)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GenerateBibNumbers batch-assigns bibs to every unnumbered registration in
// registration-timestamp order, stopping when the window is exhausted.
// Re-runnable: already-numbered registrations are never touched.
func (s *bibService) GenerateBibNumbers(ctx context.Context, backyardID int) (*GenerateBibNumbersResult, error) {
	var result *GenerateBibNumbersResult

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		backyard, err := s.backyardRepo.GetByID(ctx, exec, backyardID)
		if err != nil {
			return mapBackyardRepoError(err)
		}
		maxAssigned, err := s.inscricaoRepo.MaxNumeroPeito(ctx, exec, backyardID)
		if err != nil {
			return err
		}
		unnumbered, err := s.inscricaoRepo.ListUnnumbered(ctx, exec, backyardID)
		if err != nil {
			return fmt.Errorf("failed to list unnumbered registrations for backyard %d: %w", backyardID, err)
		}

		assigned := 0
		for _, inscricao := range unnumbered {
			numero, err := nextBib(backyard, maxAssigned)
			if errors.Is(err, ErrBibCapacityExhausted) {
				break // not a failure: remaining registrations stay unnumbered
			}
			if err != nil {
				return err
			}
			if err := s.inscricaoRepo.UpdateNumeroPeito(ctx, exec, inscricao.ID, numero); err != nil {
				return err
			}
			maxAssigned = &numero
			assigned++
		}

		result = &GenerateBibNumbersResult{
			Assigned:  assigned,
			Remaining: len(unnumbered) - assigned,
			Message:   fmt.Sprintf("%d números de peito atribuídos.", assigned),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bib numbers generated",
		slog.Int("backyard_id", backyardID),
		slog.Int("assigned", result.Assigned),
		slog.Int("remaining", result.Remaining))
	return result, nil
}
