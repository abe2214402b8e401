package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
)

// InscricaoService handles athlete self-registration on the public frontend.
type InscricaoService interface {
	Register(ctx context.Context, atletaID, backyardID int) (*models.Inscricao, error)
	Cancel(ctx context.Context, atletaID, backyardID int) error
	ListByBackyard(ctx context.Context, backyardID int) ([]models.Inscricao, error)
	VagasRestantes(ctx context.Context, backyardID int) (int, error)
}

type inscricaoService struct {
	inscricaoRepo repositories.InscricaoRepository
	backyardRepo  repositories.BackyardRepository
	atletaRepo    repositories.AtletaRepository
}

func NewInscricaoService(
	inscricaoRepo repositories.InscricaoRepository,
	backyardRepo repositories.BackyardRepository,
	atletaRepo repositories.AtletaRepository,
) InscricaoService {
	return &inscricaoService{
		inscricaoRepo: inscricaoRepo,
		backyardRepo:  backyardRepo,
		atletaRepo:    atletaRepo,
	}
}

// Register creates a registration while the backyard is still in PREPARACAO.
// The bib number stays empty until the organizer runs the allocator.
func (s *inscricaoService) Register(ctx context.Context, atletaID, backyardID int) (*models.Inscricao, error) {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, backyardID)
	if err != nil {
		return nil, mapBackyardRepoError(err)
	}
	if backyard.Status != models.BackyardStatusPreparacao {
		return nil, ErrRegistrationNotOpen
	}

	if _, err := s.atletaRepo.GetByID(ctx, atletaID); err != nil {
		if errors.Is(err, repositories.ErrAtletaNotFound) {
			return nil, ErrAtletaNotFound
		}
		return nil, fmt.Errorf("failed to check athlete %d: %w", atletaID, err)
	}

	existing, err := s.inscricaoRepo.FindByAtletaAndBackyard(ctx, atletaID, backyardID)
	if err != nil && !errors.Is(err, repositories.ErrInscricaoNotFound) {
		return nil, fmt.Errorf("failed to check existing registration: %w", err)
	}
	if existing != nil {
		return nil, ErrRegistrationConflict
	}

	if backyard.Capacidade > 0 {
		total, err := s.inscricaoRepo.CountByBackyard(ctx, backyardID)
		if err != nil {
			return nil, err
		}
		if total >= backyard.Capacidade {
			return nil, ErrBackyardFull
		}
	}

	inscricao := &models.Inscricao{
		AtletaID:        atletaID,
		BackyardID:      backyardID,
		StatusInscricao: models.InscricaoStatusInscrito,
	}
	if err := s.inscricaoRepo.Create(ctx, inscricao); err != nil {
		if errors.Is(err, repositories.ErrInscricaoConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, err
	}
	return inscricao, nil
}

// Cancel marks the registration canceled. Not allowed while the race is
// running; the athlete is already part of the current loop by then.
func (s *inscricaoService) Cancel(ctx context.Context, atletaID, backyardID int) error {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, backyardID)
	if err != nil {
		return mapBackyardRepoError(err)
	}
	if backyard.Status == models.BackyardStatusAtivo {
		return ErrCancelWhileActive
	}

	inscricao, err := s.inscricaoRepo.FindByAtletaAndBackyard(ctx, atletaID, backyardID)
	if err != nil {
		if errors.Is(err, repositories.ErrInscricaoNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return s.inscricaoRepo.UpdateStatus(ctx, inscricao.ID, models.InscricaoStatusCancelado)
}

func (s *inscricaoService) ListByBackyard(ctx context.Context, backyardID int) ([]models.Inscricao, error) {
	return s.inscricaoRepo.ListByBackyard(ctx, nil, backyardID)
}

func (s *inscricaoService) VagasRestantes(ctx context.Context, backyardID int) (int, error) {
	backyard, err := s.backyardRepo.GetByID(ctx, nil, backyardID)
	if err != nil {
		return 0, mapBackyardRepoError(err)
	}
	if backyard.Capacidade <= 0 {
		return 0, nil
	}
	total, err := s.inscricaoRepo.CountByBackyard(ctx, backyardID)
	if err != nil {
		return 0, err
	}
	restantes := backyard.Capacidade - total
	if restantes < 0 {
		restantes = 0
	}
	return restantes, nil
}
