package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glaucius/back-to-the-loop/db"
	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
)

// LoopConfig holds the fixed round configuration of the race format. The
// engine never varies time limit or distance between loops on its own.
type LoopConfig struct {
	TempoLimite int     // seconds
	DistanciaKM float64
}

type StartEventResult struct {
	Loop             *models.Loop `json:"loop"`
	AtletasInscritos int          `json:"atletas_inscritos"`
	Message          string       `json:"message"`
}

type CompleteAthleteLoopInput struct {
	TempoFim    string `json:"tempo_fim,omitempty"` // "HH:MM:SS", empty means now
	Observacoes string `json:"observacoes,omitempty"`
}

type CompleteAthleteLoopResult struct {
	AtletaLoop     *models.AtletaLoop `json:"atleta_loop"`
	TempoFormatado string             `json:"tempo_formatado"`
	EventFinished  bool               `json:"event_finished"`
	Winner         *models.Atleta     `json:"winner,omitempty"`
	Message        string             `json:"message"`
}

type AdvanceLoopResult struct {
	EventFinished bool         `json:"event_finished"`
	NewLoop       *models.Loop `json:"new_loop,omitempty"`
	Qualified     int          `json:"qualified"`
	ForcedDNF     int          `json:"forced_dnf"`
	Message       string       `json:"message"`
}

const dnfLoopClosedNote = "DNF - loop finalizado antes da conclusão"
const dnfTimeLimitNote = "DNF - tempo limite excedido"

// RaceService is the loop lifecycle engine: it owns every state transition of
// a backyard and its loops. Each operation runs as one transaction with the
// loop row locked, so foreground handlers and the time-limit monitor never
// race on the same round.
type RaceService interface {
	StartEvent(ctx context.Context, backyardID int) (*StartEventResult, error)
	StartLoop(ctx context.Context, loopID int) (*models.Loop, error)
	CompleteAthleteLoop(ctx context.Context, atletaLoopID int, input CompleteAthleteLoopInput) (*CompleteAthleteLoopResult, error)
	EliminateAthlete(ctx context.Context, atletaLoopID int) (*models.AtletaLoop, error)
	EliminateAthletesByTime(ctx context.Context, loopID int) (int, error)
	AdvanceLoop(ctx context.Context, loopID int) (*AdvanceLoopResult, error)
	ChangeAthleteStatus(ctx context.Context, atletaLoopID int, status models.AtletaLoopStatus, observacoes string) (*models.AtletaLoop, error)
	EditTime(ctx context.Context, atletaLoopID int, tempoTotal string, observacoes string) (*models.AtletaLoop, error)
}

type raceService struct {
	tx             db.Transactor
	backyardRepo   repositories.BackyardRepository
	loopRepo       repositories.LoopRepository
	atletaLoopRepo repositories.AtletaLoopRepository
	inscricaoRepo  repositories.InscricaoRepository
	atletaRepo     repositories.AtletaRepository
	loopConfig     LoopConfig
	logger         *slog.Logger
	now            func() time.Time
}

func NewRaceService(
	tx db.Transactor,
	backyardRepo repositories.BackyardRepository,
	loopRepo repositories.LoopRepository,
	atletaLoopRepo repositories.AtletaLoopRepository,
	inscricaoRepo repositories.InscricaoRepository,
	atletaRepo repositories.AtletaRepository,
	loopConfig LoopConfig,
	logger *slog.Logger,
) RaceService {
	return &raceService{
		tx:             tx,
		backyardRepo:   backyardRepo,
		loopRepo:       loopRepo,
		atletaLoopRepo: atletaLoopRepo,
		inscricaoRepo:  inscricaoRepo,
		atletaRepo:     atletaRepo,
		loopConfig:     loopConfig,
		logger:         logger,
		now:            time.Now,
	}
}

// StartEvent moves the backyard to ATIVO and creates loop #1 seeded with
// every registered, non-canceled athlete.
func (s *raceService) StartEvent(ctx context.Context, backyardID int) (*StartEventResult, error) {
	var result *StartEventResult

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		backyard, err := s.backyardRepo.GetByID(ctx, exec, backyardID)
		if err != nil {
			return mapBackyardRepoError(err)
		}
		if backyard.Status != models.BackyardStatusPreparacao {
			return ErrBackyardNotInPreparation
		}

		inscricoes, err := s.inscricaoRepo.ListActiveByBackyard(ctx, exec, backyardID)
		if err != nil {
			return fmt.Errorf("failed to list registrations for backyard %d: %w", backyardID, err)
		}
		if len(inscricoes) == 0 {
			return ErrNoAthletesRegistered
		}

		if err := s.backyardRepo.UpdateStatus(ctx, exec, backyardID, models.BackyardStatusAtivo); err != nil {
			return err
		}

		now := s.now()
		loop := &models.Loop{
			BackyardID:  backyardID,
			NumeroLoop:  1,
			Status:      models.LoopStatusPreparacao,
			DataInicio:  &now,
			TempoLimite: s.loopConfig.TempoLimite,
			DistanciaKM: s.loopConfig.DistanciaKM,
		}
		if err := s.loopRepo.Create(ctx, exec, loop); err != nil {
			return err
		}

		for _, inscricao := range inscricoes {
			al := &models.AtletaLoop{
				AtletaID:    inscricao.AtletaID,
				LoopID:      loop.ID,
				Status:      models.AtletaLoopStatusAtivo,
				TempoInicio: &now,
			}
			if err := s.atletaLoopRepo.Create(ctx, exec, al); err != nil {
				return err
			}
		}

		result = &StartEventResult{
			Loop:             loop,
			AtletasInscritos: len(inscricoes),
			Message:          fmt.Sprintf("Evento iniciado! Loop 1 criado com %d atletas.", len(inscricoes)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event started",
		slog.Int("backyard_id", backyardID),
		slog.Int("athletes", result.AtletasInscritos))
	return result, nil
}

// StartLoop fires the round: the loop goes ATIVO and the official start time
// is propagated to every seeded athlete, so per-athlete elapsed time is
// measured from the gun, not from seeding.
func (s *raceService) StartLoop(ctx context.Context, loopID int) (*models.Loop, error) {
	var started *models.Loop

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		loop, err := s.loopRepo.LockByID(ctx, exec, loopID)
		if err != nil {
			return mapLoopRepoError(err)
		}
		if loop.Status != models.LoopStatusPreparacao {
			return ErrLoopAlreadyStarted
		}

		now := s.now()
		if err := s.loopRepo.UpdateStatus(ctx, exec, loopID, models.LoopStatusAtivo, &now, nil); err != nil {
			return err
		}
		if err := s.atletaLoopRepo.PropagateStart(ctx, exec, loopID, now); err != nil {
			return err
		}

		loop.Status = models.LoopStatusAtivo
		loop.DataInicio = &now
		started = loop
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loop started",
		slog.Int("loop_id", started.ID),
		slog.Int("numero_loop", started.NumeroLoop))
	return started, nil
}

// CompleteAthleteLoop records a finish. If the loop was seeded with exactly
// one athlete, completing it is the solo victory that crowns the winner and
// finishes the event. This is the only termination-by-victory path.
func (s *raceService) CompleteAthleteLoop(ctx context.Context, atletaLoopID int, input CompleteAthleteLoopInput) (*CompleteAthleteLoopResult, error) {
	var result *CompleteAthleteLoopResult

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		al, err := s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}
		loop, err := s.loopRepo.LockByID(ctx, exec, al.LoopID)
		if err != nil {
			return mapLoopRepoError(err)
		}
		// Re-read after taking the loop lock: a time-limit sweep may have
		// moved the athlete to DNF while this transaction waited on the row.
		al, err = s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}

		if loop.Status != models.LoopStatusAtivo {
			return ErrLoopNotActive
		}
		if al.Status != models.AtletaLoopStatusAtivo {
			return ErrAthleteNotActive
		}

		now := s.now()

		// Elapsed time counts from the athlete's own start, falling back to
		// the loop's official start, then to loop creation.
		start := loop.CriadoEm
		if loop.DataInicio != nil {
			start = *loop.DataInicio
		}
		if al.TempoInicio != nil {
			start = *al.TempoInicio
		}

		finish := now
		if input.TempoFim != "" {
			finish, err = ParseTempoFim(input.TempoFim, start)
			if err != nil {
				return err
			}
		}
		if finish.Before(start) {
			return fmt.Errorf("%w: finish time before start", ErrInvalidTimeFormat)
		}
		elapsed := int(finish.Sub(start).Seconds())

		al.Status = models.AtletaLoopStatusConcluido
		al.TempoFim = &finish
		al.TempoTotalSegundos = &elapsed
		if input.Observacoes != "" {
			al.Observacoes = strPtr(input.Observacoes)
		}
		if err := s.atletaLoopRepo.Update(ctx, exec, al); err != nil {
			return err
		}

		result = &CompleteAthleteLoopResult{
			AtletaLoop:     al,
			TempoFormatado: FormatTempo(elapsed),
			Message:        "Atleta marcado como concluído",
		}

		// Solo victory rule: the loop counts every athlete ever seeded into
		// it, regardless of terminal status, not just the finishers.
		total, err := s.atletaLoopRepo.CountByLoop(ctx, exec, loop.ID)
		if err != nil {
			return err
		}
		if total != 1 {
			return nil
		}

		if err := s.loopRepo.UpdateStatus(ctx, exec, loop.ID, models.LoopStatusFinalizado, nil, &now); err != nil {
			return err
		}
		if err := s.backyardRepo.UpdateStatus(ctx, exec, loop.BackyardID, models.BackyardStatusFinalizado); err != nil {
			return err
		}

		winner, err := s.atletaRepo.GetByID(ctx, al.AtletaID)
		if err != nil {
			return fmt.Errorf("failed to load winner %d: %w", al.AtletaID, err)
		}
		winner.PasswordHash = ""

		result.EventFinished = true
		result.Winner = winner
		result.Message = fmt.Sprintf("%s é o campeão! Completou o loop #%d sozinho.", winner.Nome, loop.NumeroLoop)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.EventFinished {
		s.logger.Info("solo victory, event finished",
			slog.Int("atleta_loop_id", atletaLoopID),
			slog.String("winner", result.Winner.Nome))
	}
	return result, nil
}

// EliminateAthlete is the manual, privileged elimination of a single athlete.
func (s *raceService) EliminateAthlete(ctx context.Context, atletaLoopID int) (*models.AtletaLoop, error) {
	var eliminated *models.AtletaLoop

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		al, err := s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}
		loop, err := s.loopRepo.LockByID(ctx, exec, al.LoopID)
		if err != nil {
			return mapLoopRepoError(err)
		}
		// Same re-read as in CompleteAthleteLoop: the pre-lock row may be stale.
		al, err = s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}

		if loop.Status != models.LoopStatusAtivo {
			return ErrLoopNotActive
		}
		if al.Status != models.AtletaLoopStatusAtivo {
			return ErrAthleteNotActive
		}

		now := s.now()
		al.Status = models.AtletaLoopStatusEliminado
		al.TempoFim = &now
		al.TempoTotalSegundos = nil // did not complete
		if err := s.atletaLoopRepo.Update(ctx, exec, al); err != nil {
			return err
		}
		eliminated = al
		return nil
	})
	if err != nil {
		return nil, err
	}
	return eliminated, nil
}

// EliminateAthletesByTime moves every still-ACTIVE athlete of the loop to
// DNF. It is idempotent and never closes the loop or advances the race;
// that remains a separate, explicit action.
func (s *raceService) EliminateAthletesByTime(ctx context.Context, loopID int) (int, error) {
	var count int

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		loop, err := s.loopRepo.LockByID(ctx, exec, loopID)
		if err != nil {
			return mapLoopRepoError(err)
		}
		if loop.Status != models.LoopStatusAtivo {
			return nil // nothing active to eliminate
		}

		count, err = s.atletaLoopRepo.MarkActiveAs(ctx, exec, loopID,
			models.AtletaLoopStatusDNF, s.now(), strPtr(dnfTimeLimitNote))
		return err
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.Info("athletes eliminated by time limit",
			slog.Int("loop_id", loopID),
			slog.Int("eliminated", count))
	}
	return count, nil
}

// AdvanceLoop closes the current round. With zero finishers nobody beat the
// clock and the event ends. With one or more finishers the next loop is created
// and seeded with exactly them; a lone qualifier still has to complete the
// next, uncontested loop before being crowned (see CompleteAthleteLoop).
func (s *raceService) AdvanceLoop(ctx context.Context, loopID int) (*AdvanceLoopResult, error) {
	var result *AdvanceLoopResult

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		loop, err := s.loopRepo.LockByID(ctx, exec, loopID)
		if err != nil {
			return mapLoopRepoError(err)
		}
		if loop.Status != models.LoopStatusAtivo {
			return ErrLoopNotActive
		}

		qualifiers, err := s.atletaLoopRepo.ListByLoopAndStatus(ctx, exec, loopID, models.AtletaLoopStatusConcluido)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.loopRepo.UpdateStatus(ctx, exec, loopID, models.LoopStatusFinalizado, nil, &now); err != nil {
			return err
		}
		forcedDNF, err := s.atletaLoopRepo.MarkActiveAs(ctx, exec, loopID,
			models.AtletaLoopStatusDNF, now, strPtr(dnfLoopClosedNote))
		if err != nil {
			return err
		}

		if len(qualifiers) == 0 {
			if err := s.backyardRepo.UpdateStatus(ctx, exec, loop.BackyardID, models.BackyardStatusFinalizado); err != nil {
				return err
			}
			result = &AdvanceLoopResult{
				EventFinished: true,
				ForcedDNF:     forcedDNF,
				Message:       "Evento finalizado! Nenhum atleta se qualificou.",
			}
			return nil
		}

		next := &models.Loop{
			BackyardID:  loop.BackyardID,
			NumeroLoop:  loop.NumeroLoop + 1,
			Status:      models.LoopStatusPreparacao,
			TempoLimite: loop.TempoLimite,
			DistanciaKM: loop.DistanciaKM,
		}
		if err := s.loopRepo.Create(ctx, exec, next); err != nil {
			return err
		}

		for _, q := range qualifiers {
			al := &models.AtletaLoop{
				AtletaID: q.AtletaID,
				LoopID:   next.ID,
				Status:   models.AtletaLoopStatusAtivo,
			}
			if err := s.atletaLoopRepo.Create(ctx, exec, al); err != nil {
				return err
			}
		}

		result = &AdvanceLoopResult{
			NewLoop:   next,
			Qualified: len(qualifiers),
			ForcedDNF: forcedDNF,
			Message:   fmt.Sprintf("Loop %d criado com %d atletas!", next.NumeroLoop, len(qualifiers)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loop advanced",
		slog.Int("loop_id", loopID),
		slog.Int("qualified", result.Qualified),
		slog.Int("forced_dnf", result.ForcedDNF),
		slog.Bool("event_finished", result.EventFinished))
	return result, nil
}

// ChangeAthleteStatus is the manual correction path (disqualification, DNS,
// undoing a mistake). It does not fire the solo-victory rule.
func (s *raceService) ChangeAthleteStatus(ctx context.Context, atletaLoopID int, status models.AtletaLoopStatus, observacoes string) (*models.AtletaLoop, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var updated *models.AtletaLoop
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		al, err := s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}
		if _, err := s.loopRepo.LockByID(ctx, exec, al.LoopID); err != nil {
			return mapLoopRepoError(err)
		}

		al.Status = status
		if observacoes != "" {
			al.Observacoes = strPtr(observacoes)
		}
		if status.Terminal() && status != models.AtletaLoopStatusConcluido && al.TempoFim == nil {
			now := s.now()
			al.TempoFim = &now
		}
		if err := s.atletaLoopRepo.Update(ctx, exec, al); err != nil {
			return err
		}
		updated = al
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EditTime overrides a recorded loop time ("HH:MM:SS" or raw seconds) and
// recomputes the finish timestamp from the athlete's start.
func (s *raceService) EditTime(ctx context.Context, atletaLoopID int, tempoTotal string, observacoes string) (*models.AtletaLoop, error) {
	seconds, err := ParseTempoTotal(tempoTotal)
	if err != nil {
		return nil, err
	}

	var updated *models.AtletaLoop
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		al, err := s.atletaLoopRepo.GetByID(ctx, exec, atletaLoopID)
		if err != nil {
			return mapAtletaLoopRepoError(err)
		}
		if _, err := s.loopRepo.LockByID(ctx, exec, al.LoopID); err != nil {
			return mapLoopRepoError(err)
		}

		al.TempoTotalSegundos = &seconds
		if al.TempoInicio != nil {
			fim := al.TempoInicio.Add(time.Duration(seconds) * time.Second)
			al.TempoFim = &fim
		}
		if observacoes != "" {
			al.Observacoes = strPtr(observacoes)
		}
		if err := s.atletaLoopRepo.Update(ctx, exec, al); err != nil {
			return err
		}
		updated = al
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func mapBackyardRepoError(err error) error {
	if errors.Is(err, repositories.ErrBackyardNotFound) {
		return ErrBackyardNotFound
	}
	return err
}

func mapLoopRepoError(err error) error {
	if errors.Is(err, repositories.ErrLoopNotFound) {
		return ErrLoopNotFound
	}
	return err
}

func mapAtletaLoopRepoError(err error) error {
	if errors.Is(err, repositories.ErrAtletaLoopNotFound) {
		return ErrAtletaLoopNotFound
	}
	return err
}
