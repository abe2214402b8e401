package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
	"golang.org/x/sync/errgroup"
)

// AtletaLoopView is one row of the live standings.
type AtletaLoopView struct {
	AtletaLoopID   int                     `json:"atleta_loop_id"`
	AtletaID       int                     `json:"atleta_id"`
	Nome           string                  `json:"nome"`
	NumeroPeito    *int                    `json:"numero_peito,omitempty"`
	Status         models.AtletaLoopStatus `json:"status"`
	TempoFormatado string                  `json:"tempo_formatado"`
	Observacoes    *string                 `json:"observacoes,omitempty"`
}

type LoopStats struct {
	Total      int `json:"total"`
	Ativos     int `json:"ativos"`
	Concluidos int `json:"concluidos"`
	Eliminados int `json:"eliminados"` // ELIMINADO + DNF + DNS
}

// LiveView is the pollable snapshot of a running backyard: the current loop,
// its roster ordered for display, and the loop history. There is no push
// channel; clients poll this endpoint.
type LiveView struct {
	Backyard   *models.Backyard `json:"backyard"`
	LoopAtual  *models.Loop     `json:"loop_atual,omitempty"`
	Atletas    []AtletaLoopView `json:"atletas"`
	Stats      LoopStats        `json:"stats"`
	TotalLoops int              `json:"total_loops"`
	Loops      []models.Loop    `json:"loops"`
}

type ResultsService interface {
	GetLiveView(ctx context.Context, backyardID int) (*LiveView, error)
	GetLoopResults(ctx context.Context, loopID int) (*models.Loop, []AtletaLoopView, error)
}

type resultsService struct {
	backyardRepo   repositories.BackyardRepository
	loopRepo       repositories.LoopRepository
	atletaLoopRepo repositories.AtletaLoopRepository
	inscricaoRepo  repositories.InscricaoRepository
	atletaRepo     repositories.AtletaRepository
}

func NewResultsService(
	backyardRepo repositories.BackyardRepository,
	loopRepo repositories.LoopRepository,
	atletaLoopRepo repositories.AtletaLoopRepository,
	inscricaoRepo repositories.InscricaoRepository,
	atletaRepo repositories.AtletaRepository,
) ResultsService {
	return &resultsService{
		backyardRepo:   backyardRepo,
		loopRepo:       loopRepo,
		atletaLoopRepo: atletaLoopRepo,
		inscricaoRepo:  inscricaoRepo,
		atletaRepo:     atletaRepo,
	}
}

func (s *resultsService) GetLiveView(ctx context.Context, backyardID int) (*LiveView, error) {
	var (
		backyard   *models.Backyard
		loops      []models.Loop
		current    *models.Loop
		inscricoes []models.Inscricao
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		backyard, err = s.backyardRepo.GetByID(gCtx, nil, backyardID)
		return mapBackyardRepoError(err)
	})
	g.Go(func() error {
		var err error
		loops, err = s.loopRepo.ListByBackyard(gCtx, backyardID)
		return err
	})
	g.Go(func() error {
		l, err := s.loopRepo.GetCurrent(gCtx, nil, backyardID)
		if err != nil {
			// A backyard with no loops yet has no current loop.
			if errors.Is(err, repositories.ErrLoopNotFound) {
				return nil
			}
			return err
		}
		current = l
		return nil
	})
	g.Go(func() error {
		var err error
		inscricoes, err = s.inscricaoRepo.ListByBackyard(gCtx, nil, backyardID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &LiveView{
		Backyard:   backyard,
		Atletas:    []AtletaLoopView{},
		TotalLoops: len(loops),
		Loops:      loops,
	}

	if current == nil {
		return view, nil
	}
	view.LoopAtual = current

	rows, err := s.atletaLoopRepo.ListByLoop(ctx, nil, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load athletes of loop %d: %w", current.ID, err)
	}

	bibByAtleta := make(map[int]*int, len(inscricoes))
	for i := range inscricoes {
		bibByAtleta[inscricoes[i].AtletaID] = inscricoes[i].NumeroPeito
	}

	views, stats, err := s.buildViews(ctx, rows, bibByAtleta)
	if err != nil {
		return nil, err
	}
	view.Atletas = views
	view.Stats = stats
	return view, nil
}

func (s *resultsService) GetLoopResults(ctx context.Context, loopID int) (*models.Loop, []AtletaLoopView, error) {
	loop, err := s.loopRepo.GetByID(ctx, nil, loopID)
	if err != nil {
		return nil, nil, mapLoopRepoError(err)
	}
	rows, err := s.atletaLoopRepo.ListByLoop(ctx, nil, loopID)
	if err != nil {
		return nil, nil, err
	}
	views, _, err := s.buildViews(ctx, rows, nil)
	if err != nil {
		return nil, nil, err
	}
	return loop, views, nil
}

func (s *resultsService) buildViews(ctx context.Context, rows []models.AtletaLoop, bibByAtleta map[int]*int) ([]AtletaLoopView, LoopStats, error) {
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AtletaID)
	}
	atletas, err := s.atletaRepo.ListByIDs(ctx, nil, ids)
	if err != nil {
		return nil, LoopStats{}, fmt.Errorf("failed to load athletes: %w", err)
	}
	nameByID := make(map[int]string, len(atletas))
	for _, a := range atletas {
		nameByID[a.ID] = a.Nome
	}

	views := make([]AtletaLoopView, 0, len(rows))
	var stats LoopStats
	for _, r := range rows {
		stats.Total++
		switch r.Status {
		case models.AtletaLoopStatusAtivo:
			stats.Ativos++
		case models.AtletaLoopStatusConcluido:
			stats.Concluidos++
		case models.AtletaLoopStatusEliminado, models.AtletaLoopStatusDNF, models.AtletaLoopStatusDNS:
			stats.Eliminados++
		}

		v := AtletaLoopView{
			AtletaLoopID:   r.ID,
			AtletaID:       r.AtletaID,
			Nome:           nameByID[r.AtletaID],
			Status:         r.Status,
			TempoFormatado: r.TempoFormatado(),
			Observacoes:    r.Observacoes,
		}
		if bibByAtleta != nil {
			v.NumeroPeito = bibByAtleta[r.AtletaID]
		}
		views = append(views, v)
	}

	// Active runners first, then finishers by time, then the eliminated.
	priority := map[models.AtletaLoopStatus]int{
		models.AtletaLoopStatusAtivo:     1,
		models.AtletaLoopStatusConcluido: 2,
		models.AtletaLoopStatusEliminado: 3,
		models.AtletaLoopStatusDNF:       3,
		models.AtletaLoopStatusDNS:       3,
	}
	tempo := func(i int) int {
		for _, r := range rows {
			if r.ID == views[i].AtletaLoopID && r.TempoTotalSegundos != nil {
				return *r.TempoTotalSegundos
			}
		}
		return 1 << 30
	}
	sort.SliceStable(views, func(i, j int) bool {
		pi, pj := priority[views[i].Status], priority[views[j].Status]
		if pi != pj {
			return pi < pj
		}
		ti, tj := tempo(i), tempo(j)
		if ti != tj {
			return ti < tj
		}
		return views[i].Nome < views[j].Nome
	})

	return views, stats, nil
}
