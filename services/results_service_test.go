package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
)

func newResultsServiceForTest(s *fakeState) ResultsService {
	return NewResultsService(fakeBackyardRepo{s}, fakeLoopRepo{s}, fakeAtletaLoopRepo{s}, fakeInscricaoRepo{s}, fakeAtletaRepo{s})
}

func TestGetLiveView(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard do Vale", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusAtivo})
	start := time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC)

	s.addLoop(models.Loop{BackyardID: backyard.ID, NumeroLoop: 1, Status: models.LoopStatusFinalizado, DataInicio: &start, TempoLimite: 3600})
	current := s.addLoop(models.Loop{BackyardID: backyard.ID, NumeroLoop: 2, Status: models.LoopStatusAtivo, DataInicio: &start, TempoLimite: 3600})

	ana := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})
	bruno := s.addAtleta(models.Atleta{Nome: "Bruno", Email: "bruno@example.com"})
	carla := s.addAtleta(models.Atleta{Nome: "Carla", Email: "carla@example.com"})
	s.addInscricao(models.Inscricao{AtletaID: ana.ID, BackyardID: backyard.ID, NumeroPeito: intPtr(1), StatusInscricao: models.InscricaoStatusInscrito})
	s.addInscricao(models.Inscricao{AtletaID: bruno.ID, BackyardID: backyard.ID, NumeroPeito: intPtr(2), StatusInscricao: models.InscricaoStatusInscrito})
	s.addInscricao(models.Inscricao{AtletaID: carla.ID, BackyardID: backyard.ID, NumeroPeito: intPtr(3), StatusInscricao: models.InscricaoStatusInscrito})

	s.addAtletaLoop(models.AtletaLoop{AtletaID: ana.ID, LoopID: current.ID, Status: models.AtletaLoopStatusConcluido, TempoTotalSegundos: intPtr(3150)})
	s.addAtletaLoop(models.AtletaLoop{AtletaID: bruno.ID, LoopID: current.ID, Status: models.AtletaLoopStatusAtivo})
	s.addAtletaLoop(models.AtletaLoop{AtletaID: carla.ID, LoopID: current.ID, Status: models.AtletaLoopStatusDNF})

	svc := newResultsServiceForTest(s)
	view, err := svc.GetLiveView(context.Background(), backyard.ID)
	if err != nil {
		t.Fatalf("GetLiveView: %v", err)
	}

	if view.LoopAtual == nil || view.LoopAtual.ID != current.ID {
		t.Fatalf("loop_atual = %+v, want loop %d", view.LoopAtual, current.ID)
	}
	if view.TotalLoops != 2 {
		t.Errorf("total_loops = %d, want 2", view.TotalLoops)
	}
	if view.Stats != (LoopStats{Total: 3, Ativos: 1, Concluidos: 1, Eliminados: 1}) {
		t.Errorf("stats = %+v", view.Stats)
	}

	if len(view.Atletas) != 3 {
		t.Fatalf("atletas = %d rows, want 3", len(view.Atletas))
	}
	// Active runners first, finishers second, eliminated last.
	if view.Atletas[0].Nome != "Bruno" || view.Atletas[1].Nome != "Ana" || view.Atletas[2].Nome != "Carla" {
		t.Errorf("ordering = [%s %s %s], want [Bruno Ana Carla]",
			view.Atletas[0].Nome, view.Atletas[1].Nome, view.Atletas[2].Nome)
	}
	if view.Atletas[1].TempoFormatado != "52:30" {
		t.Errorf("Ana tempo = %q, want \"52:30\"", view.Atletas[1].TempoFormatado)
	}
	if view.Atletas[0].NumeroPeito == nil || *view.Atletas[0].NumeroPeito != 2 {
		t.Errorf("Bruno numero_peito = %v, want 2", view.Atletas[0].NumeroPeito)
	}
}

func TestGetLiveViewBeforeAnyLoop(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard Novo", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusPreparacao})

	svc := newResultsServiceForTest(s)
	view, err := svc.GetLiveView(context.Background(), backyard.ID)
	if err != nil {
		t.Fatalf("GetLiveView: %v", err)
	}
	if view.LoopAtual != nil {
		t.Error("no loop exists yet")
	}
	if len(view.Atletas) != 0 {
		t.Errorf("atletas = %d rows, want 0", len(view.Atletas))
	}
}

func TestGetLiveViewUnknownBackyard(t *testing.T) {
	svc := newResultsServiceForTest(newFakeState())
	if _, err := svc.GetLiveView(context.Background(), 42); !errors.Is(err, ErrBackyardNotFound) {
		t.Errorf("err = %v, want ErrBackyardNotFound", err)
	}
}

func TestGetLoopResults(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusFinalizado})
	loop := s.addLoop(models.Loop{BackyardID: backyard.ID, NumeroLoop: 3, Status: models.LoopStatusFinalizado, TempoLimite: 3600})
	ana := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})
	bruno := s.addAtleta(models.Atleta{Nome: "Bruno", Email: "bruno@example.com"})
	s.addAtletaLoop(models.AtletaLoop{AtletaID: ana.ID, LoopID: loop.ID, Status: models.AtletaLoopStatusConcluido, TempoTotalSegundos: intPtr(3300)})
	s.addAtletaLoop(models.AtletaLoop{AtletaID: bruno.ID, LoopID: loop.ID, Status: models.AtletaLoopStatusConcluido, TempoTotalSegundos: intPtr(3100)})

	svc := newResultsServiceForTest(s)
	got, atletas, err := svc.GetLoopResults(context.Background(), loop.ID)
	if err != nil {
		t.Fatalf("GetLoopResults: %v", err)
	}
	if got.ID != loop.ID {
		t.Errorf("loop id = %d, want %d", got.ID, loop.ID)
	}
	if len(atletas) != 2 {
		t.Fatalf("atletas = %d rows, want 2", len(atletas))
	}
	// Fastest finisher first.
	if atletas[0].Nome != "Bruno" {
		t.Errorf("first = %s, want Bruno", atletas[0].Nome)
	}

	if _, _, err := svc.GetLoopResults(context.Background(), 9999); !errors.Is(err, ErrLoopNotFound) {
		t.Errorf("unknown loop: err = %v, want ErrLoopNotFound", err)
	}
}
