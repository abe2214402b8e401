package services

import (
	"context"
	"errors"
	"testing"

	"github.com/glaucius/back-to-the-loop/models"
)

func newInscricaoServiceForTest(s *fakeState) InscricaoService {
	return NewInscricaoService(fakeInscricaoRepo{s}, fakeBackyardRepo{s}, fakeAtletaRepo{s})
}

func TestRegister(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard do Vale", Capacidade: 2, NumeroInicial: 1, Status: models.BackyardStatusPreparacao})
	a1 := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})
	a2 := s.addAtleta(models.Atleta{Nome: "Bruno", Email: "bruno@example.com"})
	a3 := s.addAtleta(models.Atleta{Nome: "Carla", Email: "carla@example.com"})

	svc := newInscricaoServiceForTest(s)

	inscricao, err := svc.Register(context.Background(), a1.ID, backyard.ID)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if inscricao.StatusInscricao != models.InscricaoStatusInscrito {
		t.Errorf("status = %s, want inscrito", inscricao.StatusInscricao)
	}
	if inscricao.NumeroPeito != nil {
		t.Error("bib number is assigned by the allocator, not at registration")
	}

	// One registration per athlete per backyard.
	if _, err := svc.Register(context.Background(), a1.ID, backyard.ID); !errors.Is(err, ErrRegistrationConflict) {
		t.Errorf("duplicate: err = %v, want ErrRegistrationConflict", err)
	}

	if _, err := svc.Register(context.Background(), a2.ID, backyard.ID); err != nil {
		t.Fatalf("Register (second): %v", err)
	}
	// Capacity reached.
	if _, err := svc.Register(context.Background(), a3.ID, backyard.ID); !errors.Is(err, ErrBackyardFull) {
		t.Errorf("over capacity: err = %v, want ErrBackyardFull", err)
	}

	vagas, err := svc.VagasRestantes(context.Background(), backyard.ID)
	if err != nil || vagas != 0 {
		t.Errorf("VagasRestantes = (%d, %v), want (0, nil)", vagas, err)
	}
}

func TestRegisterOnlyWhilePreparing(t *testing.T) {
	s := newFakeState()
	running := s.addBackyard(models.Backyard{Nome: "Correndo", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusAtivo})
	atleta := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})

	svc := newInscricaoServiceForTest(s)
	if _, err := svc.Register(context.Background(), atleta.ID, running.ID); !errors.Is(err, ErrRegistrationNotOpen) {
		t.Errorf("err = %v, want ErrRegistrationNotOpen", err)
	}
}

func TestRegisterUnknownAthlete(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusPreparacao})

	svc := newInscricaoServiceForTest(s)
	if _, err := svc.Register(context.Background(), 9999, backyard.ID); !errors.Is(err, ErrAtletaNotFound) {
		t.Errorf("err = %v, want ErrAtletaNotFound", err)
	}
}

func TestCancel(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusPreparacao})
	atleta := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})
	inscricao := s.addInscricao(models.Inscricao{AtletaID: atleta.ID, BackyardID: backyard.ID, StatusInscricao: models.InscricaoStatusInscrito})

	svc := newInscricaoServiceForTest(s)
	if err := svc.Cancel(context.Background(), atleta.ID, backyard.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if s.inscricoes[inscricao.ID].StatusInscricao != models.InscricaoStatusCancelado {
		t.Errorf("status = %s, want cancelado", s.inscricoes[inscricao.ID].StatusInscricao)
	}

	if err := svc.Cancel(context.Background(), 9999, backyard.ID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Errorf("unknown athlete: err = %v, want ErrRegistrationNotFound", err)
	}
}

func TestCancelRejectedWhileRacing(t *testing.T) {
	s := newFakeState()
	backyard := s.addBackyard(models.Backyard{Nome: "Backyard", Capacidade: 10, NumeroInicial: 1, Status: models.BackyardStatusAtivo})
	atleta := s.addAtleta(models.Atleta{Nome: "Ana", Email: "ana@example.com"})
	s.addInscricao(models.Inscricao{AtletaID: atleta.ID, BackyardID: backyard.ID, StatusInscricao: models.InscricaoStatusInscrito})

	svc := newInscricaoServiceForTest(s)
	if err := svc.Cancel(context.Background(), atleta.ID, backyard.ID); !errors.Is(err, ErrCancelWhileActive) {
		t.Errorf("err = %v, want ErrCancelWhileActive", err)
	}
}
