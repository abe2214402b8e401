package models

import (
	"testing"
	"time"
)

func TestLoopTimedOut(t *testing.T) {
	start := time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC)
	loop := Loop{Status: LoopStatusAtivo, DataInicio: &start, TempoLimite: 3600}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"one second before the limit", start.Add(3599 * time.Second), false},
		{"exactly at the limit", start.Add(3600 * time.Second), false},
		{"one second past the limit", start.Add(3601 * time.Second), true},
		{"well past the limit", start.Add(2 * time.Hour), true},
	}
	for _, tt := range tests {
		if got := loop.TimedOut(tt.at); got != tt.want {
			t.Errorf("%s: TimedOut = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoopTimedOutRequiresActiveStartedLoop(t *testing.T) {
	start := time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC)
	late := start.Add(3 * time.Hour)

	unstarted := Loop{Status: LoopStatusAtivo, TempoLimite: 3600}
	if unstarted.TimedOut(late) {
		t.Error("a loop without data_inicio cannot time out")
	}

	finished := Loop{Status: LoopStatusFinalizado, DataInicio: &start, TempoLimite: 3600}
	if finished.TimedOut(late) {
		t.Error("a finished loop cannot time out")
	}
}

func TestBackyardStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BackyardStatus
		want     bool
	}{
		{BackyardStatusPreparacao, BackyardStatusAtivo, true},
		{BackyardStatusPreparacao, BackyardStatusFinalizado, false},
		{BackyardStatusAtivo, BackyardStatusPausado, true},
		{BackyardStatusAtivo, BackyardStatusFinalizado, true},
		{BackyardStatusPausado, BackyardStatusAtivo, true},
		{BackyardStatusPausado, BackyardStatusFinalizado, false},
		{BackyardStatusFinalizado, BackyardStatusAtivo, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestLoopStatusTransitions(t *testing.T) {
	if !LoopStatusPreparacao.CanTransitionTo(LoopStatusAtivo) {
		t.Error("PREPARACAO must allow ATIVO")
	}
	if LoopStatusPreparacao.CanTransitionTo(LoopStatusFinalizado) {
		t.Error("PREPARACAO must not skip to FINALIZADO")
	}
	if !LoopStatusAtivo.CanTransitionTo(LoopStatusFinalizado) {
		t.Error("ATIVO must allow FINALIZADO")
	}
	if LoopStatusFinalizado.CanTransitionTo(LoopStatusAtivo) {
		t.Error("FINALIZADO is terminal")
	}
}

func TestUltimoNumeroPeito(t *testing.T) {
	b := Backyard{NumeroInicial: 100, Capacidade: 50}
	if got := b.UltimoNumeroPeito(); got != 149 {
		t.Errorf("UltimoNumeroPeito = %d, want 149", got)
	}
}

func TestAtletaLoopTerminal(t *testing.T) {
	for _, st := range []AtletaLoopStatus{AtletaLoopStatusConcluido, AtletaLoopStatusEliminado, AtletaLoopStatusDNF, AtletaLoopStatusDNS} {
		if !st.Terminal() {
			t.Errorf("%s must be terminal", st)
		}
	}
	if AtletaLoopStatusAtivo.Terminal() {
		t.Error("ATIVO is not terminal")
	}
	if AtletaLoopStatus("FOO").Terminal() {
		t.Error("unknown status is not terminal")
	}
}
