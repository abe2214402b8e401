package models

import (
	"fmt"
	"time"
)

// AtletaLoopStatus represents an athlete's state within a single loop.
type AtletaLoopStatus string

const (
	AtletaLoopStatusAtivo     AtletaLoopStatus = "ATIVO"
	AtletaLoopStatusConcluido AtletaLoopStatus = "CONCLUIDO"
	AtletaLoopStatusEliminado AtletaLoopStatus = "ELIMINADO"
	AtletaLoopStatusDNF       AtletaLoopStatus = "DNF"
	AtletaLoopStatusDNS       AtletaLoopStatus = "DNS"
)

func (s AtletaLoopStatus) Valid() bool {
	switch s {
	case AtletaLoopStatusAtivo, AtletaLoopStatusConcluido, AtletaLoopStatusEliminado,
		AtletaLoopStatusDNF, AtletaLoopStatusDNS:
		return true
	}
	return false
}

// Terminal reports whether the athlete has left the ACTIVE sub-state of the
// loop. A loop is closed once every participant is terminal.
func (s AtletaLoopStatus) Terminal() bool {
	return s.Valid() && s != AtletaLoopStatusAtivo
}

// AtletaLoop is one athlete's participation record for one specific loop,
// unique per (atleta, loop). Exactly one terminal status per loop.
type AtletaLoop struct {
	ID                 int              `json:"id" db:"id"`
	AtletaID           int              `json:"atleta_id" db:"atleta_id"`
	LoopID             int              `json:"loop_id" db:"loop_id"`
	Status             AtletaLoopStatus `json:"status" db:"status"`
	TempoInicio        *time.Time       `json:"tempo_inicio,omitempty" db:"tempo_inicio"`
	TempoFim           *time.Time       `json:"tempo_fim,omitempty" db:"tempo_fim"`
	TempoTotalSegundos *int             `json:"tempo_total_segundos,omitempty" db:"tempo_total_segundos"`
	Observacoes        *string          `json:"observacoes,omitempty" db:"observacoes"`
	AtualizadoEm       time.Time        `json:"atualizado_em" db:"atualizado_em"`

	Atleta *Atleta `json:"atleta,omitempty" db:"-"`
}

// TempoFormatado renders the recorded loop time as "MM:SS" for the UI layer.
func (al *AtletaLoop) TempoFormatado() string {
	if al.TempoTotalSegundos == nil {
		return "--:--"
	}
	total := *al.TempoTotalSegundos
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
