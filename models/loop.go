package models

import "time"

// LoopStatus represents the states of one elimination round.
type LoopStatus string

const (
	LoopStatusPreparacao LoopStatus = "PREPARACAO"
	LoopStatusAtivo      LoopStatus = "ATIVO"
	LoopStatusFinalizado LoopStatus = "FINALIZADO"
)

func (s LoopStatus) Valid() bool {
	switch s {
	case LoopStatusPreparacao, LoopStatusAtivo, LoopStatusFinalizado:
		return true
	}
	return false
}

func (s LoopStatus) CanTransitionTo(next LoopStatus) bool {
	allowed := map[LoopStatus][]LoopStatus{
		LoopStatusPreparacao: {LoopStatusAtivo},
		LoopStatusAtivo:      {LoopStatusFinalizado},
		LoopStatusFinalizado: {},
	}
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Loop is one timed elimination round within a backyard. Loop numbers are
// gapless and strictly increasing; at most one loop per backyard may be
// outside FINALIZADO at any time.
type Loop struct {
	ID          int        `json:"id" db:"id"`
	BackyardID  int        `json:"backyard_id" db:"backyard_id"`
	NumeroLoop  int        `json:"numero_loop" db:"numero_loop"`
	Status      LoopStatus `json:"status" db:"status"`
	DataInicio  *time.Time `json:"data_inicio,omitempty" db:"data_inicio"`
	DataFim     *time.Time `json:"data_fim,omitempty" db:"data_fim"`
	TempoLimite int        `json:"tempo_limite" db:"tempo_limite"` // seconds
	DistanciaKM float64    `json:"distancia_km" db:"distancia_km"`
	CriadoEm    time.Time  `json:"criado_em" db:"criado_em"`

	Atletas []AtletaLoop `json:"atletas,omitempty" db:"-"`
}

// TimedOut reports whether the round has run past its time limit. A loop
// that never formally started cannot time out.
func (l *Loop) TimedOut(now time.Time) bool {
	if l.Status != LoopStatusAtivo || l.DataInicio == nil {
		return false
	}
	return now.Sub(*l.DataInicio) > time.Duration(l.TempoLimite)*time.Second
}
