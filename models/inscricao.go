package models

import "time"

// InscricaoStatus represents the registration states of an athlete in a backyard.
type InscricaoStatus string

const (
	InscricaoStatusInscrito   InscricaoStatus = "inscrito"
	InscricaoStatusCancelado  InscricaoStatus = "cancelado"
	InscricaoStatusFinalizado InscricaoStatus = "finalizado"
)

func (s InscricaoStatus) Valid() bool {
	switch s {
	case InscricaoStatusInscrito, InscricaoStatusCancelado, InscricaoStatusFinalizado:
		return true
	}
	return false
}

// Inscricao links an athlete to a backyard (atleta_backyard). At most one
// registration per (atleta, backyard); bib numbers are unique per backyard
// and nullable until the allocator assigns them.
type Inscricao struct {
	ID              int             `json:"id" db:"id"`
	AtletaID        int             `json:"atleta_id" db:"atleta_id"`
	BackyardID      int             `json:"backyard_id" db:"backyard_id"`
	NumeroPeito     *int            `json:"numero_peito,omitempty" db:"numero_peito"`
	StatusInscricao InscricaoStatus `json:"status_inscricao" db:"status_inscricao"`
	DataInscricao   time.Time       `json:"data_inscricao" db:"data_inscricao"`

	Atleta *Atleta `json:"atleta,omitempty" db:"-"`
}
