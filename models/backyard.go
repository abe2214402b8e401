package models

import "time"

// BackyardStatus represents the event lifecycle states, matching the ENUM in the DB.
type BackyardStatus string

const (
	BackyardStatusPreparacao BackyardStatus = "PREPARACAO"
	BackyardStatusAtivo      BackyardStatus = "ATIVO"
	BackyardStatusPausado    BackyardStatus = "PAUSADO"
	BackyardStatusFinalizado BackyardStatus = "FINALIZADO"
)

func (s BackyardStatus) Valid() bool {
	switch s {
	case BackyardStatusPreparacao, BackyardStatusAtivo, BackyardStatusPausado, BackyardStatusFinalizado:
		return true
	}
	return false
}

// CanTransitionTo enforces PREPARACAO→ATIVO→FINALIZADO, with PAUSADO
// reachable only from ATIVO. Terminal states allow nothing.
func (s BackyardStatus) CanTransitionTo(next BackyardStatus) bool {
	allowed := map[BackyardStatus][]BackyardStatus{
		BackyardStatusPreparacao: {BackyardStatusAtivo},
		BackyardStatusAtivo:      {BackyardStatusPausado, BackyardStatusFinalizado},
		BackyardStatusPausado:    {BackyardStatusAtivo},
		BackyardStatusFinalizado: {},
	}
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Backyard represents one race event.
type Backyard struct {
	ID                    int            `json:"id" db:"id"`
	Nome                  string         `json:"nome" db:"nome"`
	OrganizacaoID         int            `json:"organizacao_id" db:"organizacao_id"`
	Descricao             *string        `json:"descricao,omitempty" db:"descricao"`
	Endereco              *string        `json:"endereco,omitempty" db:"endereco"`
	Cidade                *string        `json:"cidade,omitempty" db:"cidade"`
	Estado                *string        `json:"estado,omitempty" db:"estado"`
	Pais                  *string        `json:"pais,omitempty" db:"pais"`
	Capacidade            int            `json:"capacidade" db:"capacidade"`
	NumeroInicial         int            `json:"numero_inicial" db:"numero_inicial"`
	Status                BackyardStatus `json:"status" db:"status"`
	DataEvento            *time.Time     `json:"data_evento,omitempty" db:"data_evento"`
	ProfilePictureKey     *string        `json:"-" db:"profile_picture_key"`
	ProfilePictureURL     *string        `json:"profile_picture_url,omitempty" db:"-"`
	LogoKey               *string        `json:"-" db:"logo_key"`
	LogoURL               *string        `json:"logo_url,omitempty" db:"-"`
	DataCriacao           time.Time      `json:"data_criacao" db:"data_criacao"`
	DataUltimaAtualizacao time.Time      `json:"data_ultima_atualizacao" db:"data_ultima_atualizacao"`

	// Optional related entities, not mapped directly.
	Organizacao *Organizacao `json:"organizacao,omitempty" db:"-"`
	Loops       []Loop       `json:"loops,omitempty" db:"-"`
	Inscricoes  []Inscricao  `json:"inscricoes,omitempty" db:"-"`
}

// UltimoNumeroPeito is the highest bib the configured window allows.
func (b *Backyard) UltimoNumeroPeito() int {
	return b.NumeroInicial + b.Capacidade - 1
}
