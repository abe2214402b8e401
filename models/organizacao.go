package models

import "time"

// Organizacao groups the backyards run by one organizing entity.
type Organizacao struct {
	ID                    int       `json:"id" db:"id"`
	Nome                  string    `json:"nome" db:"nome"`
	OrganizadorID         int       `json:"organizador_id" db:"organizador_id"`
	DataCriacao           time.Time `json:"data_criacao" db:"data_criacao"`
	DataUltimaAtualizacao time.Time `json:"data_ultima_atualizacao" db:"data_ultima_atualizacao"`
}
