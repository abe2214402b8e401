package models

import "time"

// UserRole mirrors the backoffice profiles. Athletes authenticate separately
// and carry RoleAtleta in their tokens; they have no backoffice user row.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleOrganizador UserRole = "organizador"
	RoleAtleta      UserRole = "atleta"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganizador, RoleAtleta:
		return true
	}
	return false
}

// User is a backoffice user (administrator or organizer).
type User struct {
	ID            int       `json:"id" db:"id"`
	Nome          string    `json:"nome" db:"nome"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Role          UserRole  `json:"role" db:"role"`
	OrganizacaoID *int      `json:"organizacao_id,omitempty" db:"organizacao_id"`
	CriadoEm      time.Time `json:"criado_em" db:"criado_em"`
	AtualizadoEm  time.Time `json:"atualizado_em" db:"atualizado_em"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
