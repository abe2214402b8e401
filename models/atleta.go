package models

import "time"

// Atleta is a runner registered on the public frontend.
type Atleta struct {
	ID             int        `json:"id" db:"id"`
	Nome           string     `json:"nome" db:"nome"`
	CPF            string     `json:"cpf" db:"cpf"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	DataNascimento *time.Time `json:"data_nascimento,omitempty" db:"data_nascimento"`
	ImagemPerfil   *string    `json:"-" db:"imagem_perfil_key"`
	ImagemURL      *string    `json:"imagem_url,omitempty" db:"-"`
	Endereco       *string    `json:"endereco,omitempty" db:"endereco"`
	Cidade         *string    `json:"cidade,omitempty" db:"cidade"`
	Estado         *string    `json:"estado,omitempty" db:"estado"`
	Pais           *string    `json:"pais,omitempty" db:"pais"`
	CriadoEm       time.Time  `json:"criado_em" db:"criado_em"`
	AtualizadoEm   time.Time  `json:"atualizado_em" db:"atualizado_em"`
}
