package perfil

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("perfil não encontrado")
	ErrEmailEmUso = errors.New("email já cadastrado")
)

const (
	PapelUsuario = "user"
	PapelAdmin   = "admin"
)

// Pontuação concedida por contribuição. O nível é derivado dos pontos
// e recalculado no próprio UPDATE; nada aqui é autoritativo.
const (
	PontosPublicacao = 10
	PontosComentario = 2
)

// Perfil representa um morador autenticado na plataforma.
type Perfil struct {
	ID        uuid.UUID  `json:"id"`
	Nome      string     `json:"nome"`
	Email     string     `json:"email"`
	Papel     string     `json:"papel"`
	CidadeID  *uuid.UUID `json:"cidade_id,omitempty"`
	Pontos    int        `json:"pontos"`
	Nivel     int        `json:"nivel"`
	Ativo     bool       `json:"ativo"`
	CriadoEm  time.Time  `json:"criado_em"`
	SenhaHash string     `json:"-"`
}

// CriarPerfilInput encapsula os campos do cadastro.
type CriarPerfilInput struct {
	Nome      string
	Email     string
	SenhaHash string
	CidadeID  *uuid.UUID
}

// Ator é o principal explícito de cada operação (sem estado global).
type Ator struct {
	ID              uuid.UUID
	PlataformaAdmin bool
}

// EhPlataformaAdmin indica papel admin da plataforma (não confundir com admin de cidade).
func (p Perfil) EhPlataformaAdmin() bool {
	return p.Papel == PapelAdmin
}
