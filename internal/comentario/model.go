package comentario

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("comentário não encontrado")
	ErrForbidden  = errors.New("sem acesso")
	ErrValidation = errors.New("dados inválidos")
)

// MaxConteudo limita o tamanho do comentário em caracteres.
const MaxConteudo = 1000

// Comentario representa um comentário ou resposta (profundidade máxima 1).
// ReacoesCount e ViewerReagiu são derivados na leitura da árvore.
type Comentario struct {
	ID           uuid.UUID    `json:"id"`
	PublicacaoID uuid.UUID    `json:"publicacao_id"`
	UsuarioID    uuid.UUID    `json:"usuario_id"`
	UsuarioNome  string       `json:"usuario_nome"`
	ParentID     *uuid.UUID   `json:"parent_id,omitempty"`
	Conteudo     string       `json:"conteudo"`
	CriadoEm     time.Time    `json:"criado_em"`
	ReacoesCount int          `json:"reacoes_count"`
	ViewerReagiu bool         `json:"viewer_reagiu"`
	Respostas    []Comentario `json:"respostas,omitempty"`
}

// CriarComentarioInput encapsula os campos de criação.
type CriarComentarioInput struct {
	PublicacaoID uuid.UUID
	UsuarioID    uuid.UUID
	ParentID     *uuid.UUID
	Conteudo     string
}

// InfoPublicacao carrega o necessário para guard e fan-out do comentário.
type InfoPublicacao struct {
	DonoID   uuid.UUID
	CidadeID *uuid.UUID
}
