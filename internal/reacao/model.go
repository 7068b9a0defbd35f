package reacao

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("alvo da reação não encontrado")
	ErrValidation = errors.New("dados inválidos")
)

const (
	TipoPublicacao = "publicacao"
	TipoComentario = "comentario"
)

// Reacao é a relação "curtir" entre usuário e alvo; identidade composta,
// no máximo uma linha por (tipo_alvo, alvo_id, usuario_id).
type Reacao struct {
	TipoAlvo  string    `json:"tipo_alvo"`
	AlvoID    uuid.UUID `json:"alvo_id"`
	UsuarioID uuid.UUID `json:"usuario_id"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Alvo descreve o recurso reagido: dono para o fan-out e publicação para o link.
type Alvo struct {
	DonoID       uuid.UUID
	CidadeID     *uuid.UUID
	PublicacaoID uuid.UUID
}

// TipoConhecido valida o tipo de alvo.
func TipoConhecido(tipo string) bool {
	return tipo == TipoPublicacao || tipo == TipoComentario
}
