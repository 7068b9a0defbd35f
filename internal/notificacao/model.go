package notificacao

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("notificação não encontrada")
)

const (
	TipoComentario = "comment"
	TipoResposta   = "reply"
	TipoReacao     = "reaction"
	TipoMencao     = "mention"
	TipoSistema    = "system"
)

// Notificacao carrega dados denormalizados (tipo, snapshot do remetente,
// deep link) suficientes para renderizar sem join na leitura.
type Notificacao struct {
	ID             uuid.UUID  `json:"id"`
	DestinatarioID uuid.UUID  `json:"destinatario_id"`
	Tipo           string     `json:"tipo"`
	RemetenteID    *uuid.UUID `json:"remetente_id,omitempty"`
	RemetenteNome  string     `json:"remetente_nome,omitempty"`
	Link           string     `json:"link"`
	Lida           bool       `json:"lida"`
	CriadoEm       time.Time  `json:"criado_em"`
}

// CriarNotificacaoInput encapsula os campos de criação.
type CriarNotificacaoInput struct {
	DestinatarioID uuid.UUID
	Tipo           string
	RemetenteID    *uuid.UUID
	RemetenteNome  string
	Link           string
}
