package cidade

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("cidade não encontrada")
	// ErrIndisponivel sinaliza assinatura vencida ou inexistente.
	// Distinto de ErrNotFound: a cidade existe, mas não aceita leitura/escrita.
	ErrIndisponivel = errors.New("cidade indisponível")
	ErrSlugEmUso    = errors.New("slug já cadastrado")
	ErrValidation   = errors.New("dados inválidos")
)

const (
	AssinaturaAtiva    = "active"
	AssinaturaTrial    = "trial"
	AssinaturaExpirada = "expired"
	AssinaturaNenhuma  = "none"
)

var assinaturasValidas = map[string]struct{}{
	AssinaturaAtiva:    {},
	AssinaturaTrial:    {},
	AssinaturaExpirada: {},
	AssinaturaNenhuma:  {},
}

// Cidade representa um bairro/município atendido pela plataforma.
type Cidade struct {
	ID             uuid.UUID      `json:"id"`
	Slug           string         `json:"slug"`
	Nome           string         `json:"nome"`
	Assinatura     string         `json:"assinatura"`
	Tema           map[string]any `json:"tema"`
	ModeracaoAtiva bool           `json:"moderacao_ativa"`
	CriadoEm       time.Time      `json:"criado_em"`
	AtualizadoEm   time.Time      `json:"atualizado_em"`
}

// AssinaturaLiberada indica se a cidade pode ser lida e receber publicações.
func (c Cidade) AssinaturaLiberada() bool {
	return c.Assinatura == AssinaturaAtiva || c.Assinatura == AssinaturaTrial
}

// CriarCidadeInput contém os campos necessários para registrar uma cidade.
type CriarCidadeInput struct {
	Slug           string
	Nome           string
	Assinatura     string
	Tema           map[string]any
	ModeracaoAtiva bool
}

// AssinaturaConhecida valida o status contra o enum fixo.
func AssinaturaConhecida(status string) bool {
	_, ok := assinaturasValidas[status]
	return ok
}
