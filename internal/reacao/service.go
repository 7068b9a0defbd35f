package reacao

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReacaoRepository abstrai o armazenamento de reações.
type ReacaoRepository interface {
	AlvoInfo(ctx context.Context, tipo string, alvoID uuid.UUID) (*Alvo, error)
	Toggle(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error)
	JaReagiu(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error)
	ContarPara(ctx context.Context, tipo string, alvoID uuid.UUID) (int, error)
}

// Autorizador valida disponibilidade do tenant antes da mutação.
type Autorizador interface {
	Disponivel(ctx context.Context, cidadeID uuid.UUID) error
}

// Notificador dispara o fan-out de reação (implementado por notificacao.Service).
type Notificador interface {
	NotificarReacao(ctx context.Context, destinatario, remetente uuid.UUID, tipoAlvo string, publicacaoID uuid.UUID) error
}

// Service contém as regras do toggle de reação.
type Service struct {
	repo        ReacaoRepository
	guard       Autorizador
	notificador Notificador
}

// NewService cria uma nova instância do serviço.
func NewService(repo ReacaoRepository, guard Autorizador, notificador Notificador) *Service {
	return &Service{repo: repo, guard: guard, notificador: notificador}
}

// ToggleResult carrega o booleano autoritativo devolvido ao cliente,
// que o usa para reconciliar o ajuste otimista de contagem local.
type ToggleResult struct {
	Reagiu bool `json:"reagiu"`
}

// Toggle alterna a reação do usuário ao alvo: cria se não existe, remove se
// existe. Reagir ao próprio conteúdo é permitido; o fan-out exclui
// autonotificação, então não há laço.
func (s *Service) Toggle(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (*ToggleResult, error) {
	if !TipoConhecido(tipo) {
		return nil, fmt.Errorf("%w: tipo de alvo desconhecido", ErrValidation)
	}

	alvo, err := s.repo.AlvoInfo(ctx, tipo, alvoID)
	if err != nil {
		return nil, err
	}

	if alvo.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *alvo.CidadeID); err != nil {
			return nil, err
		}
	}

	reagiu, err := s.repo.Toggle(ctx, tipo, alvoID, usuarioID)
	if err != nil {
		return nil, err
	}

	// Notifica apenas na criação; remover a reação não retrai a notificação.
	if reagiu && s.notificador != nil {
		if err := s.notificador.NotificarReacao(ctx, alvo.DonoID, usuarioID, tipo, alvo.PublicacaoID); err != nil {
			log.Warn().Err(err).Str("alvo_id", alvoID.String()).Msg("fan-out de reação falhou")
		}
	}

	return &ToggleResult{Reagiu: reagiu}, nil
}

// JaReagiu expõe o caminho de leitura usado na anotação da árvore de comentários.
func (s *Service) JaReagiu(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error) {
	if !TipoConhecido(tipo) {
		return false, fmt.Errorf("%w: tipo de alvo desconhecido", ErrValidation)
	}
	return s.repo.JaReagiu(ctx, tipo, alvoID, usuarioID)
}
