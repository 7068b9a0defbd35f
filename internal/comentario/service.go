package comentario

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
)

// ComentarioRepository abstrai o armazenamento de comentários.
type ComentarioRepository interface {
	PublicacaoInfo(ctx context.Context, publicacaoID uuid.UUID) (*InfoPublicacao, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comentario, error)
	Create(ctx context.Context, input CriarComentarioInput) (*Comentario, error)
	Delete(ctx context.Context, id, publicacaoID uuid.UUID) (int, error)
	ListByPublicacao(ctx context.Context, publicacaoID uuid.UUID, viewerID *uuid.UUID) ([]Comentario, error)
}

// Autorizador valida disponibilidade do tenant antes da mutação.
type Autorizador interface {
	Disponivel(ctx context.Context, cidadeID uuid.UUID) error
}

// Notificador dispara o fan-out de comentário e resposta.
type Notificador interface {
	NotificarComentario(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error
	NotificarResposta(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error
}

// Recompensador credita pontos de gamificação.
type Recompensador interface {
	CreditarPontos(ctx context.Context, usuarioID uuid.UUID, pontos int) error
}

// Service contém as regras da thread de comentários.
type Service struct {
	repo        ComentarioRepository
	guard       Autorizador
	notificador Notificador
	recompensa  Recompensador
}

// NewService cria uma nova instância do serviço.
func NewService(repo ComentarioRepository, guard Autorizador, notificador Notificador, recompensa Recompensador) *Service {
	return &Service{repo: repo, guard: guard, notificador: notificador, recompensa: recompensa}
}

// Create registra comentário de primeiro nível ou resposta (profundidade 1).
func (s *Service) Create(ctx context.Context, input CriarComentarioInput) (*Comentario, error) {
	input.Conteudo = strings.TrimSpace(input.Conteudo)
	if input.Conteudo == "" {
		return nil, fmt.Errorf("%w: conteúdo obrigatório", ErrValidation)
	}
	if utf8.RuneCountInString(input.Conteudo) > MaxConteudo {
		return nil, fmt.Errorf("%w: conteúdo excede %d caracteres", ErrValidation, MaxConteudo)
	}

	info, err := s.repo.PublicacaoInfo(ctx, input.PublicacaoID)
	if err != nil {
		return nil, err
	}

	if info.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *info.CidadeID); err != nil {
			return nil, err
		}
	}

	var parent *Comentario
	if input.ParentID != nil {
		parent, err = s.repo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PublicacaoID != input.PublicacaoID {
			return nil, fmt.Errorf("%w: comentário pai de outra publicação", ErrValidation)
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: respostas não podem ser respondidas", ErrValidation)
		}
	}

	c, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.recompensa != nil {
		if err := s.recompensa.CreditarPontos(ctx, input.UsuarioID, perfil.PontosComentario); err != nil {
			log.Warn().Err(err).Str("usuario_id", input.UsuarioID.String()).Msg("creditar pontos de comentário falhou")
		}
	}

	if s.notificador != nil {
		var notifyErr error
		if parent != nil {
			notifyErr = s.notificador.NotificarResposta(ctx, parent.UsuarioID, input.UsuarioID, input.PublicacaoID)
		} else {
			notifyErr = s.notificador.NotificarComentario(ctx, info.DonoID, input.UsuarioID, input.PublicacaoID)
		}
		if notifyErr != nil {
			log.Warn().Err(notifyErr).Str("publicacao_id", input.PublicacaoID.String()).Msg("fan-out de comentário falhou")
		}
	}

	return c, nil
}

// Delete remove o comentário (somente o dono); primeiro nível leva as respostas.
// Como toda mutação, exige cidade com assinatura liberada.
func (s *Service) Delete(ctx context.Context, id, usuarioID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	info, err := s.repo.PublicacaoInfo(ctx, c.PublicacaoID)
	if err != nil {
		return err
	}
	if info.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *info.CidadeID); err != nil {
			return err
		}
	}

	if c.UsuarioID != usuarioID {
		return ErrForbidden
	}

	_, err = s.repo.Delete(ctx, c.ID, c.PublicacaoID)
	return err
}

// ListTree devolve a árvore: primeiro nível em ordem de inserção, cada um
// com suas respostas também em ordem de inserção. Conteúdo de cidade com
// assinatura vencida não é servido.
func (s *Service) ListTree(ctx context.Context, publicacaoID uuid.UUID, viewerID *uuid.UUID) ([]Comentario, error) {
	info, err := s.repo.PublicacaoInfo(ctx, publicacaoID)
	if err != nil {
		return nil, err
	}
	if info.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *info.CidadeID); err != nil {
			return nil, err
		}
	}

	flat, err := s.repo.ListByPublicacao(ctx, publicacaoID, viewerID)
	if err != nil {
		return nil, err
	}

	porPai := make(map[uuid.UUID][]Comentario)
	var raiz []Comentario
	for _, c := range flat {
		if c.ParentID == nil {
			raiz = append(raiz, c)
			continue
		}
		porPai[*c.ParentID] = append(porPai[*c.ParentID], c)
	}

	for i := range raiz {
		raiz[i].Respostas = porPai[raiz[i].ID]
	}

	return raiz, nil
}
