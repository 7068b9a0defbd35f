package notificacao

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NotificacaoRepository abstrai o armazenamento de notificações.
type NotificacaoRepository interface {
	Create(ctx context.Context, input CriarNotificacaoInput) (*Notificacao, error)
	ListByDestinatario(ctx context.Context, destinatarioID uuid.UUID, limit int) ([]Notificacao, error)
	CountNaoLidas(ctx context.Context, destinatarioID uuid.UUID) (int, error)
	MarcarLida(ctx context.Context, id, destinatarioID uuid.UUID) error
	MarcarTodasLidas(ctx context.Context, destinatarioID uuid.UUID) error
}

// Perfis resolve o snapshot do remetente (implementado por perfil.Repository).
type Perfis interface {
	NomeDoPerfil(ctx context.Context, id uuid.UUID) (string, error)
}

// Service contém as regras do fan-out de notificações.
type Service struct {
	repo     NotificacaoRepository
	perfis   Perfis
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService cria uma nova instância do serviço. O cache é opcional.
func NewService(repo NotificacaoRepository, perfis Perfis, cache *redis.Client) *Service {
	return &Service{repo: repo, perfis: perfis, cache: cache, cacheTTL: 15 * time.Second}
}

// Notificar cria a notificação, exceto quando destinatário e remetente são a
// mesma pessoa: autonotificação nunca é gravada.
func (s *Service) Notificar(ctx context.Context, input CriarNotificacaoInput) error {
	if input.RemetenteID != nil && *input.RemetenteID == input.DestinatarioID {
		return nil
	}

	if input.RemetenteID != nil && input.RemetenteNome == "" && s.perfis != nil {
		nome, err := s.perfis.NomeDoPerfil(ctx, *input.RemetenteID)
		if err != nil {
			log.Warn().Err(err).Msg("snapshot do remetente indisponível")
		} else {
			input.RemetenteNome = nome
		}
	}

	if _, err := s.repo.Create(ctx, input); err != nil {
		return err
	}

	s.invalidarContagem(ctx, input.DestinatarioID)
	return nil
}

// NotificarComentario avisa o dono da publicação sobre um novo comentário.
func (s *Service) NotificarComentario(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error {
	return s.Notificar(ctx, CriarNotificacaoInput{
		DestinatarioID: destinatario,
		Tipo:           TipoComentario,
		RemetenteID:    &remetente,
		Link:           linkPublicacao(publicacaoID),
	})
}

// NotificarResposta avisa o dono do comentário pai sobre uma resposta.
func (s *Service) NotificarResposta(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error {
	return s.Notificar(ctx, CriarNotificacaoInput{
		DestinatarioID: destinatario,
		Tipo:           TipoResposta,
		RemetenteID:    &remetente,
		Link:           linkPublicacao(publicacaoID),
	})
}

// NotificarReacao avisa o dono do alvo sobre uma reação recebida.
func (s *Service) NotificarReacao(ctx context.Context, destinatario, remetente uuid.UUID, tipoAlvo string, publicacaoID uuid.UUID) error {
	return s.Notificar(ctx, CriarNotificacaoInput{
		DestinatarioID: destinatario,
		Tipo:           TipoReacao,
		RemetenteID:    &remetente,
		Link:           linkPublicacao(publicacaoID),
	})
}

// Listar devolve as notificações do próprio usuário.
func (s *Service) Listar(ctx context.Context, usuarioID uuid.UUID, limit int) ([]Notificacao, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByDestinatario(ctx, usuarioID, limit)
}

// NaoLidas devolve a contagem de não lidas, com cache curto: o cliente
// consulta periodicamente e a contagem exata pode atrasar alguns segundos.
func (s *Service) NaoLidas(ctx context.Context, usuarioID uuid.UUID) (int, error) {
	key := contagemKey(usuarioID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.Atoi(raw); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.CountNaoLidas(ctx, usuarioID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, strconv.Itoa(count), s.cacheTTL).Err()
	}

	return count, nil
}

// MarcarLida marca a notificação como lida (idempotente, somente o dono).
func (s *Service) MarcarLida(ctx context.Context, id, usuarioID uuid.UUID) error {
	if err := s.repo.MarcarLida(ctx, id, usuarioID); err != nil {
		return err
	}
	s.invalidarContagem(ctx, usuarioID)
	return nil
}

// MarcarTodasLidas marca todas como lidas (idempotente).
func (s *Service) MarcarTodasLidas(ctx context.Context, usuarioID uuid.UUID) error {
	if err := s.repo.MarcarTodasLidas(ctx, usuarioID); err != nil {
		return err
	}
	s.invalidarContagem(ctx, usuarioID)
	return nil
}

func (s *Service) invalidarContagem(ctx context.Context, usuarioID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, contagemKey(usuarioID)).Err()
}

func contagemKey(usuarioID uuid.UUID) string {
	return fmt.Sprintf("notif:naolidas:%s", usuarioID.String())
}

func linkPublicacao(id uuid.UUID) string {
	return fmt.Sprintf("/publicacoes/%s", id.String())
}
