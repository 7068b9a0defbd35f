package publicacao

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
)

// PublicacaoRepository abstrai o armazenamento de publicações.
type PublicacaoRepository interface {
	Create(ctx context.Context, input CriarPublicacaoInput, status string) (*Publicacao, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Publicacao, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	ListByCidade(ctx context.Context, cidadeID uuid.UUID, status string, limit int) ([]Publicacao, error)
}

// Autorizador é o guard de tenancy/autorização (implementado por cidade.Service).
type Autorizador interface {
	Disponivel(ctx context.Context, cidadeID uuid.UUID) error
	EhAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) (bool, error)
}

// Recompensador credita pontos de gamificação (implementado por perfil.Repository).
type Recompensador interface {
	CreditarPontos(ctx context.Context, usuarioID uuid.UUID, pontos int) error
}

// Service contém as regras do ciclo de vida de publicações.
type Service struct {
	repo       PublicacaoRepository
	guard      Autorizador
	recompensa Recompensador
}

// NewService cria uma nova instância do serviço.
func NewService(repo PublicacaoRepository, guard Autorizador, recompensa Recompensador) *Service {
	return &Service{repo: repo, guard: guard, recompensa: recompensa}
}

// Create registra uma publicação na cidade resolvida pelo chamador.
// Sem efeitos colaterais de notificação: criação não gera fan-out.
func (s *Service) Create(ctx context.Context, c *cidade.Cidade, input CriarPublicacaoInput) (*Publicacao, error) {
	if c == nil {
		return nil, cidade.ErrNotFound
	}
	if !c.AssinaturaLiberada() {
		return nil, cidade.ErrIndisponivel
	}

	input.Titulo = strings.TrimSpace(input.Titulo)
	input.Descricao = strings.TrimSpace(input.Descricao)
	input.Categoria = strings.TrimSpace(strings.ToLower(input.Categoria))

	if input.Titulo == "" {
		return nil, fmt.Errorf("%w: título obrigatório", ErrValidation)
	}
	if input.Descricao == "" {
		return nil, fmt.Errorf("%w: descrição obrigatória", ErrValidation)
	}
	if !CategoriaConhecida(input.Categoria) {
		return nil, fmt.Errorf("%w: categoria desconhecida", ErrValidation)
	}

	cidadeID := c.ID
	input.CidadeID = &cidadeID

	status := StatusAtivo
	if c.ModeracaoAtiva {
		status = StatusPendente
	}

	pub, err := s.repo.Create(ctx, input, status)
	if err != nil {
		return nil, err
	}

	if s.recompensa != nil {
		if err := s.recompensa.CreditarPontos(ctx, input.AutorID, perfil.PontosPublicacao); err != nil {
			log.Warn().Err(err).Str("usuario_id", input.AutorID.String()).Msg("creditar pontos de publicação falhou")
		}
	}

	return pub, nil
}

// Get devolve uma publicação pelo id. Conteúdo de cidade com assinatura
// vencida não é servido, como nas listagens.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Publicacao, error) {
	pub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pub.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *pub.CidadeID); err != nil {
			return nil, err
		}
	}
	return pub, nil
}

// ListDaCidade lista publicações da cidade, exigindo assinatura liberada.
func (s *Service) ListDaCidade(ctx context.Context, c *cidade.Cidade, status string, limit int) ([]Publicacao, error) {
	if c == nil {
		return nil, cidade.ErrNotFound
	}
	if !c.AssinaturaLiberada() {
		return nil, cidade.ErrIndisponivel
	}
	if status != "" && !StatusConhecido(status) {
		return nil, fmt.Errorf("%w: status desconhecido", ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByCidade(ctx, c.ID, status, limit)
}

// Transicionar aplica uma ação da máquina de estados sobre a publicação.
// Autorização e disponibilidade do tenant são avaliadas antes de qualquer
// escrita; não há escrita parcial em falha de autorização.
func (s *Service) Transicionar(ctx context.Context, id uuid.UUID, acao string, ator perfil.Ator) (*Publicacao, error) {
	regra, ok := transicoes[strings.TrimSpace(strings.ToLower(acao))]
	if !ok {
		return nil, fmt.Errorf("%w: ação desconhecida", ErrValidation)
	}

	pub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if pub.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *pub.CidadeID); err != nil {
			return nil, err
		}
	}

	if regra.donoApenas {
		if pub.AutorID != ator.ID {
			return nil, ErrForbidden
		}
	} else {
		ok, err := s.ehModerador(ctx, pub, ator)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	if _, permitido := regra.origens[pub.Status]; !permitido {
		return nil, fmt.Errorf("%w: %s não permite %s", ErrTransicaoInvalida, pub.Status, acao)
	}

	if err := s.repo.UpdateStatus(ctx, pub.ID, regra.destino); err != nil {
		return nil, err
	}

	pub.Status = regra.destino
	return pub, nil
}

// Delete remove a publicação em cascata (comentários e reações). Irreversível.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, ator perfil.Ator) error {
	pub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if pub.CidadeID != nil {
		if err := s.guard.Disponivel(ctx, *pub.CidadeID); err != nil {
			return err
		}
	}

	if pub.AutorID != ator.ID {
		ok, err := s.ehModerador(ctx, pub, ator)
		if err != nil {
			return err
		}
		if !ok {
			return ErrForbidden
		}
	}

	return s.repo.DeleteCascade(ctx, pub.ID)
}

// ehModerador aceita admin da plataforma ou admin da cidade da publicação.
// Publicações legadas sem cidade só podem ser moderadas pelo admin da plataforma.
func (s *Service) ehModerador(ctx context.Context, pub *Publicacao, ator perfil.Ator) (bool, error) {
	if ator.PlataformaAdmin {
		return true, nil
	}
	if pub.CidadeID == nil {
		return false, nil
	}
	return s.guard.EhAdmin(ctx, *pub.CidadeID, ator.ID)
}
