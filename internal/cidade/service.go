package cidade

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CidadeRepository abstrai o armazenamento de cidades e vínculos de admin.
type CidadeRepository interface {
	GetBySlug(ctx context.Context, slug string) (*Cidade, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Cidade, error)
	List(ctx context.Context) ([]Cidade, error)
	Create(ctx context.Context, input CriarCidadeInput) (*Cidade, error)
	AtualizarAssinatura(ctx context.Context, id uuid.UUID, assinatura string) error
	EhAdminDaCidade(ctx context.Context, cidadeID, usuarioID uuid.UUID) (bool, error)
	VincularAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) error
}

// Service contém as regras de resolução de cidades e o guard de autorização.
type Service struct {
	repo     CidadeRepository
	cache    sync.Map
	cacheTTL time.Duration
}

// cachedCidade armazena dados no cache em memória.
type cachedCidade struct {
	cidade   Cidade
	expireAt time.Time
}

// NewService cria uma nova instância de Service.
func NewService(repo CidadeRepository) *Service {
	return &Service{repo: repo, cacheTTL: 2 * time.Minute}
}

// ResolveBySlug encontra cidade pelo slug informado.
// Resolver uma cidade com assinatura vencida NÃO é erro: o chamador decide
// entre leitura pública (página explicativa) e mutação (barrada pelo guard).
func (s *Service) ResolveBySlug(ctx context.Context, slug string) (*Cidade, error) {
	normalized := normalizeSlug(slug)
	if normalized == "" {
		return nil, ErrNotFound
	}

	if v, ok := s.cache.Load(normalized); ok {
		entry := v.(cachedCidade)
		if time.Now().Before(entry.expireAt) {
			cidadeCopy := entry.cidade
			return &cidadeCopy, nil
		}
		s.cache.Delete(normalized)
	}

	c, err := s.repo.GetBySlug(ctx, normalized)
	if err != nil {
		return nil, err
	}

	s.cache.Store(normalized, cachedCidade{cidade: *c, expireAt: time.Now().Add(s.cacheTTL)})

	cidadeCopy := *c
	return &cidadeCopy, nil
}

// Disponivel garante que a cidade existe e tem assinatura liberada.
func (s *Service) Disponivel(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.AssinaturaLiberada() {
		return ErrIndisponivel
	}
	return nil
}

// EhAdmin verifica se o usuário administra a cidade.
func (s *Service) EhAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) (bool, error) {
	return s.repo.EhAdminDaCidade(ctx, cidadeID, usuarioID)
}

// Create registra uma nova cidade (ação do operador da plataforma).
func (s *Service) Create(ctx context.Context, input CriarCidadeInput) (*Cidade, error) {
	input.Slug = normalizeSlug(input.Slug)
	input.Assinatura = strings.TrimSpace(strings.ToLower(input.Assinatura))
	if input.Assinatura == "" {
		input.Assinatura = AssinaturaTrial
	}

	if input.Slug == "" {
		return nil, fmt.Errorf("%w: slug obrigatório", ErrValidation)
	}
	if strings.TrimSpace(input.Nome) == "" {
		return nil, fmt.Errorf("%w: nome obrigatório", ErrValidation)
	}
	if !AssinaturaConhecida(input.Assinatura) {
		return nil, fmt.Errorf("%w: assinatura desconhecida", ErrValidation)
	}
	if input.Tema == nil {
		input.Tema = map[string]any{}
	}

	c, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.cache.Store(c.Slug, cachedCidade{cidade: *c, expireAt: time.Now().Add(s.cacheTTL)})
	return c, nil
}

// AtualizarAssinatura aplica status repassado pelo faturamento e limpa o cache.
func (s *Service) AtualizarAssinatura(ctx context.Context, id uuid.UUID, assinatura string) error {
	assinatura = strings.TrimSpace(strings.ToLower(assinatura))
	if !AssinaturaConhecida(assinatura) {
		return fmt.Errorf("%w: assinatura desconhecida", ErrValidation)
	}

	if err := s.repo.AtualizarAssinatura(ctx, id, assinatura); err != nil {
		return err
	}

	s.cache.Range(func(key, value any) bool {
		entry := value.(cachedCidade)
		if entry.cidade.ID == id {
			s.cache.Delete(key)
			return false
		}
		return true
	})

	return nil
}

// VincularAdmin concede administração da cidade.
func (s *Service) VincularAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, cidadeID); err != nil {
		return err
	}
	return s.repo.VincularAdmin(ctx, cidadeID, usuarioID)
}

// List devolve todas as cidades.
func (s *Service) List(ctx context.Context) ([]Cidade, error) {
	return s.repo.List(ctx)
}

func normalizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}
