package busca

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/publicacao"
)

// recentesJanela limita quantas publicações recentes alimentam a frequência
// de categorias das sugestões.
const recentesJanela = 200

// Indice é o lado de leitura do armazenamento de publicações.
type Indice interface {
	Search(ctx context.Context, cidadeID uuid.UUID, texto, categoria string, limit int) ([]publicacao.Publicacao, error)
	CategoriaFrequencia(ctx context.Context, cidadeID uuid.UUID, recentes int) (map[string]int, error)
}

// Service implementa busca e sugestões sobre o feed da cidade.
type Service struct {
	indice   Indice
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService cria uma nova instância do serviço. O cache é opcional.
func NewService(indice Indice, cache *redis.Client) *Service {
	return &Service{indice: indice, cache: cache, cacheTTL: 60 * time.Second}
}

// Sugestao é um termo sugerido com sua frequência recente.
type Sugestao struct {
	Categoria   string `json:"categoria"`
	Ocorrencias int    `json:"ocorrencias"`
}

// Buscar filtra publicações ativas da cidade por texto (substring
// case-insensitive em título OU descrição) e categoria, mais recentes primeiro.
func (s *Service) Buscar(ctx context.Context, cidadeID uuid.UUID, texto, categoria string, limit int) ([]publicacao.Publicacao, error) {
	categoria = strings.TrimSpace(strings.ToLower(categoria))
	if categoria != "" && !publicacao.CategoriaConhecida(categoria) {
		return nil, fmt.Errorf("%w: categoria desconhecida", publicacao.ErrValidation)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return s.indice.Search(ctx, cidadeID, texto, categoria, limit)
}

// Sugerir casa o prefixo contra o conjunto fixo de categorias e ranqueia
// pela frequência nas publicações recentes; empate mantém a ordem de
// declaração das categorias.
func (s *Service) Sugerir(ctx context.Context, cidadeID uuid.UUID, prefixo string, n int) ([]Sugestao, error) {
	prefixo = strings.TrimSpace(strings.ToLower(prefixo))
	if n <= 0 || n > len(publicacao.CategoriasOrdenadas) {
		n = len(publicacao.CategoriasOrdenadas)
	}

	key := fmt.Sprintf("busca:sugestoes:%s:%s", cidadeID.String(), prefixo)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached []Sugestao
			if json.Unmarshal(data, &cached) == nil {
				if len(cached) > n {
					cached = cached[:n]
				}
				return cached, nil
			}
		}
	}

	freq, err := s.indice.CategoriaFrequencia(ctx, cidadeID, recentesJanela)
	if err != nil {
		return nil, err
	}

	var sugestoes []Sugestao
	for _, categoria := range publicacao.CategoriasOrdenadas {
		if prefixo != "" && !strings.HasPrefix(categoria, prefixo) {
			continue
		}
		sugestoes = append(sugestoes, Sugestao{Categoria: categoria, Ocorrencias: freq[categoria]})
	}

	sort.SliceStable(sugestoes, func(i, j int) bool {
		return sugestoes[i].Ocorrencias > sugestoes[j].Ocorrencias
	})

	if s.cache != nil {
		if payload, err := json.Marshal(sugestoes); err == nil {
			_ = s.cache.Set(ctx, key, payload, s.cacheTTL).Err()
		}
	}

	if len(sugestoes) > n {
		sugestoes = sugestoes[:n]
	}

	return sugestoes, nil
}
