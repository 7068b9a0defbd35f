package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/auth"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type perfilRepository interface {
	Create(ctx context.Context, input perfil.CriarPerfilInput) (*perfil.Perfil, error)
	GetByEmail(ctx context.Context, email string) (*perfil.Perfil, error)
	GetByID(ctx context.Context, id uuid.UUID) (*perfil.Perfil, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra autenticação e sessões; emite o principal que o
// restante do motor recebe explicitamente por requisição.
type AuthService struct {
	perfis     perfilRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(perfis perfilRepository, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{perfis: perfis, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Perfil       *perfil.Perfil `json:"perfil"`
}

// RegistroInput contém os campos do cadastro de morador.
type RegistroInput struct {
	Nome     string
	Email    string
	Senha    string
	CidadeID *uuid.UUID
}

// Register cadastra um morador e já emite a primeira sessão.
func (s *AuthService) Register(ctx context.Context, input RegistroInput) (*LoginResult, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	p, err := s.perfis.Create(ctx, perfil.CriarPerfilInput{
		Nome:      input.Nome,
		Email:     input.Email,
		SenhaHash: hash,
		CidadeID:  input.CidadeID,
	})
	if err != nil {
		return nil, err
	}

	return s.emitirSessao(ctx, p)
}

// Login autentica um morador por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	p, err := s.perfis.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, perfil.ErrNotFound) {
			log.Warn().Msg("login: perfil não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, p.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !p.Ativo {
		return nil, ErrAccountDisabled
	}

	return s.emitirSessao(ctx, p)
}

// Refresh rotaciona a sessão a partir do refresh token.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	hash := auth.HashRefreshToken(strings.TrimSpace(raw))

	subject, err := s.redis.Get(ctx, auth.RefreshRedisKey(hash)).Result()
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	p, err := s.perfis.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRefreshInvalid
	}
	if !p.Ativo {
		return nil, ErrAccountDisabled
	}

	// Rotação: o token antigo deixa de valer antes do novo ser emitido.
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil {
		return nil, err
	}

	return s.emitirSessao(ctx, p)
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	hash := auth.HashRefreshToken(strings.TrimSpace(raw))
	return s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err()
}

// Me devolve o perfil do próprio usuário.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*perfil.Perfil, error) {
	return s.perfis.GetByID(ctx, id)
}

func (s *AuthService) emitirSessao(ctx context.Context, p *perfil.Perfil) (*LoginResult, error) {
	roles := []string{"USER"}
	if p.EhPlataformaAdmin() {
		roles = append(roles, "ADMIN")
	}

	access, _, err := s.jwt.GenerateAccessToken(p.ID.String(), roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, auth.RefreshRedisKey(hash), p.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: access, RefreshToken: rawRefresh, Perfil: p}, nil
}
