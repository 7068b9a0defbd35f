package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/busca"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/comentario"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/config"
	httpmiddleware "github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/http/middleware"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/notificacao"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/publicacao"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/reacao"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/service"
)

// Handler concentra as dependências dos handlers HTTP.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	cidades       *cidade.Service
	publicacoes   *publicacao.Service
	comentarios   *comentario.Service
	reacoes       *reacao.Service
	notificacoes  *notificacao.Service
	buscas        *busca.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter monta os serviços de domínio e devolve o roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	perfilRepo := perfil.NewRepository(pool)

	cidadeRepo := cidade.NewRepository(pool)
	cidadeService := cidade.NewService(cidadeRepo)

	publicacaoRepo := publicacao.NewRepository(pool)
	publicacaoService := publicacao.NewService(publicacaoRepo, cidadeService, perfilRepo)

	notificacaoRepo := notificacao.NewRepository(pool)
	notificacaoService := notificacao.NewService(notificacaoRepo, perfilRepo, redisClient)

	comentarioRepo := comentario.NewRepository(pool)
	comentarioService := comentario.NewService(comentarioRepo, cidadeService, notificacaoService, perfilRepo)

	reacaoRepo := reacao.NewRepository(pool)
	reacaoService := reacao.NewService(reacaoRepo, cidadeService, notificacaoService)

	buscaService := busca.NewService(publicacaoRepo, redisClient)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		cidades:       cidadeService,
		publicacoes:   publicacaoService,
		comentarios:   comentarioService,
		reacoes:       reacaoService,
		notificacoes:  notificacaoService,
		buscas:        buscaService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
		public.Use(httpmiddleware.OptionalAuth(authService.JWT()))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/registro", h.Registro)
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})

		public.Route("/cidades/{slug}", func(c chi.Router) {
			c.Get("/", h.GetCidade)
			c.Get("/publicacoes", h.ListPublicacoes)
			c.Get("/publicacoes/buscar", h.BuscarPublicacoes)
			c.Get("/sugestoes", h.Sugestoes)
		})

		public.Get("/publicacoes/{id}", h.GetPublicacao)
		public.Get("/publicacoes/{id}/comentarios", h.ListComentarios)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Post("/cidades/{slug}/publicacoes", h.CreatePublicacao)
		private.Post("/publicacoes/{id}/transicao", h.TransicionarPublicacao)
		private.Delete("/publicacoes/{id}", h.DeletePublicacao)

		private.Post("/publicacoes/{id}/comentarios", h.CreateComentario)
		private.Delete("/comentarios/{id}", h.DeleteComentario)

		private.Post("/reacoes", h.ToggleReacao)

		private.Route("/notificacoes", func(n chi.Router) {
			n.Get("/", h.ListNotificacoes)
			n.Get("/nao-lidas", h.NaoLidas)
			n.Post("/{id}/lida", h.MarcarLida)
			n.Post("/lidas", h.MarcarTodasLidas)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			admin.Get("/cidades", h.ListCidades)
			admin.Post("/cidades", h.CreateCidade)
			admin.Patch("/cidades/{id}/assinatura", h.AtualizarAssinatura)
			admin.Post("/cidades/{id}/admins", h.VincularAdmin)
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// subjectUUID extrai o id do usuário autenticado do contexto.
func subjectUUID(r *http.Request) (uuid.UUID, bool) {
	subject := httpmiddleware.GetSubject(r.Context())
	if strings.TrimSpace(subject) == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// atorFromRequest monta o principal explícito repassado aos serviços.
func atorFromRequest(r *http.Request) (perfil.Ator, bool) {
	id, ok := subjectUUID(r)
	if !ok {
		return perfil.Ator{}, false
	}
	return perfil.Ator{
		ID:              id,
		PlataformaAdmin: httpmiddleware.HasRole(r.Context(), "ADMIN"),
	}, true
}

// viewerFromRequest devolve o id do viewer quando autenticado; nil caso contrário.
func viewerFromRequest(r *http.Request) *uuid.UUID {
	id, ok := subjectUUID(r)
	if !ok {
		return nil
	}
	return &id
}
