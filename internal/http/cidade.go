package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
)

// resolveCidade resolve o slug da rota. Cidade com assinatura vencida ainda é
// resolvida: cada handler decide se a leitura pública passa ou não.
func (h *Handler) resolveCidade(w http.ResponseWriter, r *http.Request) (*cidade.Cidade, bool) {
	slug := chi.URLParam(r, "slug")
	c, err := h.cidades.ResolveBySlug(r.Context(), slug)
	if err != nil {
		handleDomainError(w, err)
		return nil, false
	}
	return c, true
}

// GetCidade devolve a configuração pública da cidade (tema, moderação,
// disponibilidade). O front usa "disponivel" para exibir a página explicativa.
func (h *Handler) GetCidade(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCidade(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"cidade":     c,
		"disponivel": c.AssinaturaLiberada(),
	})
}

// ListCidades lista todas as cidades (operador da plataforma).
func (h *Handler) ListCidades(w http.ResponseWriter, r *http.Request) {
	cidades, err := h.cidades.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cidades)
}

// CreateCidade registra uma nova cidade (operador da plataforma).
func (h *Handler) CreateCidade(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Slug           string         `json:"slug"`
		Nome           string         `json:"nome"`
		Assinatura     string         `json:"assinatura"`
		Tema           map[string]any `json:"tema"`
		ModeracaoAtiva bool           `json:"moderacao_ativa"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.cidades.Create(r.Context(), cidade.CriarCidadeInput{
		Slug:           payload.Slug,
		Nome:           payload.Nome,
		Assinatura:     payload.Assinatura,
		Tema:           payload.Tema,
		ModeracaoAtiva: payload.ModeracaoAtiva,
	})
	if err != nil {
		if errors.Is(err, cidade.ErrSlugEmUso) {
			WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
			return
		}
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, c)
}

// AtualizarAssinatura aplica o status repassado pelo faturamento.
func (h *Handler) AtualizarAssinatura(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Assinatura string `json:"assinatura"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.cidades.AtualizarAssinatura(r.Context(), id, payload.Assinatura); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VincularAdmin concede administração da cidade a um usuário.
func (h *Handler) VincularAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		UsuarioID uuid.UUID `json:"usuario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.UsuarioID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "usuario_id obrigatório", nil)
		return
	}

	if err := h.cidades.VincularAdmin(r.Context(), id, payload.UsuarioID); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
