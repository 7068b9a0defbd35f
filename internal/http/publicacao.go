package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/publicacao"
)

// ListPublicacoes lista o feed da cidade, opcionalmente filtrado por status.
func (h *Handler) ListPublicacoes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCidade(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pubs, err := h.publicacoes.ListDaCidade(r.Context(), c, status, limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pubs)
}

// GetPublicacao devolve uma publicação pelo id.
func (h *Handler) GetPublicacao(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	pub, err := h.publicacoes.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pub)
}

// CreatePublicacao registra uma publicação na cidade da rota.
func (h *Handler) CreatePublicacao(w http.ResponseWriter, r *http.Request) {
	autorID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	c, ok := h.resolveCidade(w, r)
	if !ok {
		return
	}

	var payload struct {
		Titulo    string `json:"titulo"`
		Descricao string `json:"descricao"`
		Categoria string `json:"categoria"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	pub, err := h.publicacoes.Create(r.Context(), c, publicacao.CriarPublicacaoInput{
		Titulo:    payload.Titulo,
		Descricao: payload.Descricao,
		Categoria: payload.Categoria,
		AutorID:   autorID,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, pub)
}

// TransicionarPublicacao aplica uma ação da máquina de estados.
func (h *Handler) TransicionarPublicacao(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorFromRequest(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Acao string `json:"acao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	pub, err := h.publicacoes.Transicionar(r.Context(), id, payload.Acao, ator)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pub)
}

// DeletePublicacao remove a publicação em cascata.
func (h *Handler) DeletePublicacao(w http.ResponseWriter, r *http.Request) {
	ator, ok := atorFromRequest(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.publicacoes.Delete(r.Context(), id, ator); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
