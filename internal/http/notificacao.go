package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListNotificacoes devolve as notificações do próprio usuário.
func (h *Handler) ListNotificacoes(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notificacoes, err := h.notificacoes.Listar(r.Context(), usuarioID, limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, notificacoes)
}

// NaoLidas devolve a contagem de notificações não lidas.
func (h *Handler) NaoLidas(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	count, err := h.notificacoes.NaoLidas(r.Context(), usuarioID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarcarLida marca uma notificação do próprio usuário como lida.
func (h *Handler) MarcarLida(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.notificacoes.MarcarLida(r.Context(), id, usuarioID); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MarcarTodasLidas marca todas as notificações do usuário como lidas.
func (h *Handler) MarcarTodasLidas(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	if err := h.notificacoes.MarcarTodasLidas(r.Context(), usuarioID); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
