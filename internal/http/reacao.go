package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ToggleReacao alterna a reação do usuário ao alvo informado. A resposta é
// autoritativa: o cliente reconcilia o ajuste otimista local com "reagiu".
func (h *Handler) ToggleReacao(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	var payload struct {
		TipoAlvo string    `json:"tipo_alvo"`
		AlvoID   uuid.UUID `json:"alvo_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.AlvoID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "tipo_alvo e alvo_id são obrigatórios", nil)
		return
	}

	result, err := h.reacoes.Toggle(r.Context(), payload.TipoAlvo, payload.AlvoID, usuarioID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
