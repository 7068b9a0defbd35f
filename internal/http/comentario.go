package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/comentario"
)

// CreateComentario registra comentário de primeiro nível ou resposta.
func (h *Handler) CreateComentario(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := subjectUUID(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	publicacaoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Conteudo string     `json:"conteudo"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	c, err := h.comentarios.Create(r.Context(), comentario.CriarComentarioInput{
		PublicacaoID: publicacaoID,
		UsuarioID:    usuarioID,
		ParentID:     payload.ParentID,
		Conteudo:     payload.Conteudo,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, c)
}

// DeleteComentario remove o comentário do próprio usuário.
func (h *Handler) DeleteComentario(w http.ResponseWriter, r *http.Request) {
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

	if err := h.comentarios.Delete(r.Context(), id, usuarioID); err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListComentarios devolve a árvore de comentários da publicação. Quando o
// viewer está autenticado, cada nó é anotado com viewer_reagiu.
func (h *Handler) ListComentarios(w http.ResponseWriter, r *http.Request) {
	publicacaoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	tree, err := h.comentarios.ListTree(r.Context(), publicacaoID, viewerFromRequest(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tree)
}
