package http

import (
	"net/http"
	"strconv"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
)

// BuscarPublicacoes filtra publicações ativas da cidade por texto e categoria.
func (h *Handler) BuscarPublicacoes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCidade(w, r)
	if !ok {
		return
	}
	if !c.AssinaturaLiberada() {
		handleDomainError(w, cidade.ErrIndisponivel)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	pubs, err := h.buscas.Buscar(r.Context(), c.ID, q.Get("q"), q.Get("categoria"), limit)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, pubs)
}

// Sugestoes ranqueia categorias que casam o prefixo digitado.
func (h *Handler) Sugestoes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolveCidade(w, r)
	if !ok {
		return
	}
	if !c.AssinaturaLiberada() {
		handleDomainError(w, cidade.ErrIndisponivel)
		return
	}

	q := r.URL.Query()
	n, _ := strconv.Atoi(q.Get("n"))

	sugestoes, err := h.buscas.Sugerir(r.Context(), c.ID, q.Get("prefixo"), n)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, sugestoes)
}
