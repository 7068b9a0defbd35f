package http

import (
	"errors"
	"net/http"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/comentario"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/notificacao"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/publicacao"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/reacao"
)

// handleDomainError traduz erros de domínio para a resposta HTTP normalizada.
// Cidade indisponível recebe código próprio para o cliente distinguir de
// falta de permissão.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cidade.ErrNotFound),
		errors.Is(err, publicacao.ErrNotFound),
		errors.Is(err, comentario.ErrNotFound),
		errors.Is(err, reacao.ErrNotFound),
		errors.Is(err, notificacao.ErrNotFound),
		errors.Is(err, perfil.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, cidade.ErrIndisponivel):
		WriteError(w, http.StatusForbidden, "TENANT_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, publicacao.ErrForbidden), errors.Is(err, comentario.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, publicacao.ErrTransicaoInvalida):
		WriteError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, publicacao.ErrValidation),
		errors.Is(err, comentario.ErrValidation),
		errors.Is(err, reacao.ErrValidation),
		errors.Is(err, cidade.ErrValidation):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
