package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/service"
)

// writeServiceError traduz os erros de serviço em status HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidErr *service.InvalidInputError
	switch {
	case errors.As(err, &invalidErr):
		WriteError(w, http.StatusBadRequest, "VALIDATION", invalidErr.Message, map[string]string{"field": invalidErr.Field})
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrAccountDisabled), errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrApprovalNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrAlreadyDecided),
		errors.Is(err, service.ErrUserInUse),
		errors.Is(err, service.ErrSelfDelete):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("erro inesperado")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
