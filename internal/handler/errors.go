package handler

import (
	"errors"
	"net/http"

	"github.com/mearah/craftbom/internal/domain"
)

// statusForError maps domain error kinds to HTTP status codes. Every kind is
// user-facing and non-fatal; unknown errors fall through to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCycleDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIntegrityViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError logs and surfaces a service error with its mapped status
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusForError(err), err.Error())
}
