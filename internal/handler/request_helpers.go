package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
)

// respondValidationError writes the formatted field errors with a 400
func respondValidationError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("Invalid request", "error", err)
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Validation failed",
		"details": FormatValidationError(err),
	})
}

// kindParam parses the {kind} URL parameter
func kindParam(r *http.Request) (domain.Kind, error) {
	return domain.ParseKind(chi.URLParam(r, "kind"))
}

// idParam parses the {id} URL parameter
func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// quantityQuery parses the quantity query parameter, defaulting to 1
func quantityQuery(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("quantity")
	if raw == "" {
		return 1, true
	}
	q, err := strconv.Atoi(raw)
	return q, err == nil
}
