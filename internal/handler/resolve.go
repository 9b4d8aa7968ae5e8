package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
)

// ResolveRequest asks for the full base-material expansion of one item.
// Name takes precedence over ID when both are set.
type ResolveRequest struct {
	Kind     string `json:"kind" validate:"required,kind"`
	ID       int    `json:"id,omitempty" validate:"required_without=Name,omitempty,min=1"`
	Name     string `json:"name,omitempty" validate:"required_without=ID"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// HandleResolve handles full BOM resolution for a single item
// @Summary Resolve an item to base materials
// @Description Expands an item's recipe recursively and returns the total base materials needed, with market costs and tax
// @Tags resolve
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Resolution request"
// @Success 200 {object} bom.Report
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 422 {object} ErrorResponse "Recipe cycle detected"
// @Failure 500 {object} ErrorResponse
// @Router /resolve [post]
func HandleResolve(svc bom.Service, reporter *bom.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode resolve request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, r, err)
			return
		}

		var totals *bom.Totals
		var err error
		if req.Name != "" {
			totals, err = svc.ResolveByName(r.Context(), domain.Kind(req.Kind), req.Name, req.Quantity)
		} else {
			totals, err = svc.Resolve(r.Context(), domain.Kind(req.Kind), req.ID, req.Quantity)
		}
		if err != nil {
			log.Error("Failed to resolve item", "error", err, "kind", req.Kind)
			respondDomainError(w, err)
			return
		}

		report, err := reporter.Build(r.Context(), totals)
		if err != nil {
			log.Error("Failed to build report", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to build report")
			return
		}

		log.Info("Resolution completed", "kind", req.Kind, "quantity", req.Quantity,
			"base_materials", len(report.Lines))
		respondJSON(w, http.StatusOK, report)
	}
}
