package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
	"github.com/mearah/craftbom/internal/repository"
)

// AddRequirementRequest adds one ingredient edge to an item's recipe
type AddRequirementRequest struct {
	IngredientKind string `json:"ingredient_kind" validate:"required,kind"`
	IngredientID   int    `json:"ingredient_id" validate:"required,min=1"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
}

// RequirementListResponse wraps a recipe's requirement edges
type RequirementListResponse struct {
	Requirements []domain.RecipeRequirement `json:"requirements"`
	Count        int                        `json:"count"`
}

// UsageListResponse wraps the recipes that consume an ingredient
type UsageListResponse struct {
	Usages []domain.Usage `json:"usages"`
	Count  int            `json:"count"`
}

// HandleListRequirements handles listing a recipe's ingredient edges
// @Summary List an item's recipe requirements
// @Tags requirements
// @Produce json
// @Param kind path string true "Item kind" Enums(material, product)
// @Param id path int true "Item ID"
// @Success 200 {object} RequirementListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id}/requirements [get]
func HandleListRequirements(repo repository.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		kind, err := kindParam(r)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid item ID")
			return
		}

		reqs, err := repo.ListRequirements(r.Context(), kind, id)
		if err != nil {
			log.Error("Failed to list requirements", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, RequirementListResponse{Requirements: reqs, Count: len(reqs)})
	}
}

// HandleAddRequirement handles adding an ingredient edge to a recipe
// @Summary Add a recipe requirement
// @Description Adds an ingredient edge to the item's recipe. Rejected with 409 if the edge would close a cycle or reference a missing item
// @Tags requirements
// @Accept json
// @Produce json
// @Param kind path string true "Item kind" Enums(material, product)
// @Param id path int true "Item ID"
// @Param request body AddRequirementRequest true "Ingredient edge"
// @Success 201 {object} IDResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Integrity violation"
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id}/requirements [post]
func HandleAddRequirement(repo repository.Item, svc bom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		kind, err := kindParam(r)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid item ID")
			return
		}

		var req AddRequirementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode add requirement request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, r, err)
			return
		}

		edge := &domain.RecipeRequirement{
			RecipeKind:     kind,
			RecipeID:       id,
			IngredientKind: domain.Kind(req.IngredientKind),
			IngredientID:   req.IngredientID,
			Quantity:       req.Quantity,
		}

		reqID, err := repo.AddRequirement(r.Context(), edge)
		if err != nil {
			log.Warn("Failed to add requirement", "error", err,
				"recipe", edge.RecipeKind, "recipe_id", edge.RecipeID,
				"ingredient", edge.IngredientKind, "ingredient_id", edge.IngredientID)
			if statusForError(err) == http.StatusConflict {
				metrics.IntegrityRejections.Inc()
			}
			respondDomainError(w, err)
			return
		}

		svc.InvalidateCache()
		log.Info("Requirement added", "id", reqID, "recipe", edge.RecipeKind, "recipe_id", edge.RecipeID)
		respondJSON(w, http.StatusCreated, IDResponse{ID: reqID})
	}
}

// HandleDeleteRequirement handles removing one ingredient edge
// @Summary Delete a recipe requirement by its edge ID
// @Tags requirements
// @Produce json
// @Param id path int true "Requirement ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Requirement not found"
// @Failure 500 {object} ErrorResponse
// @Router /requirements/{id} [delete]
func HandleDeleteRequirement(repo repository.Item, svc bom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid requirement ID")
			return
		}

		if err := repo.DeleteRequirement(r.Context(), id); err != nil {
			log.Error("Failed to delete requirement", "error", err, "id", id)
			respondDomainError(w, err)
			return
		}

		svc.InvalidateCache()
		log.Info("Requirement deleted", "id", id)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Requirement deleted"})
	}
}

// HandleListUsages handles the reverse lookup of where an ingredient is used
// @Summary List recipes that use an item as an ingredient
// @Tags requirements
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Param id path int true "Item ID"
// @Success 200 {object} UsageListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id}/usages [get]
func HandleListUsages(repo repository.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		kind, err := kindParam(r)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		id, ok := idParam(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid item ID")
			return
		}

		usages, err := repo.ListUsages(r.Context(), kind, id)
		if err != nil {
			log.Error("Failed to list usages", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, UsageListResponse{Usages: usages, Count: len(usages)})
	}
}
