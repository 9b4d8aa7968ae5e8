package handler

import (
	"net/http"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/logger"
)

// HandleGetTree handles recipe tree rendering
// @Summary Get an item's recipe tree
// @Description Returns the item's full recipe expansion as a nested tree, preserving requirement order
// @Tags resolve
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Param id path int true "Item ID"
// @Param quantity query int false "Requested quantity" default(1)
// @Success 200 {object} bom.TreeNode
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 422 {object} ErrorResponse "Recipe cycle detected"
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id}/tree [get]
func HandleGetTree(svc bom.Service) http.HandlerFunc {
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
		quantity, ok := quantityQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid quantity")
			return
		}

		tree, err := svc.BuildTree(r.Context(), kind, id, quantity)
		if err != nil {
			log.Error("Failed to build tree", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, tree)
	}
}
