package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/metrics"
	"github.com/mearah/craftbom/internal/repository"
)

// CreateItemRequest adds a new item to the store
type CreateItemRequest struct {
	Kind           string  `json:"kind" validate:"required,kind"`
	Name           string  `json:"name" validate:"required,max=200,excludesall=\x00\n\r\t"`
	OutputQuantity int     `json:"output_quantity,omitempty" validate:"omitempty,min=1"`
	Description    string  `json:"description,omitempty" validate:"max=2000"`
	UnitCost       float64 `json:"unit_cost,omitempty" validate:"omitempty,min=0"`
}

// UpdateItemRequest changes an existing item's mutable fields
type UpdateItemRequest struct {
	Name           string  `json:"name" validate:"required,max=200,excludesall=\x00\n\r\t"`
	OutputQuantity int     `json:"output_quantity,omitempty" validate:"omitempty,min=1"`
	Description    string  `json:"description,omitempty" validate:"max=2000"`
	UnitCost       float64 `json:"unit_cost,omitempty" validate:"omitempty,min=0"`
}

// ItemListResponse wraps an item listing
type ItemListResponse struct {
	Items []domain.Item `json:"items"`
	Count int           `json:"count"`
}

// SearchResponse groups matching items per kind
type SearchResponse struct {
	Results map[domain.Kind][]domain.Item `json:"results"`
}

// HandleListItems handles listing items of a kind
// @Summary List items of a kind
// @Tags items
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Success 200 {object} ItemListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind} [get]
func HandleListItems(repo repository.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		kind, err := kindParam(r)
		if err != nil {
			respondDomainError(w, err)
			return
		}

		items, err := repo.ListItems(r.Context(), kind)
		if err != nil {
			log.Error("Failed to list items", "error", err, "kind", kind)
			respondError(w, http.StatusInternalServerError, "Failed to list items")
			return
		}

		respondJSON(w, http.StatusOK, ItemListResponse{Items: items, Count: len(items)})
	}
}

// HandleGetItem handles fetching a single item
// @Summary Get an item by kind and ID
// @Tags items
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Param id path int true "Item ID"
// @Success 200 {object} domain.Item
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id} [get]
func HandleGetItem(repo repository.Item) http.HandlerFunc {
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

		item, err := repo.GetItemByID(r.Context(), kind, id)
		if err != nil {
			log.Warn("Failed to get item", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

// HandleCreateItem handles item creation
// @Summary Create an item
// @Description Creates an item; the store assigns the next ID within the kind. Names are unique per kind
// @Tags items
// @Accept json
// @Produce json
// @Param request body CreateItemRequest true "Item details"
// @Success 201 {object} IDResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Duplicate name"
// @Failure 500 {object} ErrorResponse
// @Router /items [post]
func HandleCreateItem(repo repository.Item, svc bom.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req CreateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode create item request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, r, err)
			return
		}

		item := &domain.Item{
			Kind:           domain.Kind(req.Kind),
			Name:           strings.TrimSpace(req.Name),
			OutputQuantity: req.OutputQuantity,
			Description:    req.Description,
			UnitCost:       req.UnitCost,
		}

		id, err := repo.InsertItem(r.Context(), item)
		if err != nil {
			log.Error("Failed to create item", "error", err, "kind", req.Kind, "name", req.Name)
			respondDomainError(w, err)
			return
		}

		metrics.ItemsCreated.WithLabelValues(req.Kind).Inc()
		svc.InvalidateCache()
		log.Info("Item created", "kind", req.Kind, "id", id, "name", item.Name)
		respondJSON(w, http.StatusCreated, IDResponse{ID: id})
	}
}

// HandleUpdateItem handles item updates
// @Summary Update an item
// @Tags items
// @Accept json
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Param id path int true "Item ID"
// @Param request body UpdateItemRequest true "Updated fields"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 409 {object} ErrorResponse "Duplicate name"
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id} [put]
func HandleUpdateItem(repo repository.Item, svc bom.Service) http.HandlerFunc {
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

		var req UpdateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode update item request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, r, err)
			return
		}

		item := &domain.Item{
			ID:             id,
			Kind:           kind,
			Name:           strings.TrimSpace(req.Name),
			OutputQuantity: req.OutputQuantity,
			Description:    req.Description,
			UnitCost:       req.UnitCost,
		}

		if err := repo.UpdateItem(r.Context(), item); err != nil {
			log.Error("Failed to update item", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		svc.InvalidateCache()
		log.Info("Item updated", "kind", kind, "id", id, "name", item.Name)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Item updated"})
	}
}

// HandleDeleteItem handles item deletion
// @Summary Delete an item
// @Description Deletes an item together with its recipe edges and any edges that use it as an ingredient
// @Tags items
// @Produce json
// @Param kind path string true "Item kind" Enums(base, material, product)
// @Param id path int true "Item ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Item not found"
// @Failure 500 {object} ErrorResponse
// @Router /items/{kind}/{id} [delete]
func HandleDeleteItem(repo repository.Item, svc bom.Service) http.HandlerFunc {
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

		if err := repo.DeleteItem(r.Context(), kind, id); err != nil {
			log.Error("Failed to delete item", "error", err, "kind", kind, "id", id)
			respondDomainError(w, err)
			return
		}

		metrics.ItemsDeleted.WithLabelValues(string(kind)).Inc()
		svc.InvalidateCache()
		log.Info("Item deleted", "kind", kind, "id", id)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Item deleted"})
	}
}

// HandleSearchItems handles keyword search across all kinds
// @Summary Search items by keyword
// @Description Case-insensitive substring match on item names, grouped by kind
// @Tags items
// @Produce json
// @Param q query string true "Search keyword"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /items/search [get]
func HandleSearchItems(repo repository.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		keyword := strings.TrimSpace(r.URL.Query().Get("q"))
		if keyword == "" {
			respondError(w, http.StatusBadRequest, "Missing search keyword")
			return
		}

		results, err := repo.SearchItems(r.Context(), keyword)
		if err != nil {
			log.Error("Failed to search items", "error", err, "keyword", keyword)
			respondError(w, http.StatusInternalServerError, "Failed to search items")
			return
		}

		metrics.SearchesPerformed.Inc()
		respondJSON(w, http.StatusOK, SearchResponse{Results: results})
	}
}

// HandleGetStatistics handles store statistics
// @Summary Get store statistics
// @Tags items
// @Produce json
// @Success 200 {object} domain.Statistics
// @Failure 500 {object} ErrorResponse
// @Router /statistics [get]
func HandleGetStatistics(repo repository.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		stats, err := repo.GetStatistics(r.Context())
		if err != nil {
			log.Error("Failed to get statistics", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get statistics")
			return
		}

		respondJSON(w, http.StatusOK, stats)
	}
}
