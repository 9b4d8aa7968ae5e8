package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mearah/craftbom/internal/logger"
	"github.com/mearah/craftbom/internal/repository"
)

// TaxRateRequest sets the transaction tax applied to report totals
type TaxRateRequest struct {
	Rate float64 `json:"rate" validate:"min=0,max=100"`
}

// TaxRateResponse returns the current transaction tax rate
type TaxRateResponse struct {
	Rate float64 `json:"rate"`
}

// HandleGetTaxRate handles reading the configured tax rate
// @Summary Get the transaction tax rate
// @Tags settings
// @Produce json
// @Success 200 {object} TaxRateResponse
// @Failure 500 {object} ErrorResponse
// @Router /settings/tax-rate [get]
func HandleGetTaxRate(settings repository.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		rate, err := settings.GetTaxRate(r.Context())
		if err != nil {
			log.Error("Failed to get tax rate", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to get tax rate")
			return
		}

		respondJSON(w, http.StatusOK, TaxRateResponse{Rate: rate})
	}
}

// HandleSetTaxRate handles updating the configured tax rate
// @Summary Set the transaction tax rate
// @Tags settings
// @Accept json
// @Produce json
// @Param request body TaxRateRequest true "Tax rate percentage"
// @Success 200 {object} TaxRateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /settings/tax-rate [put]
func HandleSetTaxRate(settings repository.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req TaxRateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode tax rate request", "error", err)
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := GetValidator().ValidateStruct(req); err != nil {
			respondValidationError(w, r, err)
			return
		}

		if err := settings.SetTaxRate(r.Context(), req.Rate); err != nil {
			log.Error("Failed to set tax rate", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to set tax rate")
			return
		}

		log.Info("Tax rate updated", "rate", req.Rate)
		respondJSON(w, http.StatusOK, TaxRateResponse{Rate: req.Rate})
	}
}
