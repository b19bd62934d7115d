package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"grosave/internal/logger"
	"grosave/internal/pricing"
	"grosave/internal/utils"
)

type Handler struct {
	Logger *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) SuggestPrice(w http.ResponseWriter, r *http.Request) {
	var signals pricing.Signals
	if err := json.NewDecoder(r.Body).Decode(&signals); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if signals.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Product ID required", "productId required"))
		return
	}

	suggestion, err := pricing.Suggest(signals)
	if errors.Is(err, pricing.ErrInvalidMRP) {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid MRP", err.Error()))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Price suggestion", suggestion))
}
