package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"grosave/internal/logger"
	"grosave/internal/pickup"
	"grosave/internal/utils"
)

type Handler struct {
	Pickup *pickup.Service
	Logger *logger.Logger
}

// GetLocations handles GET /api/pickup-locations.
func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Pickup.Locations()
	if err != nil {
		h.Logger.Error("PICKUP", fmt.Sprintf("GetLocations: %v", err))
		http.Error(w, "Failed to fetch locations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"locations": locations})
}

// GetSlots handles GET /api/pickup-slots?pickupLocationId=...&date=YYYY-MM-DD.
// The legacy locationId query param is honored too.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	locationID := r.URL.Query().Get("pickupLocationId")
	if locationID == "" {
		locationID = r.URL.Query().Get("locationId")
	}
	dateStr := r.URL.Query().Get("date")

	if locationID == "" || dateStr == "" {
		http.Error(w, "locationId/pickupLocationId and date are required", http.StatusBadRequest)
		return
	}

	date, err := utils.ParsePickupDate(dateStr)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	slots, err := h.Pickup.Slots(locationID, utils.AtMidnight(date))
	if err != nil {
		h.Logger.Error("PICKUP", fmt.Sprintf("GetSlots: %v", err))
		http.Error(w, "Failed to fetch slots", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"slots": slots})
}
