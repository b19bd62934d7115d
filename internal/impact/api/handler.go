package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"grosave/internal/auth"
	"grosave/internal/impact"
	"grosave/internal/logger"
	"grosave/internal/utils"
)

type Handler struct {
	Service *impact.Service
	Logger  *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) GetImpact(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	summary, err := h.Service.UserImpact(r.Context(), userID)
	if err != nil {
		h.Logger.Error("IMPACT", fmt.Sprintf("GetImpact: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to compute impact", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Impact summary", summary))
}
