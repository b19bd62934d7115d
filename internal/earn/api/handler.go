package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grosave/internal/auth"
	"grosave/internal/earn"
	"grosave/internal/logger"
	"grosave/internal/utils"
	walletdb "grosave/internal/wallet/db"
)

type Handler struct {
	Service *earn.EarnService
	Logger  *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) Earn(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	action := chi.URLParam(r, "action")

	result, err := h.Service.Earn(userID, action)
	if errors.Is(err, earn.ErrUnknownAction) {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Unknown earn action", err.Error()))
		return
	}
	if errors.Is(err, walletdb.ErrWalletNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Wallet not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("EARN", fmt.Sprintf("Earn %s: %v", action, err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}

	h.Logger.LogWallet("BONUS", userID, fmt.Sprintf("%s credited %d coins", action, result.Credited))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bonus processed", result))
}
