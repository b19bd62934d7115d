package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"grosave/internal/auth"
	"grosave/internal/logger"
	"grosave/internal/utils"
	"grosave/internal/wallet"
)

type Handler struct {
	Wallet *wallet.WalletService
	Logger *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	summary, err := h.Wallet.Balance(userID)
	if errors.Is(err, wallet.ErrWalletNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Wallet not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("WALLET", fmt.Sprintf("Balance: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Wallet balance", summary))
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.Wallet.Transactions(userID, page, pageSize)
	if err != nil {
		h.Logger.Error("WALLET", fmt.Sprintf("Transactions: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Transactions", result))
}
