package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"grosave/internal/logger"
	"grosave/internal/models"
	"grosave/internal/order/db"
	"grosave/internal/utils"
)

// AdminHandler backs the demo-admin endpoints. The override deliberately
// skips the lifecycle status gates, which is why it lives apart from the
// user-facing handlers.
type AdminHandler struct {
	DB     *db.DB
	Token  string
	Logger *logger.Logger
}

// authorize expects "Authorization: DemoAdmin <token>".
func (h *AdminHandler) authorize(r *http.Request) bool {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	return len(parts) == 2 && parts[0] == "DemoAdmin" && h.Token != "" && parts[1] == h.Token
}

func (h *AdminHandler) ForceTransition(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "demo admin token required"))
		return
	}

	orderID := chi.URLParam(r, "orderId")

	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	var (
		target  models.OrderStatus
		scanned bool
	)
	switch req.To {
	case "confirmed":
		target = models.OrderConfirmed
	case "ready":
		target = models.OrderReady
	case "scanned":
		scanned = true
	case "completed":
		target = models.OrderCompleted
	case "cancelled":
		target = models.OrderCancelled
	default:
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid target state", req.To))
		return
	}

	updated, err := h.DB.ForceTransition(orderID, target, scanned)
	if errors.Is(err, db.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("ADMIN", fmt.Sprintf("ForceTransition: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}

	h.Logger.Warn("ADMIN", fmt.Sprintf("order %s forced to %s", orderID, req.To))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order transitioned", updated))
}
