package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grosave/internal/auth"
	"grosave/internal/logger"
	"grosave/internal/models"
	"grosave/internal/order"
	"grosave/internal/order/db"
	"grosave/internal/order/qr"
	"grosave/internal/pickup"
	"grosave/internal/utils"
)

type Handler struct {
	OrderService *order.OrderService
	QR           *qr.Generator
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, qrGen *qr.Generator, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, QR: qrGen, Logger: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service and storage errors onto HTTP statuses. Everything
// the client can fix is a 400, missing rows are 404, the rest is 500.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, db.ErrProductNotFound), errors.Is(err, db.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Not found", err.Error()))
	case errors.Is(err, db.ErrInsufficientStock),
		errors.Is(err, db.ErrInsufficientBalance),
		errors.Is(err, db.ErrSlotCapacityExceeded),
		errors.Is(err, db.ErrInvalidState),
		errors.Is(err, pickup.ErrUnknownSlot),
		errors.Is(err, order.ErrValidation):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Request failed", err.Error()))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
	}
}

// Reserve places an order. Clients may send an Idempotency-Key header so a
// retried request cannot reserve twice.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req models.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	h.Logger.Info("API", fmt.Sprintf("Reserve: user=%s product=%s qty=%d", userID, req.ProductID, req.Quantity))

	created, err := h.OrderService.Reserve(userID, req, idempotencyKey)
	if err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Order confirmed", created))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	found, err := h.OrderService.GetOrderForUser(orderID, userID)
	if err != nil {
		h.writeError(w, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order", found))
}

func (h *Handler) ActiveOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	orders, err := h.OrderService.ActiveOrders(userID)
	if err != nil {
		h.writeError(w, "ActiveOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Active orders", orders))
}

func (h *Handler) PastOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	orders, err := h.OrderService.PastOrders(userID)
	if err != nil {
		h.writeError(w, "PastOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Past orders", orders))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.Cancel(orderID, userID); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order cancelled, coins refunded", nil))
}

func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.MarkReady(orderID, userID); err != nil {
		h.writeError(w, "MarkReady", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order ready for pickup", nil))
}

func (h *Handler) MarkScanned(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.MarkScanned(orderID, userID); err != nil {
		h.writeError(w, "MarkScanned", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order scanned", nil))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	if err := h.OrderService.Complete(orderID, userID); err != nil {
		h.writeError(w, "Complete", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order completed", nil))
}

// PickupQR renders the order's verification payload as a PNG QR code for
// the store counter to scan.
func (h *Handler) PickupQR(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	orderID := chi.URLParam(r, "orderId")

	found, err := h.OrderService.GetOrderForUser(orderID, userID)
	if err != nil {
		h.writeError(w, "PickupQR", err)
		return
	}

	png, err := h.QR.OrderQR(*found)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PickupQR: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("QR generation failed", "internal error"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
