package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grosave/internal/auth"
	"grosave/internal/logger"
	notifdb "grosave/internal/notification/db"
	"grosave/internal/utils"
)

type Handler struct {
	DB     *notifdb.DB
	Logger *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	notifications, err := h.DB.ListNotifications(userID)
	if err != nil {
		h.Logger.Error("NOTIFY", fmt.Sprintf("List: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Notifications", notifications))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := chi.URLParam(r, "notificationId")

	err := h.DB.MarkRead(id, userID)
	if errors.Is(err, notifdb.ErrNotificationNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Notification not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("NOTIFY", fmt.Sprintf("MarkRead: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Notification marked read", nil))
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	updated, err := h.DB.MarkAllRead(userID)
	if err != nil {
		h.Logger.Error("NOTIFY", fmt.Sprintf("MarkAllRead: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Notifications marked read", map[string]int64{"updated": updated}))
}
