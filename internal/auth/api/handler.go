package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"grosave/internal/auth"
	authdb "grosave/internal/auth/db"
	"grosave/internal/logger"
	"grosave/internal/models"
	"grosave/internal/utils"
)

type Handler struct {
	Auth   *auth.Service
	Logger *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Phone required", "phone required"))
		return
	}

	otp, err := h.Auth.SendOTP(r.Context(), req.Phone)
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("SendOTP: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to send OTP", "internal error"))
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("OTP issued for %s", req.Phone))
	// The OTP rides along in the response; there is no SMS gateway in the
	// demo deployment.
	writeJSON(w, http.StatusOK, utils.SuccessResponse("OTP sent", map[string]string{"otp": otp}))
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.OTP == "" {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Phone and OTP required", "phone and otp required"))
		return
	}

	token, user, err := h.Auth.VerifyOTPAndLogin(r.Context(), req.Phone, req.OTP)
	if errors.Is(err, auth.ErrInvalidOTP) {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid OTP", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("VerifyOTP: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "internal error"))
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("User %s logged in", user.ID))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", map[string]any{
		"token": token,
		"user":  user,
	}))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	user, err := h.Auth.Profile(userID)
	if errors.Is(err, authdb.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("GetProfile: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch profile", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Profile", user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.saveProfile(w, r, false)
}

// Register completes the onboarding profile and flips the user to verified.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.saveProfile(w, r, true)
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request, register bool) {
	userID := auth.UserID(r.Context())

	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	var (
		user *models.User
		err  error
	)
	if register {
		user, err = h.Auth.Register(userID, upd)
	} else {
		user, err = h.Auth.UpdateProfile(userID, upd)
	}
	if errors.Is(err, authdb.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("saveProfile: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Profile update failed", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Profile saved", user))
}
