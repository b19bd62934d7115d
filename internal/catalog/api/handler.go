package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"grosave/internal/catalog"
	"grosave/internal/logger"
	"grosave/internal/utils"
)

type Handler struct {
	Catalog *catalog.CatalogService
	Logger  *logger.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))

	result, err := h.Catalog.Products(query.Get("category"), query.Get("search"), page, pageSize)
	if err != nil {
		h.Logger.Error("CATALOG", fmt.Sprintf("ListProducts: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Products", result))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	product, err := h.Catalog.Product(id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Product not found", err.Error()))
		return
	}
	if err != nil {
		h.Logger.Error("CATALOG", fmt.Sprintf("GetProduct: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Product", product))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories()
	if err != nil {
		h.Logger.Error("CATALOG", fmt.Sprintf("ListCategories: %v", err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "internal error"))
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Categories", categories))
}
