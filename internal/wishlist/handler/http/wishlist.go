// Package http exposes the wishlist over the storefront REST API. All
// routes require authentication; every response body is the canonical
// full list.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidegrove/storefront/internal/wishlist/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/middleware"
	"github.com/tidegrove/storefront/pkg/validator"
)

// WishlistHandler handles the wishlist endpoints.
type WishlistHandler struct {
	wishlist *service.WishlistService
	logger   *slog.Logger
}

// NewWishlistHandler creates a wishlist HTTP handler.
func NewWishlistHandler(wishlist *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, logger: logger}
}

// List handles GET /api/v1/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.wishlist.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// AddItemRequest is the JSON body for adding a wishlist item.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// AddItem handles POST /api/v1/wishlist/items.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products, err := h.wishlist.Add(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productID}.
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	products, err := h.wishlist.Remove(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// Contains handles GET /api/v1/wishlist/items/{productID}.
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	ok, err := h.wishlist.Contains(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]bool{"in_wishlist": ok})
}

// Clear handles DELETE /api/v1/wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.wishlist.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
