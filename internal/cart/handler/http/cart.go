// Package http exposes the cart over the storefront REST API. All routes
// require authentication; the user ID comes from the verified token.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidegrove/storefront/internal/cart/domain"
	"github.com/tidegrove/storefront/internal/cart/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/middleware"
	"github.com/tidegrove/storefront/pkg/validator"
)

// CartHandler handles the cart endpoints.
type CartHandler struct {
	cart   *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(cart *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

// cartResponse is the cart payload with derived aggregates. Clients never
// see stored totals; both fields are computed from the items at write
// time.
type cartResponse struct {
	*domain.Cart
	ItemCount int   `json:"item_count"`
	Subtotal  int64 `json:"subtotal"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{Cart: cart, ItemCount: cart.ItemCount(), Subtotal: cart.Subtotal()}
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.GetCart(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// AddItemRequest is the JSON body for adding a cart line.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.cart.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// UpdateItemRequest is the JSON body for setting a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// UpdateItem handles PUT /api/v1/cart/items/{productID}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.cart.UpdateItemQuantity(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveItem(r.Context(),
		middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(cart))
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
