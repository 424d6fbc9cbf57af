// Package http exposes checkout and order endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidegrove/storefront/internal/order/domain"
	"github.com/tidegrove/storefront/internal/order/repository"
	"github.com/tidegrove/storefront/internal/order/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/middleware"
	"github.com/tidegrove/storefront/pkg/pagination"
	"github.com/tidegrove/storefront/pkg/validator"
)

// OrderHandler handles checkout and order endpoints.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an order HTTP handler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// AddressRequest is the JSON shape of a shipping address.
type AddressRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required,len=2"`
	Phone       string `json:"phone"`
}

// CheckoutRequest is the JSON body for placing an order.
type CheckoutRequest struct {
	ShippingAddress AddressRequest `json:"shipping_address" validate:"required"`
	Notes           string         `json:"notes" validate:"max=500"`
}

// Checkout handles POST /api/v1/checkout.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()), service.CheckoutInput{
		ShippingAddress: &domain.Address{
			FullName:    req.ShippingAddress.FullName,
			AddressLine: req.ShippingAddress.AddressLine,
			City:        req.ShippingAddress.City,
			State:       req.ShippingAddress.State,
			PostalCode:  req.ShippingAddress.PostalCode,
			Country:     req.ShippingAddress.Country,
			Phone:       req.ShippingAddress.Phone,
		},
		Notes: req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, order)
}

// List handles GET /api/v1/orders, scoped to the authenticated user.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	userID := middleware.UserIDFromContext(r.Context())

	filter := repository.OrderFilter{
		UserID:  &userID,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(orders, total, params))
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// CancelRequest is the JSON body for canceling an order.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Cancel handles POST /api/v1/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if r.ContentLength > 0 {
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	order, err := h.orders.CancelOrder(r.Context(),
		chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// AdminOrderHandler handles the admin order endpoints, mounted behind
// the admin role check.
type AdminOrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewAdminOrderHandler creates an admin order HTTP handler.
func NewAdminOrderHandler(orders *service.OrderService, logger *slog.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, logger: logger}
}

// List handles GET /api/v1/admin/orders across all users.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.OrderFilter{Page: params.Page, PerPage: params.PerPage}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(orders, total, params))
}

// Get handles GET /api/v1/admin/orders/{id}.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), "")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}

// UpdateStatusRequest is the JSON body for an order status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// UpdateStatus handles PUT /api/v1/admin/orders/{id}/status.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Reason)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, order)
}
