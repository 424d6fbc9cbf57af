package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/validator"
)

// AdminHandler handles the admin catalog endpoints. Routes are mounted
// behind authentication and the admin role check.
type AdminHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewAdminHandler creates an admin catalog HTTP handler.
func NewAdminHandler(catalog *service.CatalogService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, logger: logger}
}

// CreateProductRequest is the JSON body for creating a product. The
// taxonomy fields accept an ID, an exact name, or a slug.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=500"`
	Description string   `json:"description"`
	Images      []string `json:"images" validate:"omitempty,dive,min=1"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	SalePrice   *int64   `json:"sale_price" validate:"omitempty,gt=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Brand       string   `json:"brand"`
	ProductType string   `json:"product_type"`
	Status      string   `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Currency:    req.Currency,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		ProductType: req.ProductType,
		Status:      req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProductRequest is the JSON body for a partial product update.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=500"`
	Description *string  `json:"description"`
	Images      []string `json:"images" validate:"omitempty,dive,min=1"`
	Price       *int64   `json:"price" validate:"omitempty,gt=0"`
	SalePrice   *int64   `json:"sale_price" validate:"omitempty,gt=0"`
	ClearSale   bool     `json:"clear_sale"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active draft archived"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Brand       string   `json:"brand"`
	ProductType string   `json:"product_type"`
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		ClearSale:   req.ClearSale,
		Status:      req.Status,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Brand:       req.Brand,
		ProductType: req.ProductType,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTermRequest is the JSON body for creating a taxonomy term. Parent
// is required for subcategories and accepts a flexible category
// identifier.
type CreateTermRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Parent string `json:"parent"`
}

// CreateTerm handles POST /api/v1/admin/{taxonomy}.
func (h *AdminHandler) CreateTerm(kind domain.TermKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTermRequest
		if err := validator.DecodeAndValidate(r, &req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}

		term, err := h.catalog.CreateTerm(r.Context(), kind, req.Name, req.Parent)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusCreated, term)
	}
}

// DeleteTerm handles DELETE /api/v1/admin/{taxonomy}/{identifier}.
func (h *AdminHandler) DeleteTerm(kind domain.TermKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.catalog.DeleteTerm(r.Context(), kind, chi.URLParam(r, "identifier")); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
