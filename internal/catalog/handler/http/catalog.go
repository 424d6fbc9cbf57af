// Package http exposes the catalog over the storefront REST API.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/repository"
	"github.com/tidegrove/storefront/internal/catalog/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/pagination"
)

// CatalogHandler handles the public catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListProducts handles GET /api/v1/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{Page: params.Page, PerPage: params.PerPage}

	q := r.URL.Query()
	if v := q.Get("category"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("subcategory"); v != "" {
		filter.SubcategoryID = &v
	}
	if v := q.Get("brand"); v != "" {
		filter.BrandID = &v
	}
	if v := q.Get("product_type"); v != "" {
		filter.ProductTypeID = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("on_sale"); v != "" {
		onSale := v == "true" || v == "1"
		filter.OnSale = &onSale
	}
	if v := q.Get("min_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorBody{Code: "INVALID_PARAMETER", Message: "min_price must be a valid number"},
			})
			return
		}
		filter.MinPrice = &price
	}
	if v := q.Get("max_price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorBody{Code: "INVALID_PARAMETER", Message: "max_price must be a valid number"},
			})
			return
		}
		filter.MaxPrice = &price
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorBody{Code: "INVALID_PARAMETER", Message: "min_price must not exceed max_price"},
		})
		return
	}

	products, total, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(products, total, params))
}

// GetProduct handles GET /api/v1/products/{idOrSlug}. It accepts both a
// UUID and a slug.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")

	var (
		product *domain.Product
		err     error
	)
	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = h.catalog.GetProduct(r.Context(), idOrSlug)
	} else {
		product, err = h.catalog.GetProductBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, product)
}

// ListTerms handles GET /api/v1/{taxonomy}, where taxonomy is one of
// categories, subcategories, brands, or product-types.
func (h *CatalogHandler) ListTerms(kind domain.TermKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		terms, err := h.catalog.ListTerms(r.Context(), kind)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteData(w, http.StatusOK, terms)
	}
}
