package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tidegrove/storefront/internal/catalog/service"
	"github.com/tidegrove/storefront/pkg/httputil"
	"github.com/tidegrove/storefront/pkg/middleware"
	"github.com/tidegrove/storefront/pkg/pagination"
	"github.com/tidegrove/storefront/pkg/validator"
)

// ReviewHandler handles the product review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// CreateReviewRequest is the JSON body for posting a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Create handles POST /api/v1/products/{productID}/reviews. Requires
// authentication.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	review, err := h.reviews.Create(r.Context(), chi.URLParam(r, "productID"), userID, req.Rating, req.Comment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, review)
}

// List handles GET /api/v1/products/{productID}/reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	reviews, total, err := h.reviews.ListByProduct(r.Context(), chi.URLParam(r, "productID"), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(reviews, total, params))
}

// Summary handles GET /api/v1/products/{productID}/reviews/summary.
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reviews.Summary(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}

// Delete handles DELETE /api/v1/reviews/{id}. Only the author may delete
// their review.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
