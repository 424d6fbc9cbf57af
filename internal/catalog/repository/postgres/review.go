package postgres

import (
	"context"
	"fmt"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. The (product_id, user_id) unique index enforces
// one review per user per product.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Comment,
		review.CreatedAt, review.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "product_id", review.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ListByProduct returns reviews for a product, newest first, with the
// total count.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	query := `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, productID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID, &review.ProductID, &review.UserID, &review.Rating, &review.Comment,
			&review.CreatedAt, &review.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, totalCount, nil
}

// Summary returns the average rating and review count for a product.
func (r *ReviewRepository) Summary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	query := `
		SELECT COALESCE(avg(rating), 0), count(*)
		FROM reviews
		WHERE product_id = $1`

	summary := domain.RatingSummary{ProductID: productID}
	if err := r.db.QueryRow(ctx, query, productID).Scan(&summary.Average, &summary.Count); err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	return &summary, nil
}

// Delete removes a review owned by userID.
func (r *ReviewRepository) Delete(ctx context.Context, id, userID string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}
