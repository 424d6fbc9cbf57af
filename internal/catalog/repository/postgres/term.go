package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/pkg/database"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// termTables maps each taxonomy kind to its table. Terms share a schema;
// keeping separate tables keeps foreign keys from products simple.
var termTables = map[domain.TermKind]string{
	domain.KindCategory:    "categories",
	domain.KindSubcategory: "subcategories",
	domain.KindBrand:       "brands",
	domain.KindProductType: "product_types",
}

// TermRepository implements repository.TermRepository using PostgreSQL.
type TermRepository struct {
	db database.DBTX
}

// NewTermRepository creates a PostgreSQL-backed taxonomy term repository.
func NewTermRepository(db database.DBTX) *TermRepository {
	return &TermRepository{db: db}
}

func termTable(kind domain.TermKind) (string, error) {
	table, ok := termTables[kind]
	if !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown taxonomy %q", kind))
	}
	return table, nil
}

// Create inserts a new term into its taxonomy table.
func (r *TermRepository) Create(ctx context.Context, term *domain.Term) error {
	table, err := termTable(term.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, table)

	_, err = r.db.Exec(ctx, query,
		term.ID, term.Name, term.Slug, term.ParentID, term.CreatedAt, term.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists(string(term.Kind), "slug", term.Slug)
		}
		return fmt.Errorf("insert %s: %w", term.Kind, err)
	}
	return nil
}

// GetByID retrieves a term by ID.
func (r *TermRepository) GetByID(ctx context.Context, kind domain.TermKind, id string) (*domain.Term, error) {
	return r.getBy(ctx, kind, "id = $1", id)
}

// GetByName retrieves a term by exact, case-insensitive name.
func (r *TermRepository) GetByName(ctx context.Context, kind domain.TermKind, name string) (*domain.Term, error) {
	return r.getBy(ctx, kind, "lower(name) = lower($1)", name)
}

// GetBySlug retrieves a term by slug.
func (r *TermRepository) GetBySlug(ctx context.Context, kind domain.TermKind, slug string) (*domain.Term, error) {
	return r.getBy(ctx, kind, "slug = $1", slug)
}

func (r *TermRepository) getBy(ctx context.Context, kind domain.TermKind, cond string, arg any) (*domain.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, parent_id, created_at, updated_at
		FROM %s WHERE %s`, table, cond)

	term := domain.Term{Kind: kind}
	err = r.db.QueryRow(ctx, query, arg).Scan(
		&term.ID, &term.Name, &term.Slug, &term.ParentID, &term.CreatedAt, &term.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(string(kind), fmt.Sprint(arg))
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return &term, nil
}

// List returns all terms of a taxonomy ordered by name.
func (r *TermRepository) List(ctx context.Context, kind domain.TermKind) ([]domain.Term, error) {
	table, err := termTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, parent_id, created_at, updated_at
		FROM %s ORDER BY name`, table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	terms := []domain.Term{}
	for rows.Next() {
		term := domain.Term{Kind: kind}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &term.ParentID, &term.CreatedAt, &term.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", kind, err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", kind, err)
	}
	return terms, nil
}

// Delete removes a term by ID.
func (r *TermRepository) Delete(ctx context.Context, kind domain.TermKind, id string) error {
	table, err := termTable(kind)
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound(string(kind), id)
	}
	return nil
}
