package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidegrove/storefront/internal/catalog/domain"
	"github.com/tidegrove/storefront/internal/catalog/repository"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
)

// Resolver turns a flexible taxonomy identifier into a term ID. Admin
// payloads may reference a category, subcategory, brand, or product type
// by ID, by exact name, or by slug; lookups are tried in that order and
// the first match wins. When an identifier happens to match more than one
// term across those fields, the ID interpretation takes precedence.
type Resolver struct {
	terms repository.TermRepository
}

// NewResolver creates a Resolver over the given term repository.
func NewResolver(terms repository.TermRepository) *Resolver {
	return &Resolver{terms: terms}
}

// Resolve returns the ID of the term the identifier refers to. It returns
// ErrNotFound when no interpretation matches.
func (r *Resolver) Resolve(ctx context.Context, kind domain.TermKind, identifier string) (string, error) {
	if !kind.Valid() {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown taxonomy %q", kind))
	}
	if identifier == "" {
		return "", apperrors.InvalidInput("identifier must not be empty")
	}

	lookups := []func() (*domain.Term, error){
		func() (*domain.Term, error) { return r.terms.GetByID(ctx, kind, identifier) },
		func() (*domain.Term, error) { return r.terms.GetByName(ctx, kind, identifier) },
		func() (*domain.Term, error) { return r.terms.GetBySlug(ctx, kind, identifier) },
	}

	for _, lookup := range lookups {
		term, err := lookup()
		if err == nil {
			return term.ID, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("resolve %s %q: %w", kind, identifier, err)
		}
	}
	return "", apperrors.NotFound(string(kind), identifier)
}
