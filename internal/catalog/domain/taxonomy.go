package domain

import (
	"time"

	"github.com/google/uuid"
)

// TermKind identifies which taxonomy a term belongs to.
type TermKind string

const (
	KindCategory    TermKind = "category"
	KindSubcategory TermKind = "subcategory"
	KindBrand       TermKind = "brand"
	KindProductType TermKind = "product_type"
)

// Valid reports whether k names a known taxonomy.
func (k TermKind) Valid() bool {
	switch k {
	case KindCategory, KindSubcategory, KindBrand, KindProductType:
		return true
	}
	return false
}

// Term is one entry in a taxonomy: a category, subcategory, brand, or
// product type. ParentID is set only for subcategories and points at the
// owning category.
type Term struct {
	ID        string    `json:"id"`
	Kind      TermKind  `json:"kind"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTerm creates a Term with a fresh ID and timestamps.
func NewTerm(kind TermKind, name, slug string) *Term {
	now := time.Now().UTC()
	return &Term{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
