package app

import (
	"context"

	catalogrepo "github.com/tidegrove/storefront/internal/catalog/repository"
	cartservice "github.com/tidegrove/storefront/internal/cart/service"
)

// catalogProducts adapts the catalog product repository to the cart's
// ProductSource and the wishlist's ProductChecker. It reads the
// repository directly so cart and wishlist lookups do not emit
// product.viewed analytics events.
type catalogProducts struct {
	products catalogrepo.ProductRepository
}

func (a *catalogProducts) Product(ctx context.Context, id string) (*cartservice.ProductInfo, error) {
	p, err := a.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &cartservice.ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		Images:    p.Images,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		Active:    p.Purchasable(),
	}, nil
}

func (a *catalogProducts) ProductExists(ctx context.Context, id string) error {
	_, err := a.products.GetByID(ctx, id)
	return err
}
