package api

// Product is the catalog payload the SDK works with. Prices are integer
// minor units; SalePrice is nil when the product is not discounted.
type Product struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Images    []string `json:"images"`
	Price     int64    `json:"price"`
	SalePrice *int64   `json:"sale_price,omitempty"`
	Status    string   `json:"status"`
}

// EffectivePrice returns the sale price when present, the base price
// otherwise.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// CartItem is one line of a server cart.
type CartItem struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Images    []string `json:"images"`
	Price     int64    `json:"price"`
	SalePrice *int64   `json:"sale_price,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Cart is the server cart payload. ItemCount and Subtotal are derived by
// the server; local cart state recomputes them anyway and never trusts
// stored aggregates.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
	Currency  string     `json:"currency"`
}

// Session is the result of a successful login.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}
