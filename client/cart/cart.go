// Package cart implements the client-side cart manager. It keeps one local
// cart model and reconciles it against two backends: local storage while
// the user is a guest, and the storefront API once they are signed in.
// Authenticated mutations are optimistic: the local copy changes first, a
// failed server call restores the pre-mutation snapshot.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidegrove/storefront/client/api"
	"github.com/tidegrove/storefront/client/storage"
)

// GuestCartID is the sentinel cart ID used while no server cart exists.
const GuestCartID = "guest-cart"

// Line is one cart entry with its product snapshot.
type Line struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Images    []string `json:"images"`
	Price     int64    `json:"price"`
	SalePrice *int64   `json:"sale_price,omitempty"`
	Quantity  int      `json:"quantity"`
}

// EffectivePrice returns the sale price when present, the base price
// otherwise.
func (l *Line) EffectivePrice() int64 {
	if l.SalePrice != nil {
		return *l.SalePrice
	}
	return l.Price
}

// Cart is the local cart model. ItemCount and Subtotal are always
// recomputed from Items after every change; stored aggregates are never
// trusted.
type Cart struct {
	ID        string `json:"id"`
	Items     []Line `json:"items"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
}

func (c *Cart) recompute() {
	c.ItemCount = 0
	c.Subtotal = 0
	for i := range c.Items {
		c.ItemCount += c.Items[i].Quantity
		c.Subtotal += int64(c.Items[i].Quantity) * c.Items[i].EffectivePrice()
	}
}

func (c *Cart) clone() *Cart {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Items = make([]Line, len(c.Items))
	copy(dup.Items, c.Items)
	return &dup
}

func (c *Cart) find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// guestLine is the storage representation of a guest cart entry. Only the
// product reference and quantity are persisted; product details are
// re-fetched on load so stale names and prices never survive a restart.
type guestLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Manager owns the local cart and its reconciliation with storage or the
// server. All methods are safe for concurrent use: the manager mutex is
// held across the full optimistic-apply, server-sync, commit-or-rollback
// span, so concurrent mutations are serialized rather than racing.
type Manager struct {
	mu      sync.Mutex
	api     *api.Client
	store   storage.Store
	logger  *slog.Logger
	cart    *Cart
	userID  string // "" while guest
	current mutation
}

// NewManager creates a Manager in guest mode. Call Refresh to hydrate
// state from storage, and Authenticate after a login.
func NewManager(client *api.Client, store storage.Store, logger *slog.Logger) *Manager {
	return &Manager{api: client, store: store, logger: logger}
}

// Cart returns a copy of the current cart, or nil when it is empty.
func (m *Manager) Cart() *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.clone()
}

// LastMutation reports the state the most recent mutation ended in.
func (m *Manager) LastMutation() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.state
}

// Authenticated reports whether the manager is in authenticated mode.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID != ""
}

// AddToCart adds quantity of a product to the cart, merging with any
// existing line for the same product. In guest mode the product details
// are fetched for the local snapshot and the result is persisted; in
// authenticated mode the server performs the merge and its returned cart
// replaces local state.
func (m *Manager) AddToCart(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userID != "" {
		return m.addAuthenticated(ctx, productID, quantity)
	}
	return m.addGuest(ctx, productID, quantity)
}

func (m *Manager) addGuest(ctx context.Context, productID string, quantity int) error {
	product, err := m.api.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("fetch product %s: %w", productID, err)
	}

	m.current.begin(m.cart.clone())

	cart := m.cart
	if cart == nil {
		cart = &Cart{ID: GuestCartID}
	}
	if i := cart.find(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Images:    product.Images,
			Price:     product.Price,
			SalePrice: product.SalePrice,
			Quantity:  quantity,
		})
	}
	cart.recompute()
	m.cart = cart

	if err := m.persistGuest(); err != nil {
		restored := m.current.rollback()
		m.cart = restored
		return err
	}
	m.current.commit()
	return nil
}

func (m *Manager) addAuthenticated(ctx context.Context, productID string, quantity int) error {
	m.current.begin(m.cart.clone())

	// Optimistic merge so the UI updates before the round trip; the
	// server's response is authoritative and replaces it on success.
	if m.cart != nil {
		if i := m.cart.find(productID); i >= 0 {
			m.cart.Items[i].Quantity += quantity
			m.cart.recompute()
		}
	}
	m.current.awaitServer()

	serverCart, err := m.api.AddCartItem(ctx, productID, quantity)
	if err != nil {
		m.cart = m.current.rollback()
		return fmt.Errorf("add item %s: %w", productID, err)
	}
	m.cart = fromAPI(serverCart)
	m.current.commit()
	return nil
}

// UpdateItem sets the quantity of an existing cart line. Quantity 0
// removes the line.
func (m *Manager) UpdateItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", quantity)
	}
	if quantity == 0 {
		return m.RemoveItem(ctx, productID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart == nil || m.cart.find(productID) < 0 {
		return fmt.Errorf("product %s is not in the cart", productID)
	}

	m.current.begin(m.cart.clone())
	m.cart.Items[m.cart.find(productID)].Quantity = quantity
	m.cart.recompute()

	if m.userID == "" {
		if err := m.persistGuest(); err != nil {
			m.cart = m.current.rollback()
			return err
		}
		m.current.commit()
		return nil
	}

	m.current.awaitServer()
	if _, err := m.api.UpdateCartItem(ctx, productID, quantity); err != nil {
		m.cart = m.current.rollback()
		return fmt.Errorf("update item %s: %w", productID, err)
	}
	m.current.commit()
	return nil
}

// RemoveItem removes a cart line. Removing the last guest line deletes the
// guest cart from storage entirely.
func (m *Manager) RemoveItem(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart == nil || m.cart.find(productID) < 0 {
		return fmt.Errorf("product %s is not in the cart", productID)
	}

	m.current.begin(m.cart.clone())
	i := m.cart.find(productID)
	m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
	m.cart.recompute()
	if len(m.cart.Items) == 0 {
		m.cart = nil
	}

	if m.userID == "" {
		if err := m.persistGuest(); err != nil {
			m.cart = m.current.rollback()
			return err
		}
		m.current.commit()
		return nil
	}

	m.current.awaitServer()
	if _, err := m.api.RemoveCartItem(ctx, productID); err != nil {
		m.cart = m.current.rollback()
		return fmt.Errorf("remove item %s: %w", productID, err)
	}
	m.current.commit()
	return nil
}

// Refresh rebuilds local state from the current authority: the server cart
// when authenticated, stored guest lines otherwise. Guest lines whose
// product can no longer be fetched are skipped rather than aborting the
// whole refresh.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) error {
	if m.userID != "" {
		serverCart, err := m.api.GetCart(ctx)
		if err != nil {
			return fmt.Errorf("refresh cart: %w", err)
		}
		m.cart = fromAPI(serverCart)
		return nil
	}

	var lines []guestLine
	ok, err := m.store.Get(storage.KeyGuestCart, &lines)
	if err != nil {
		return fmt.Errorf("load guest cart: %w", err)
	}
	if !ok || len(lines) == 0 {
		m.cart = nil
		return nil
	}

	cart := &Cart{ID: GuestCartID}
	for _, line := range lines {
		product, err := m.api.GetProduct(ctx, line.ProductID)
		if err != nil {
			m.logger.Warn("skipping unavailable guest cart line",
				slog.String("product_id", line.ProductID),
				slog.String("error", err.Error()))
			continue
		}
		cart.Items = append(cart.Items, Line{
			ProductID: product.ID,
			Name:      product.Name,
			Images:    product.Images,
			Price:     product.Price,
			SalePrice: product.SalePrice,
			Quantity:  line.Quantity,
		})
	}
	if len(cart.Items) == 0 {
		m.cart = nil
		return nil
	}
	cart.recompute()
	m.cart = cart
	return nil
}

// Clear empties the local cart and guest storage. The server cart is left
// untouched; use the checkout flow or the API directly to clear it.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart = nil
	if err := m.store.Delete(storage.KeyGuestCart); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	return nil
}

// Authenticate switches the manager to authenticated mode for userID and
// merges any stored guest cart into the server cart. Each guest line is
// pushed through the server's add-item merge; lines that fail are logged
// and skipped so one dead product cannot hold the rest of the cart
// hostage. Guest storage is deleted once the merge pass finishes, and the
// final server cart becomes local state.
func (m *Manager) Authenticate(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userID == userID {
		return m.refreshLocked(ctx)
	}
	m.userID = userID

	var lines []guestLine
	ok, err := m.store.Get(storage.KeyGuestCart, &lines)
	if err != nil {
		return fmt.Errorf("load guest cart for merge: %w", err)
	}
	if ok {
		for _, line := range lines {
			if _, err := m.api.AddCartItem(ctx, line.ProductID, line.Quantity); err != nil {
				m.logger.Warn("guest cart line not merged",
					slog.String("product_id", line.ProductID),
					slog.String("error", err.Error()))
			}
		}
		if err := m.store.Delete(storage.KeyGuestCart); err != nil {
			return fmt.Errorf("delete merged guest cart: %w", err)
		}
	}

	return m.refreshLocked(ctx)
}

// Logout returns the manager to guest mode with an empty cart. Stored
// guest state, if any, is picked up by the next Refresh.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID = ""
	m.cart = nil
}

// persistGuest writes the current cart's lines to guest storage, deleting
// the key when the cart is empty.
func (m *Manager) persistGuest() error {
	if m.cart == nil || len(m.cart.Items) == 0 {
		if err := m.store.Delete(storage.KeyGuestCart); err != nil {
			return fmt.Errorf("delete guest cart: %w", err)
		}
		return nil
	}
	lines := make([]guestLine, 0, len(m.cart.Items))
	for i := range m.cart.Items {
		lines = append(lines, guestLine{
			ProductID: m.cart.Items[i].ProductID,
			Quantity:  m.cart.Items[i].Quantity,
		})
	}
	if err := m.store.Set(storage.KeyGuestCart, lines); err != nil {
		return fmt.Errorf("persist guest cart: %w", err)
	}
	return nil
}

func fromAPI(c *api.Cart) *Cart {
	if c == nil || len(c.Items) == 0 {
		return nil
	}
	cart := &Cart{ID: c.ID, Items: make([]Line, 0, len(c.Items))}
	for _, it := range c.Items {
		cart.Items = append(cart.Items, Line{
			ProductID: it.ProductID,
			Name:      it.Name,
			Images:    it.Images,
			Price:     it.Price,
			SalePrice: it.SalePrice,
			Quantity:  it.Quantity,
		})
	}
	cart.recompute()
	return cart
}
