// Package wishlist implements the client-side wishlist manager. Unlike the
// cart, the wishlist stores full product snapshots in guest storage and is
// never merged on login: the server list simply replaces local state when
// the user signs in, and the guest list stays behind in storage.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidegrove/storefront/client/api"
	"github.com/tidegrove/storefront/client/storage"
)

// Manager owns the local wishlist and its reconciliation with storage or
// the server. Safe for concurrent use; mutations are serialized under one
// mutex for the same reason the cart manager's are.
type Manager struct {
	mu            sync.Mutex
	api           *api.Client
	store         storage.Store
	logger        *slog.Logger
	items         []api.Product
	authenticated bool
}

// NewManager creates a Manager in guest mode. Call Refresh to hydrate
// state from storage, and Authenticate after a login.
func NewManager(client *api.Client, store storage.Store, logger *slog.Logger) *Manager {
	return &Manager{api: client, store: store, logger: logger}
}

// Items returns a copy of the current wishlist.
func (m *Manager) Items() []api.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.Product, len(m.items))
	copy(out, m.items)
	return out
}

// Contains reports whether the product is in the wishlist. A linear scan:
// wishlists are small and the slice is the storage format.
func (m *Manager) Contains(productID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(productID) >= 0
}

func (m *Manager) indexOf(productID string) int {
	for i := range m.items {
		if m.items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Add puts a product on the wishlist. Adding a product already present is
// a no-op. In authenticated mode the server's returned list replaces local
// state; a 401 drops the manager back to guest mode and keeps the product
// locally instead of losing the action.
func (m *Manager) Add(ctx context.Context, product api.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(product.ID) >= 0 {
		return nil
	}

	snapshot := m.items
	m.items = append(append([]api.Product{}, m.items...), product)

	if !m.authenticated {
		return m.persistGuest()
	}

	serverItems, err := m.api.AddWishlistItem(ctx, product.ID)
	if err != nil {
		if api.IsUnauthorized(err) {
			return m.fallbackToGuest("add", product.ID)
		}
		m.items = snapshot
		return fmt.Errorf("add wishlist item %s: %w", product.ID, err)
	}
	m.items = serverItems
	return nil
}

// Remove takes a product off the wishlist. Removing an absent product is a
// no-op. Failure semantics mirror Add.
func (m *Manager) Remove(ctx context.Context, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(productID)
	if i < 0 {
		return nil
	}

	snapshot := m.items
	m.items = append(append([]api.Product{}, m.items[:i]...), m.items[i+1:]...)

	if !m.authenticated {
		return m.persistGuest()
	}

	serverItems, err := m.api.RemoveWishlistItem(ctx, productID)
	if err != nil {
		if api.IsUnauthorized(err) {
			return m.fallbackToGuest("remove", productID)
		}
		m.items = snapshot
		return fmt.Errorf("remove wishlist item %s: %w", productID, err)
	}
	m.items = serverItems
	return nil
}

// Refresh rebuilds local state from the current authority.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *Manager) refreshLocked(ctx context.Context) error {
	if m.authenticated {
		items, err := m.api.GetWishlist(ctx)
		if err != nil {
			if api.IsUnauthorized(err) {
				return m.fallbackToGuest("refresh", "")
			}
			return fmt.Errorf("refresh wishlist: %w", err)
		}
		m.items = items
		return nil
	}

	var items []api.Product
	if _, err := m.store.Get(storage.KeyGuestWishlist, &items); err != nil {
		return fmt.Errorf("load guest wishlist: %w", err)
	}
	m.items = items
	return nil
}

// Authenticate switches to authenticated mode and loads the server
// wishlist. The guest list is deliberately not merged and stays in
// storage untouched.
func (m *Manager) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = true
	return m.refreshLocked(ctx)
}

// Logout returns the manager to guest mode and reloads the stored guest
// list.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = false
	return m.refreshLocked(context.Background())
}

// fallbackToGuest handles a 401: the session is gone, so the manager
// clears the stale token, drops to guest mode, and persists the
// optimistic state locally.
func (m *Manager) fallbackToGuest(op, productID string) error {
	m.logger.Warn("wishlist session expired, continuing as guest",
		slog.String("operation", op),
		slog.String("product_id", productID))
	if err := storage.ClearToken(m.store); err != nil {
		m.logger.Warn("clear stale auth token", slog.String("error", err.Error()))
	}
	m.authenticated = false
	return m.persistGuest()
}

func (m *Manager) persistGuest() error {
	if len(m.items) == 0 {
		if err := m.store.Delete(storage.KeyGuestWishlist); err != nil {
			return fmt.Errorf("clear guest wishlist: %w", err)
		}
		return nil
	}
	if err := m.store.Set(storage.KeyGuestWishlist, m.items); err != nil {
		return fmt.Errorf("persist guest wishlist: %w", err)
	}
	return nil
}
