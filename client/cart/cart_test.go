package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidegrove/storefront/client/api"
	"github.com/tidegrove/storefront/client/storage"
)

// fakeAPI is an in-memory stand-in for the storefront API: a product
// catalog plus one server cart with add-merge semantics.
type fakeAPI struct {
	mu       sync.Mutex
	products map[string]api.Product
	cart     api.Cart
	failNext int // HTTP status to return for the next mutation, 0 for none
	adds     []string
}

func newFakeAPI(products ...api.Product) *fakeAPI {
	f := &fakeAPI{products: map[string]api.Product{}, cart: api.Cart{ID: "srv-cart"}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeAPI) recompute() {
	f.cart.ItemCount = 0
	f.cart.Subtotal = 0
	for _, it := range f.cart.Items {
		price := it.Price
		if it.SalePrice != nil {
			price = *it.SalePrice
		}
		f.cart.ItemCount += it.Quantity
		f.cart.Subtotal += int64(it.Quantity) * price
	}
}

func writeData(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/products/"):
			id := strings.TrimPrefix(r.URL.Path, "/api/v1/products/")
			p, ok := f.products[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": "NOT_FOUND"}})
				return
			}
			writeData(w, p)

		case r.URL.Path == "/api/v1/cart" && r.Method == http.MethodGet:
			writeData(w, f.cart)

		case r.URL.Path == "/api/v1/cart/items" && r.Method == http.MethodPost:
			if f.failNext != 0 {
				status := f.failNext
				f.failNext = 0
				w.WriteHeader(status)
				return
			}
			var body struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.adds = append(f.adds, body.ProductID)
			p, ok := f.products[body.ProductID]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			merged := false
			for i := range f.cart.Items {
				if f.cart.Items[i].ProductID == body.ProductID {
					f.cart.Items[i].Quantity += body.Quantity
					merged = true
				}
			}
			if !merged {
				f.cart.Items = append(f.cart.Items, api.CartItem{
					ProductID: p.ID, Name: p.Name, Images: p.Images,
					Price: p.Price, SalePrice: p.SalePrice, Quantity: body.Quantity,
				})
			}
			f.recompute()
			writeData(w, f.cart)

		case strings.HasPrefix(r.URL.Path, "/api/v1/cart/items/"):
			if f.failNext != 0 {
				status := f.failNext
				f.failNext = 0
				w.WriteHeader(status)
				return
			}
			id := strings.TrimPrefix(r.URL.Path, "/api/v1/cart/items/")
			switch r.Method {
			case http.MethodPut:
				var body struct {
					Quantity int `json:"quantity"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				for i := range f.cart.Items {
					if f.cart.Items[i].ProductID == id {
						f.cart.Items[i].Quantity = body.Quantity
					}
				}
			case http.MethodDelete:
				kept := f.cart.Items[:0]
				for _, it := range f.cart.Items {
					if it.ProductID != id {
						kept = append(kept, it)
					}
				}
				f.cart.Items = kept
			}
			f.recompute()
			writeData(w, f.cart)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func salePrice(v int64) *int64 { return &v }

func testProducts() []api.Product {
	return []api.Product{
		{ID: "p1", Name: "Desk Lamp", Price: 2500},
		{ID: "p2", Name: "Mug", Price: 1200, SalePrice: salePrice(900)},
	}
}

func newTestManager(t *testing.T, fake *fakeAPI) (*Manager, *storage.MemStore) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemStore()
	logger := slog.New(slog.DiscardHandler)
	return NewManager(api.New(srv.URL, nil), store, logger), store
}

func TestGuestAddMergesByProduct(t *testing.T) {
	mgr, store := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 1))
	require.NoError(t, mgr.AddToCart(ctx, "p1", 2))

	cart := mgr.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, GuestCartID, cart.ID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, MutationCommitted, mgr.LastMutation())

	var lines []guestLine
	ok, err := store.Get(storage.KeyGuestCart, &lines)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestTotalsRecomputedFromItems(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 2)) // 2 * 2500
	require.NoError(t, mgr.AddToCart(ctx, "p2", 3)) // 3 * 900 sale price

	cart := mgr.Cart()
	assert.Equal(t, 5, cart.ItemCount)
	assert.Equal(t, int64(2*2500+3*900), cart.Subtotal)

	require.NoError(t, mgr.UpdateItem(ctx, "p2", 1))
	cart = mgr.Cart()
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, int64(2*2500+900), cart.Subtotal)
}

func TestRemovingLastGuestItemDeletesStorage(t *testing.T) {
	mgr, store := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 1))
	require.True(t, store.Has(storage.KeyGuestCart))

	require.NoError(t, mgr.RemoveItem(ctx, "p1"))
	assert.Nil(t, mgr.Cart())
	assert.False(t, store.Has(storage.KeyGuestCart))
}

func TestUpdateToZeroRemoves(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 2))
	require.NoError(t, mgr.UpdateItem(ctx, "p1", 0))
	assert.Nil(t, mgr.Cart())
}

func TestAuthenticatedRollbackOnServerFailure(t *testing.T) {
	fake := newFakeAPI(testProducts()...)
	mgr, _ := newTestManager(t, fake)
	ctx := context.Background()

	require.NoError(t, mgr.Authenticate(ctx, "u1"))
	require.NoError(t, mgr.AddToCart(ctx, "p1", 2))
	before := mgr.Cart()

	fake.mu.Lock()
	fake.failNext = http.StatusInternalServerError
	fake.mu.Unlock()

	err := mgr.UpdateItem(ctx, "p1", 7)
	require.Error(t, err)
	assert.Equal(t, MutationRolledBack, mgr.LastMutation())
	assert.Equal(t, before, mgr.Cart())
}

func TestAuthenticatedRemoveRollbackOnFailure(t *testing.T) {
	fake := newFakeAPI(testProducts()...)
	mgr, _ := newTestManager(t, fake)
	ctx := context.Background()

	require.NoError(t, mgr.Authenticate(ctx, "u1"))
	require.NoError(t, mgr.AddToCart(ctx, "p1", 1))
	before := mgr.Cart()

	fake.mu.Lock()
	fake.failNext = http.StatusServiceUnavailable
	fake.mu.Unlock()

	require.Error(t, mgr.RemoveItem(ctx, "p1"))
	assert.Equal(t, MutationRolledBack, mgr.LastMutation())
	assert.Equal(t, before, mgr.Cart())
}

func TestMergeOnLogin(t *testing.T) {
	fake := newFakeAPI(testProducts()...)
	mgr, store := newTestManager(t, fake)
	ctx := context.Background()

	// Server cart already holds p1; guest adds p1 and p2.
	fake.mu.Lock()
	fake.cart.Items = []api.CartItem{{ProductID: "p1", Name: "Desk Lamp", Price: 2500, Quantity: 1}}
	fake.recompute()
	fake.mu.Unlock()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 2))
	require.NoError(t, mgr.AddToCart(ctx, "p2", 1))

	require.NoError(t, mgr.Authenticate(ctx, "u1"))

	assert.False(t, store.Has(storage.KeyGuestCart), "guest cart must be deleted after merge")

	cart := mgr.Cart()
	require.NotNil(t, cart)
	assert.Equal(t, "srv-cart", cart.ID)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity, "guest quantity merged into server line")
	assert.ElementsMatch(t, []string{"p1", "p2"}, fake.adds)
}

func TestMergeSkipsFailedLines(t *testing.T) {
	fake := newFakeAPI(testProducts()...)
	mgr, store := newTestManager(t, fake)
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 1))
	require.NoError(t, mgr.AddToCart(ctx, "p2", 1))

	fake.mu.Lock()
	fake.failNext = http.StatusInternalServerError // first merged line fails
	fake.mu.Unlock()

	require.NoError(t, mgr.Authenticate(ctx, "u1"))
	assert.False(t, store.Has(storage.KeyGuestCart))

	cart := mgr.Cart()
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1, "only the surviving line reaches the server cart")
}

func TestRefreshSkipsUnavailableProducts(t *testing.T) {
	fake := newFakeAPI(testProducts()...)
	mgr, store := newTestManager(t, fake)
	ctx := context.Background()

	require.NoError(t, store.Set(storage.KeyGuestCart, []guestLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "gone", Quantity: 1},
	}))

	require.NoError(t, mgr.Refresh(ctx))

	cart := mgr.Cart()
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
}

func TestRefreshEmptyStorage(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeAPI(testProducts()...))
	require.NoError(t, mgr.Refresh(context.Background()))
	assert.Nil(t, mgr.Cart())
}

func TestClearDropsLocalAndStorage(t *testing.T) {
	mgr, store := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	require.NoError(t, mgr.AddToCart(ctx, "p1", 1))
	require.NoError(t, mgr.Clear())
	assert.Nil(t, mgr.Cart())
	assert.False(t, store.Has(storage.KeyGuestCart))
}

func TestAddUnknownProductGuest(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeAPI(testProducts()...))
	err := mgr.AddToCart(context.Background(), "nope", 1)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Nil(t, mgr.Cart())
}

func TestConcurrentMutationsSerialized(t *testing.T) {
	mgr, _ := newTestManager(t, newFakeAPI(testProducts()...))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.AddToCart(ctx, "p1", 1)
		}()
	}
	wg.Wait()

	cart := mgr.Cart()
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 10, cart.Items[0].Quantity)
	assert.Equal(t, int64(10*2500), cart.Subtotal)
}

func TestMutationStateString(t *testing.T) {
	assert.Equal(t, "idle", MutationIdle.String())
	assert.Equal(t, "awaiting-server", MutationAwaitingServer.String())
	assert.Equal(t, "rolled-back", MutationRolledBack.String())
}
