package wishlist

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

// fakeWishlistAPI serves the wishlist endpoints over one in-memory list.
type fakeWishlistAPI struct {
	mu       sync.Mutex
	catalog  map[string]api.Product
	items    []api.Product
	failNext int
}

func (f *fakeWishlistAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.failNext != 0 {
			status := f.failNext
			f.failNext = 0
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": "UNAUTHORIZED"}})
			return
		}

		write := func() {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": f.items})
		}

		switch {
		case r.URL.Path == "/api/v1/wishlist" && r.Method == http.MethodGet:
			write()
		case r.URL.Path == "/api/v1/wishlist/items" && r.Method == http.MethodPost:
			var body struct {
				ProductID string `json:"product_id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			present := false
			for _, it := range f.items {
				if it.ID == body.ProductID {
					present = true
				}
			}
			if !present {
				f.items = append(f.items, f.catalog[body.ProductID])
			}
			write()
		case strings.HasPrefix(r.URL.Path, "/api/v1/wishlist/items/") && r.Method == http.MethodDelete:
			id := strings.TrimPrefix(r.URL.Path, "/api/v1/wishlist/items/")
			kept := f.items[:0]
			for _, it := range f.items {
				if it.ID != id {
					kept = append(kept, it)
				}
			}
			f.items = kept
			write()
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

var (
	lamp = api.Product{ID: "p1", Name: "Desk Lamp", Price: 2500}
	mug  = api.Product{ID: "p2", Name: "Mug", Price: 1200}
)

func newTestManager(t *testing.T) (*Manager, *fakeWishlistAPI, *storage.MemStore) {
	t.Helper()
	fake := &fakeWishlistAPI{catalog: map[string]api.Product{"p1": lamp, "p2": mug}}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemStore()
	mgr := NewManager(api.New(srv.URL, nil), store, slog.New(slog.DiscardHandler))
	return mgr, fake, store
}

func TestGuestAddIsIdempotent(t *testing.T) {
	mgr, _, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Add(ctx, lamp))
	require.NoError(t, mgr.Add(ctx, lamp))

	assert.Len(t, mgr.Items(), 1)
	assert.True(t, mgr.Contains("p1"))
	assert.False(t, mgr.Contains("p2"))

	var persisted []api.Product
	ok, err := store.Get(storage.KeyGuestWishlist, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, persisted, 1)
}

func TestGuestRemoveAbsentIsNoop(t *testing.T) {
	mgr, _, _ := newTestManager(t)
	require.NoError(t, mgr.Remove(context.Background(), "p9"))
	assert.Empty(t, mgr.Items())
}

func TestGuestRemoveLastClearsStorage(t *testing.T) {
	mgr, _, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Add(ctx, lamp))
	require.NoError(t, mgr.Remove(ctx, "p1"))
	assert.False(t, store.Has(storage.KeyGuestWishlist))
}

func TestAuthenticatedAddUsesServerList(t *testing.T) {
	mgr, fake, _ := newTestManager(t)
	ctx := context.Background()

	fake.mu.Lock()
	fake.items = []api.Product{mug} // server already has p2
	fake.mu.Unlock()

	require.NoError(t, mgr.Authenticate(ctx))
	require.NoError(t, mgr.Add(ctx, lamp))

	items := mgr.Items()
	assert.Len(t, items, 2)
	assert.True(t, mgr.Contains("p1"))
	assert.True(t, mgr.Contains("p2"))
}

func TestNoMergeOnLogin(t *testing.T) {
	mgr, fake, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Add(ctx, lamp)) // guest list: p1

	require.NoError(t, mgr.Authenticate(ctx))

	// Server list (empty) replaces local state; the guest list is neither
	// merged nor deleted.
	assert.Empty(t, mgr.Items())
	fake.mu.Lock()
	assert.Empty(t, fake.items)
	fake.mu.Unlock()
	assert.True(t, store.Has(storage.KeyGuestWishlist))

	// Logging out brings the stored guest list back.
	require.NoError(t, mgr.Logout())
	assert.True(t, mgr.Contains("p1"))
}

func TestUnauthorizedFallsBackToGuest(t *testing.T) {
	mgr, fake, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, storage.SetToken(store, "stale-token"))
	require.NoError(t, mgr.Authenticate(ctx))

	fake.mu.Lock()
	fake.failNext = http.StatusUnauthorized
	fake.mu.Unlock()

	require.NoError(t, mgr.Add(ctx, lamp))

	// The add survived locally in guest mode instead of erroring out, and
	// the dead token is gone from storage.
	assert.True(t, mgr.Contains("p1"))
	assert.Empty(t, storage.Token(store))

	var persisted []api.Product
	ok, err := store.Get(storage.KeyGuestWishlist, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, persisted, 1)

	// Subsequent mutations stay in guest mode: no server traffic.
	require.NoError(t, mgr.Add(ctx, mug))
	fake.mu.Lock()
	assert.Empty(t, fake.items)
	fake.mu.Unlock()
}

func TestUnauthorizedClearsTokenOnRemoveAndRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("remove", func(t *testing.T) {
		mgr, fake, store := newTestManager(t)
		require.NoError(t, storage.SetToken(store, "stale-token"))

		fake.mu.Lock()
		fake.items = []api.Product{lamp}
		fake.mu.Unlock()
		require.NoError(t, mgr.Authenticate(ctx))

		fake.mu.Lock()
		fake.failNext = http.StatusUnauthorized
		fake.mu.Unlock()

		require.NoError(t, mgr.Remove(ctx, "p1"))
		assert.False(t, mgr.Contains("p1"))
		assert.Empty(t, storage.Token(store))
	})

	t.Run("refresh", func(t *testing.T) {
		mgr, fake, store := newTestManager(t)
		require.NoError(t, storage.SetToken(store, "stale-token"))
		require.NoError(t, mgr.Authenticate(ctx))

		fake.mu.Lock()
		fake.failNext = http.StatusUnauthorized
		fake.mu.Unlock()

		require.NoError(t, mgr.Refresh(ctx))
		assert.Empty(t, storage.Token(store))
	})
}

func TestServerErrorRollsBack(t *testing.T) {
	mgr, fake, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.Authenticate(ctx))

	fake.mu.Lock()
	fake.failNext = http.StatusInternalServerError
	fake.mu.Unlock()

	err := mgr.Add(ctx, lamp)
	require.Error(t, err)
	assert.False(t, mgr.Contains("p1"), "optimistic add must be rolled back")
}
