package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidegrove/storefront/internal/wishlist/domain"
	"github.com/tidegrove/storefront/internal/wishlist/service"
	apperrors "github.com/tidegrove/storefront/pkg/errors"
	"github.com/tidegrove/storefront/pkg/middleware"
)

// memRepo is an in-memory WishlistRepository keyed per user.
type memRepo struct {
	catalog map[string]domain.Product
	items   map[string]map[string]time.Time // userID -> productID -> addedAt
	clock   time.Time
}

func newMemRepo(catalog map[string]domain.Product) *memRepo {
	return &memRepo{
		catalog: catalog,
		items:   make(map[string]map[string]time.Time),
		clock:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) Add(_ context.Context, userID, productID string) error {
	if m.items[userID] == nil {
		m.items[userID] = make(map[string]time.Time)
	}
	if _, ok := m.items[userID][productID]; !ok {
		m.clock = m.clock.Add(time.Minute)
		m.items[userID][productID] = m.clock
	}
	return nil
}

func (m *memRepo) Remove(_ context.Context, userID, productID string) error {
	if _, ok := m.items[userID][productID]; !ok {
		return apperrors.NotFound("wishlist item", productID)
	}
	delete(m.items[userID], productID)
	return nil
}

func (m *memRepo) ListProducts(_ context.Context, userID string) ([]domain.Product, error) {
	type entry struct {
		product domain.Product
		addedAt time.Time
	}
	var entries []entry
	for id, at := range m.items[userID] {
		entries = append(entries, entry{product: m.catalog[id], addedAt: at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].addedAt.After(entries[j].addedAt) })
	products := make([]domain.Product, 0, len(entries))
	for _, e := range entries {
		products = append(products, e.product)
	}
	return products, nil
}

func (m *memRepo) Exists(_ context.Context, userID, productID string) (bool, error) {
	_, ok := m.items[userID][productID]
	return ok, nil
}

func (m *memRepo) Clear(_ context.Context, userID string) error {
	delete(m.items, userID)
	return nil
}

type stubChecker struct {
	known map[string]bool
}

func (s *stubChecker) ProductExists(_ context.Context, id string) error {
	if !s.known[id] {
		return apperrors.NotFound("product", id)
	}
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	catalog := map[string]domain.Product{
		"p1": {ID: "p1", Name: "Desk Lamp", Slug: "desk-lamp", Price: 2500, Status: "active"},
		"p2": {ID: "p2", Name: "Mug", Slug: "mug", Price: 1200, Status: "active"},
	}
	known := make(map[string]bool, len(catalog))
	for id := range catalog {
		known[id] = true
	}

	logger := slog.New(slog.DiscardHandler)
	svc := service.NewWishlistService(newMemRepo(catalog), &stubChecker{known: known}, logger)
	handler := NewWishlistHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.Auth(func(token string) (*middleware.Identity, error) {
		return &middleware.Identity{UserID: token, Role: "customer"}, nil
	}))
	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Delete("/", handler.Clear)
		r.Post("/items", handler.AddItem)
		r.Get("/items/{productID}", handler.Contains)
		r.Delete("/items/{productID}", handler.RemoveItem)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer u1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

type listPayload struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

func decodeList(t *testing.T, resp *http.Response) listPayload {
	t.Helper()
	defer resp.Body.Close()
	var payload listPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestWishlistFlow(t *testing.T) {
	srv := newTestServer(t)

	// Empty list to begin with.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/wishlist", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeList(t, resp)
	assert.Empty(t, payload.Data)

	// Add two products; adding p1 again is a no-op.
	for _, id := range []string{"p1", "p2", "p1"} {
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/wishlist/items", map[string]any{"product_id": id})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		payload = decodeList(t, resp)
	}
	require.Len(t, payload.Data, 2)
	assert.Equal(t, "Mug", payload.Data[0].Name) // newest first

	// Membership probe.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/wishlist/items/p1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var contains struct {
		Data map[string]bool `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contains))
	resp.Body.Close()
	assert.True(t, contains.Data["in_wishlist"])

	// Remove returns the updated list; removing again stays a no-op.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/wishlist/items/p2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeList(t, resp)
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "p1", payload.Data[0].ID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/wishlist/items/p2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeList(t, resp)
	assert.Len(t, payload.Data, 1)

	// Clear empties everything.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/wishlist", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/wishlist", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload = decodeList(t, resp)
	assert.Empty(t, payload.Data)
}

func TestAddUnknownProduct(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/wishlist/items", map[string]any{"product_id": "nope"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddItemValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/wishlist/items", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnauthenticated(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/wishlist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
