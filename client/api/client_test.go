package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (t staticTokens) Token() string { return string(t) }

func TestGetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/p1", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "p1", "name": "Desk Lamp", "slug": "desk-lamp", "price": 2500,
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	p, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", p.Name)
	assert.Equal(t, int64(2500), p.EffectivePrice())
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "c1"}})
	}))
	defer srv.Close()

	client := New(srv.URL, staticTokens("tok-1"))
	_, err := client.GetCart(context.Background())
	require.NoError(t, err)
}

func TestNotFoundError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
			"code": "NOT_FOUND", "message": "product p9 not found",
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetProduct(context.Background(), "p9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "NOT_FOUND", se.Code)
	assert.Contains(t, se.Message, "p9")
}

func TestUnauthorizedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{
			"code": "UNAUTHORIZED", "message": "missing token",
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetWishlist(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestNetworkErrorIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := New(srv.URL, nil)
	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	_, err := client.GetCart(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestAddCartItemBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["product_id"])
		assert.EqualValues(t, 3, body["quantity"])
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "c1", "items": []map[string]any{{"product_id": "p1", "quantity": 3, "price": 1000}},
			"item_count": 3, "subtotal": 3000,
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, staticTokens("tok"))
	cart, err := client.AddCartItem(context.Background(), "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, int64(3000), cart.Subtotal)
}

func TestBreakerClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "p1", "name": "Desk Lamp", "slug": "desk-lamp", "price": 2500,
		}})
	}))
	defer srv.Close()

	client := NewWithBreaker(srv.URL, nil, slog.New(slog.DiscardHandler))
	p, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
}
