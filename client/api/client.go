// Package api is the storefront REST client used by the cart and wishlist
// managers. It issues each request exactly once: retry policy belongs to
// the managers, whose optimistic mutations need to observe every failure
// so they can roll back.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidegrove/storefront/pkg/httpclient"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// An empty token means the caller is a guest and the request goes out
// unauthenticated.
type TokenSource interface {
	Token() string
}

// StatusError is a non-2xx response from the storefront API.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the API. For cart and
// wishlist mutations this signals a data-integrity problem (the referenced
// product no longer exists), not a transient fault.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// Doer issues a single HTTP request. Both httpclient.Client and
// httpclient.BreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client calls the storefront REST API.
type Client struct {
	base   string
	http   Doer
	tokens TokenSource
}

// New creates a Client for the API at base (e.g. "https://shop.example.com").
// tokens may be nil for a guest-only client.
func New(base string, tokens TokenSource) *Client {
	return &Client{
		base:   base,
		http:   httpclient.New(httpclient.NoRetryConfig(10 * time.Second)),
		tokens: tokens,
	}
}

// NewWithBreaker creates a Client whose requests pass through a circuit
// breaker, failing fast with httpclient.ErrCircuitOpen while the API is
// down instead of burning the timeout on every optimistic mutation.
func NewWithBreaker(base string, tokens TokenSource, logger *slog.Logger) *Client {
	inner := httpclient.New(httpclient.NoRetryConfig(10 * time.Second))
	return &Client{
		base:   base,
		http:   httpclient.NewBreakerClient(inner, httpclient.DefaultBreakerConfig("storefront-api"), logger),
		tokens: tokens,
	}
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	if len(payload) > 0 {
		// A non-JSON body (proxy error page, for example) still maps onto a
		// StatusError below; the envelope is best effort.
		_ = json.Unmarshal(payload, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Status: resp.StatusCode}
		if env.Error != nil {
			se.Code = env.Error.Code
			se.Message = env.Error.Message
		}
		return se
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// GetProduct fetches one product by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetCart fetches the authenticated user's cart.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds quantity of a product to the server cart. The server
// merges with any existing line for the same product and returns the full
// updated cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/items", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the quantity of an existing cart line.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	body := map[string]any{"quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPut, "/api/v1/cart/items/"+url.PathEscape(productID), body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem removes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+url.PathEscape(productID), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties the server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, nil)
}

// GetWishlist fetches the authenticated user's full wishlist.
func (c *Client) GetWishlist(ctx context.Context) ([]Product, error) {
	var items []Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/wishlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWishlistItem adds a product to the wishlist and returns the full
// updated list. Adding a product already present is a no-op server side.
func (c *Client) AddWishlistItem(ctx context.Context, productID string) ([]Product, error) {
	body := map[string]any{"product_id": productID}
	var items []Product
	if err := c.do(ctx, http.MethodPost, "/api/v1/wishlist/items", body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveWishlistItem removes a product from the wishlist and returns the
// full updated list.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) ([]Product, error) {
	var items []Product
	if err := c.do(ctx, http.MethodDelete, "/api/v1/wishlist/items/"+url.PathEscape(productID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
