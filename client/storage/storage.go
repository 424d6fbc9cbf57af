// Package storage provides the client-side persistence used by the
// storefront SDK for guest carts, guest wishlists, and the auth token. It is
// the desktop analog of browser localStorage: a small set of fixed string
// keys mapping to JSON values.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Fixed storage keys. Guest cart and wishlist data live under these keys
// until a login merges (cart) or supersedes (wishlist) them.
const (
	KeyGuestCart     = "guest_cart"
	KeyGuestWishlist = "guest_wishlist"
	KeyAuthToken     = "auth_token"
)

// Store is a synchronous key-value store with JSON values.
type Store interface {
	// Get decodes the value under key into dst, reporting whether the key
	// was present.
	Get(key string, dst any) (bool, error)

	// Set stores v under key, replacing any previous value.
	Set(key string, v any) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// FileStore persists all keys in a single JSON file, written synchronously
// on every mutation so state survives process exits. Safe for concurrent
// use within one process; cross-process coordination is not provided.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore rooted at dir, creating dir when needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, "storefront.json")}, nil
}

func (s *FileStore) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode value for %q: %w", key, err)
	}
	return true, nil
}

func (s *FileStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	data[key] = raw
	return s.save(data)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.save(data)
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	data := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse storage file: %w", err)
		}
	}
	return data, nil
}

func (s *FileStore) save(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]json.RawMessage)}
}

func (s *MemStore) Get(key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode value for %q: %w", key, err)
	}
	return true, nil
}

func (s *MemStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	s.data[key] = raw
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Has reports whether key is present without decoding it.
func (s *MemStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Token reads the stored auth token, returning "" when absent.
func Token(s Store) string {
	var token string
	if ok, err := s.Get(KeyAuthToken, &token); !ok || err != nil {
		return ""
	}
	return token
}

// SetToken stores the auth token.
func SetToken(s Store, token string) error {
	return s.Set(KeyAuthToken, token)
}

// ClearToken removes the stored auth token.
func ClearToken(s Store) error {
	return s.Delete(KeyAuthToken)
}
