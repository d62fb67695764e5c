// Package storage provides the durable key-value storage used for
// per-session browser-style state such as the wishlist and the push cache.
package storage

import (
	"context"
	"sync"
)

// KeyValueStore is a string key-value store.
// Get reports found=false when the key does not exist.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// scopedStore prefixes every key with a namespace
type scopedStore struct {
	base      KeyValueStore
	namespace string
}

// Scoped returns a view of base where every key lives under namespace.
// Sessions use it so that fixed keys like the wishlist key do not collide.
func Scoped(base KeyValueStore, namespace string) KeyValueStore {
	return &scopedStore{base: base, namespace: namespace}
}

func (s *scopedStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, s.key(key))
}

func (s *scopedStore) Set(ctx context.Context, key string, value string) error {
	return s.base.Set(ctx, s.key(key), value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.base.Delete(ctx, s.key(key))
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Ensure MemoryStore implements KeyValueStore
var _ KeyValueStore = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
