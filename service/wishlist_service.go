package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"ekta-storefront/models"
	"ekta-storefront/storage"
)

// WishlistKey is the storage key holding the serialized wishlist
const WishlistKey = "ekta_wishlist"

// WishlistStore is a set of saved products persisted to a key-value store.
// Every mutation rewrites the full set under WishlistKey.
type WishlistStore struct {
	mu    sync.RWMutex
	store storage.KeyValueStore
	items []models.Product
}

// NewWishlistStore rehydrates the wishlist from store.
// Missing or malformed data yields an empty wishlist; a failed read is returned
// so the saved set is never overwritten by an empty one.
func NewWishlistStore(ctx context.Context, store storage.KeyValueStore) (*WishlistStore, error) {
	w := &WishlistStore{store: store, items: []models.Product{}}

	raw, found, err := store.Get(ctx, WishlistKey)
	if err != nil {
		log.Printf("❌ Wishlist: could not read persisted wishlist: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if !found {
		return w, nil
	}

	var saved []models.Product
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Printf("⚠️  Wishlist: discarding malformed persisted wishlist: %v", err)
		return w, nil
	}

	seen := make(map[string]bool, len(saved))
	for _, p := range saved {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		w.items = append(w.items, p)
	}
	return w, nil
}

// persist writes the current set; caller holds mu
func (w *WishlistStore) persist(ctx context.Context) error {
	if w.items == nil {
		w.items = []models.Product{}
	}
	data, err := json.Marshal(w.items)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := w.store.Set(ctx, WishlistKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist wishlist: %w", err)
	}
	return nil
}

// mutate applies change and persists; on persistence failure the previous set is restored
func (w *WishlistStore) mutate(ctx context.Context, change func([]models.Product) []models.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.items
	w.items = change(append([]models.Product(nil), prev...))
	if err := w.persist(ctx); err != nil {
		w.items = prev
		log.Printf("❌ Wishlist: %v", err)
		return err
	}
	return nil
}

// AddToWishlist inserts product; adding a present id is a no-op
func (w *WishlistStore) AddToWishlist(ctx context.Context, product models.Product) error {
	return w.mutate(ctx, func(items []models.Product) []models.Product {
		for _, p := range items {
			if p.ID == product.ID {
				return items
			}
		}
		return append(items, product)
	})
}

// RemoveFromWishlist deletes productID from the set
func (w *WishlistStore) RemoveFromWishlist(ctx context.Context, productID string) error {
	return w.mutate(ctx, func(items []models.Product) []models.Product {
		out := items[:0]
		for _, p := range items {
			if p.ID != productID {
				out = append(out, p)
			}
		}
		return out
	})
}

// ClearWishlist empties the set
func (w *WishlistStore) ClearWishlist(ctx context.Context) error {
	return w.mutate(ctx, func([]models.Product) []models.Product {
		return []models.Product{}
	})
}

// IsInWishlist reports whether productID is saved
func (w *WishlistStore) IsInWishlist(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Items returns the saved products in insertion order
func (w *WishlistStore) Items() []models.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.Product, len(w.items))
	copy(out, w.items)
	return out
}

// TotalItems is the number of saved products
func (w *WishlistStore) TotalItems() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.items)
}

// Snapshot returns the wishlist as served by the API
func (w *WishlistStore) Snapshot() models.WishlistResponse {
	items := w.Items()
	return models.WishlistResponse{Items: items, TotalItems: len(items)}
}

// wishlistLoadTimeout bounds the first read of a session's wishlist
const wishlistLoadTimeout = 5 * time.Second

type wishlistEntry struct {
	wishlist *WishlistStore
	lastSeen time.Time
}

// WishlistRegistry hands out one WishlistStore per session, each on its own
// namespace of the shared key-value store
type WishlistRegistry struct {
	mu        sync.Mutex
	store     storage.KeyValueStore
	wishlists map[string]*wishlistEntry
	now       func() time.Time
}

// NewWishlistRegistry creates a WishlistRegistry over store
func NewWishlistRegistry(store storage.KeyValueStore) *WishlistRegistry {
	return &WishlistRegistry{store: store, wishlists: make(map[string]*wishlistEntry), now: time.Now}
}

func (r *WishlistRegistry) cached(sessionID string) (*WishlistStore, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.wishlists[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.wishlist, true
}

// For returns the wishlist of sessionID, rehydrating it on first use.
// The read runs outside the registry lock and survives the request being
// cancelled; a failed read is not cached so the next call retries it.
func (r *WishlistRegistry) For(ctx context.Context, sessionID string) (*WishlistStore, error) {
	if w, ok := r.cached(sessionID); ok {
		return w, nil
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wishlistLoadTimeout)
	defer cancel()
	w, err := NewWishlistStore(loadCtx, storage.Scoped(r.store, sessionID))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.wishlists[sessionID]; ok {
		// another request finished loading first
		e.lastSeen = r.now()
		return e.wishlist, nil
	}
	r.wishlists[sessionID] = &wishlistEntry{wishlist: w, lastSeen: r.now()}
	return w, nil
}

// Evict drops wishlists not requested for longer than idle and returns how many
// were dropped. Their saved sets stay in the key-value store.
func (r *WishlistRegistry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for id, e := range r.wishlists {
		if e.lastSeen.Before(cutoff) {
			delete(r.wishlists, id)
			n++
		}
	}
	return n
}

// Len is the number of wishlists held in memory
func (r *WishlistRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wishlists)
}
