package controller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekta-storefront/models"
	"ekta-storefront/service"
	"ekta-storefront/storage"
)

func TestWishlistFlow(t *testing.T) {
	carts := service.NewCartRegistry()
	c := NewWishlistController(service.NewWishlistRegistry(storage.NewMemoryStore()), carts, testCatalog(t))

	for i := 0; i < 2; i++ {
		rec := serve(c.AddItem, newRequest(t, guest, http.MethodPost, "/wishlist/items", models.AddToWishlistRequest{ProductID: "2"}))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decodeBody[models.WishlistResponse](t, rec).TotalItems)
	}

	rec := serve(c.Item, newRequest(t, guest, http.MethodGet, "/wishlist/items/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"inWishlist": true}, decodeBody[map[string]bool](t, rec))

	rec = serve(c.Item, newRequest(t, shopper, http.MethodGet, "/wishlist/items/2", nil))
	assert.Equal(t, map[string]bool{"inWishlist": false}, decodeBody[map[string]bool](t, rec))

	rec = serve(c.Item, newRequest(t, guest, http.MethodDelete, "/wishlist/items/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decodeBody[models.WishlistResponse](t, rec).TotalItems)
}

func TestWishlistMoveToCart(t *testing.T) {
	carts := service.NewCartRegistry()
	c := NewWishlistController(service.NewWishlistRegistry(storage.NewMemoryStore()), carts, testCatalog(t))

	rec := serve(c.Item, newRequest(t, guest, http.MethodPost, "/wishlist/items/4/move-to-cart", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	serve(c.AddItem, newRequest(t, guest, http.MethodPost, "/wishlist/items", models.AddToWishlistRequest{ProductID: "4"}))
	rec = serve(c.Item, newRequest(t, guest, http.MethodPost, "/wishlist/items/4/move-to-cart", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := carts.For(guest.ID).Items()
	require.Len(t, items, 1)
	assert.Equal(t, "S", items[0].Size)
	assert.Equal(t, "Charcoal", items[0].Color)

	rec = serve(c.Wishlist, newRequest(t, guest, http.MethodGet, "/wishlist", nil))
	assert.Equal(t, 0, decodeBody[models.WishlistResponse](t, rec).TotalItems)
}

func TestWishlistUnknownProduct(t *testing.T) {
	c := NewWishlistController(service.NewWishlistRegistry(storage.NewMemoryStore()), service.NewCartRegistry(), testCatalog(t))

	rec := serve(c.AddItem, newRequest(t, guest, http.MethodPost, "/wishlist/items", models.AddToWishlistRequest{ProductID: "nope"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(c.Wishlist, newRequest(t, guest, http.MethodDelete, "/wishlist", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// unreadableStore fails reads until healed
type unreadableStore struct {
	storage.KeyValueStore
	mu     sync.Mutex
	broken bool
}

func (u *unreadableStore) Get(ctx context.Context, key string) (string, bool, error) {
	u.mu.Lock()
	broken := u.broken
	u.mu.Unlock()
	if broken {
		return "", false, errors.New("connection refused")
	}
	return u.KeyValueStore.Get(ctx, key)
}

func (u *unreadableStore) heal() {
	u.mu.Lock()
	u.broken = false
	u.mu.Unlock()
}

func TestWishlistUnreadableStoreAnswers503(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemoryStore()
	require.NoError(t, storage.Scoped(base, guest.ID).Set(ctx, service.WishlistKey, `[{"id":"1"}]`))
	store := &unreadableStore{KeyValueStore: base, broken: true}
	c := NewWishlistController(service.NewWishlistRegistry(store), service.NewCartRegistry(), testCatalog(t))

	rec := serve(c.Wishlist, newRequest(t, guest, http.MethodGet, "/wishlist", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(c.AddItem, newRequest(t, guest, http.MethodPost, "/wishlist/items", models.AddToWishlistRequest{ProductID: "2"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	raw, _, err := storage.Scoped(base, guest.ID).Get(ctx, service.WishlistKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, raw)

	store.heal()
	rec = serve(c.AddItem, newRequest(t, guest, http.MethodPost, "/wishlist/items", models.AddToWishlistRequest{ProductID: "2"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeBody[models.WishlistResponse](t, rec).TotalItems)
}
