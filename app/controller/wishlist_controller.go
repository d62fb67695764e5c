package controller

import (
	"log"
	"net/http"
	"strings"

	"ekta-storefront/models"
	"ekta-storefront/service"
)

// WishlistController handles HTTP requests for the session wishlist
type WishlistController struct {
	wishlists *service.WishlistRegistry
	carts     *service.CartRegistry
	catalog   *service.CatalogService
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(wishlists *service.WishlistRegistry, carts *service.CartRegistry, catalog *service.CatalogService) *WishlistController {
	return &WishlistController{
		wishlists: wishlists,
		carts:     carts,
		catalog:   catalog,
	}
}

// wishlistFor loads the session wishlist, answering 503 when it cannot be read
func (c *WishlistController) wishlistFor(w http.ResponseWriter, r *http.Request, op, sessionID string) (*service.WishlistStore, bool) {
	wishlist, err := c.wishlists.For(r.Context(), sessionID)
	if err != nil {
		log.Printf("❌ %s: %v", op, err)
		writeServiceError(w, err)
		return nil, false
	}
	return wishlist, true
}

// Wishlist handles GET and DELETE /wishlist
func (c *WishlistController) Wishlist(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	wishlist, ok := c.wishlistFor(w, r, "Wishlist", s.ID)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, wishlist.Snapshot())
	case http.MethodDelete:
		if err := wishlist.ClearWishlist(r.Context()); err != nil {
			log.Printf("❌ ClearWishlist: %v", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wishlist.Snapshot())
	default:
		methodNotAllowed(w, "Wishlist", r)
	}
}

// AddItem handles POST /wishlist/items
func (c *WishlistController) AddItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "AddToWishlist", r)
		return
	}
	log.Printf("📥 AddToWishlist: Received %s request to %s", r.Method, r.URL.Path)

	var req models.AddToWishlistRequest
	if !decodeJSON(w, r, "AddToWishlist", &req) {
		return
	}
	product, err := c.catalog.Get(strings.TrimSpace(req.ProductID))
	if err != nil {
		log.Printf("❌ AddToWishlist: %v", err)
		writeServiceError(w, err)
		return
	}

	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	wishlist, ok := c.wishlistFor(w, r, "AddToWishlist", s.ID)
	if !ok {
		return
	}
	if err := wishlist.AddToWishlist(r.Context(), product); err != nil {
		log.Printf("❌ AddToWishlist: %v", err)
		writeServiceError(w, err)
		return
	}

	log.Printf("✅ AddToWishlist: product=%s", product.ID)
	writeJSON(w, http.StatusOK, wishlist.Snapshot())
}

// Item handles /wishlist/items/{id} and /wishlist/items/{id}/move-to-cart
func (c *WishlistController) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/wishlist/items/"), "/")
	productID, action, _ := strings.Cut(rest, "/")
	if productID == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if action == "move-to-cart" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "MoveToCart", r)
			return
		}
		c.MoveToCart(w, r, productID)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	wishlist, ok := c.wishlistFor(w, r, "WishlistItem", s.ID)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]bool{"inWishlist": wishlist.IsInWishlist(productID)})
	case http.MethodDelete:
		if err := wishlist.RemoveFromWishlist(r.Context(), productID); err != nil {
			log.Printf("❌ RemoveFromWishlist: %v", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wishlist.Snapshot())
	default:
		methodNotAllowed(w, "WishlistItem", r)
	}
}

// MoveToCart adds the product with its first size and color, then drops it from the wishlist
func (c *WishlistController) MoveToCart(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := c.catalog.Get(productID)
	if err != nil {
		log.Printf("❌ MoveToCart: %v", err)
		writeServiceError(w, err)
		return
	}
	if len(product.Sizes) == 0 || len(product.Colors) == 0 {
		writeError(w, http.StatusConflict, "product has no size or color to add")
		return
	}

	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	wishlist, ok := c.wishlistFor(w, r, "MoveToCart", s.ID)
	if !ok {
		return
	}
	if !wishlist.IsInWishlist(productID) {
		writeError(w, http.StatusNotFound, "product is not in the wishlist")
		return
	}

	cart := c.carts.For(s.ID)
	cart.AddToCart(product, product.Sizes[0], product.Colors[0])
	if err := wishlist.RemoveFromWishlist(r.Context(), productID); err != nil {
		log.Printf("❌ MoveToCart: %v", err)
		writeServiceError(w, err)
		return
	}

	log.Printf("🛒 MoveToCart: product=%s", productID)
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":     cart.Snapshot(),
		"wishlist": wishlist.Snapshot(),
	})
}
