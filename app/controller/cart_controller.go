package controller

import (
	"log"
	"net/http"
	"strings"

	"ekta-storefront/models"
	"ekta-storefront/service"
	"ekta-storefront/utils"
)

// CartController handles HTTP requests for the session cart
type CartController struct {
	carts   *service.CartRegistry
	catalog *service.CatalogService
}

// NewCartController creates a new CartController
func NewCartController(carts *service.CartRegistry, catalog *service.CatalogService) *CartController {
	return &CartController{
		carts:   carts,
		catalog: catalog,
	}
}

func (c *CartController) cart(w http.ResponseWriter, r *http.Request) (*service.CartStore, bool) {
	s, ok := currentSession(w, r)
	if !ok {
		return nil, false
	}
	return c.carts.For(s.ID), true
}

// resolveVariant validates size and color against the product's variants
func resolveVariant(product models.Product, size, color string) (string, string, error) {
	canonicalSize, ok := utils.MatchVariant(product.Sizes, size)
	if !ok {
		return "", "", &service.ValidationError{Message: "size must be one of: " + strings.Join(product.Sizes, ", ")}
	}
	canonicalColor, ok := utils.MatchVariant(product.Colors, color)
	if !ok {
		return "", "", &service.ValidationError{Message: "color must be one of: " + strings.Join(product.Colors, ", ")}
	}
	return canonicalSize, canonicalColor, nil
}

// GetCart handles GET /cart
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GetCart", r)
		return
	}
	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

// Items handles POST, PUT and DELETE /cart/items
func (c *CartController) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.AddItem(w, r)
	case http.MethodPut:
		c.UpdateItem(w, r)
	case http.MethodDelete:
		c.RemoveItem(w, r)
	default:
		methodNotAllowed(w, "CartItems", r)
	}
}

// AddItem handles POST /cart/items
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AddToCart: Received %s request to %s", r.Method, r.URL.Path)

	var req models.AddToCartRequest
	if !decodeJSON(w, r, "AddToCart", &req) {
		return
	}

	product, err := c.catalog.Get(strings.TrimSpace(req.ProductID))
	if err != nil {
		log.Printf("❌ AddToCart: %v", err)
		writeServiceError(w, err)
		return
	}
	size, color, err := resolveVariant(product, req.Size, req.Color)
	if err != nil {
		log.Printf("❌ AddToCart: %v", err)
		writeServiceError(w, err)
		return
	}

	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	cart.AddToCart(product, size, color)

	log.Printf("✅ AddToCart: product=%s size=%s color=%s", product.ID, size, color)
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

// UpdateItem handles PUT /cart/items
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuantityRequest
	if !decodeJSON(w, r, "UpdateQuantity", &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	cart.UpdateQuantity(strings.TrimSpace(req.ProductID), req.Size, req.Color, req.Quantity)

	log.Printf("✅ UpdateQuantity: product=%s size=%s color=%s quantity=%d", req.ProductID, req.Size, req.Color, req.Quantity)
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

// RemoveItem handles DELETE /cart/items?productId=&size=&color=
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID := strings.TrimSpace(q.Get("productId"))
	if productID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}

	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	cart.RemoveFromCart(productID, q.Get("size"), q.Get("color"))
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

// ClearCart handles DELETE /cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "ClearCart", r)
		return
	}
	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	cart.ClearCart()
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

// SetDrawer handles PUT /cart/drawer
func (c *CartController) SetDrawer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "SetDrawer", r)
		return
	}
	var req models.CartDrawerRequest
	if !decodeJSON(w, r, "SetDrawer", &req) {
		return
	}
	cart, ok := c.cart(w, r)
	if !ok {
		return
	}
	cart.SetOpen(req.Open)
	writeJSON(w, http.StatusOK, cart.Snapshot())
}
