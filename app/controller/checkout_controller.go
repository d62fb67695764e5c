package controller

import (
	"log"
	"net/http"

	"ekta-storefront/models"
	"ekta-storefront/service"
)

// CheckoutController handles HTTP requests for checkout
type CheckoutController struct {
	checkout *service.CheckoutService
	carts    *service.CartRegistry
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(checkout *service.CheckoutService, carts *service.CartRegistry) *CheckoutController {
	return &CheckoutController{
		checkout: checkout,
		carts:    carts,
	}
}

// Checkout handles GET /checkout (quote) and POST /checkout (place order)
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	cart := c.carts.For(s.ID)

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, c.checkout.Quote(cart))
	case http.MethodPost:
		log.Printf("📥 PlaceOrder: Received %s request to %s", r.Method, r.URL.Path)
		var req models.PlaceOrderRequest
		if !decodeJSON(w, r, "PlaceOrder", &req) {
			return
		}
		confirmation, err := c.checkout.PlaceOrder(r.Context(), s.UserID, cart, req)
		if err != nil {
			log.Printf("❌ PlaceOrder: %v", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, confirmation)
	default:
		methodNotAllowed(w, "Checkout", r)
	}
}
