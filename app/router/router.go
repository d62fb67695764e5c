package router

import (
	"log"
	"net/http"
	"strings"
	"time"

	"ekta-storefront/app/controller"
	"ekta-storefront/session"
)

type Controllers struct {
	Catalog      *controller.CatalogController
	Lookbook     *controller.LookbookController
	Cart         *controller.CartController
	Wishlist     *controller.WishlistController
	Preference   *controller.PreferenceController
	Push         *controller.PushController
	Notification *controller.NotificationController
	Checkout     *controller.CheckoutController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// logRequests logs method, path and duration of every request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

// SetupRoutes registers every storefront route on mux and returns the wrapped handler
func SetupRoutes(mux *http.ServeMux, controllers *Controllers, sessions *session.Manager, limiter *RateLimiter) http.Handler {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Catalog routes
	mux.HandleFunc("/products", controllers.Catalog.ListProducts)
	mux.HandleFunc("/products/new", controllers.Catalog.NewArrivals)
	mux.HandleFunc("/products/sale", controllers.Catalog.OnSale)
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		// /products/{id}/images/{index}
		if strings.Contains(strings.TrimPrefix(r.URL.Path, "/products/"), "/images/") {
			controllers.Catalog.GetProductImage(w, r)
			return
		}
		// /products/{id}/related
		if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/related") {
			controllers.Catalog.RelatedProducts(w, r)
			return
		}
		controllers.Catalog.GetProduct(w, r)
	})
	mux.HandleFunc("/search", controllers.Catalog.Search)
	mux.HandleFunc("/lookbook", controllers.Lookbook.Lookbook)

	// Cart routes
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			controllers.Cart.ClearCart(w, r)
			return
		}
		controllers.Cart.GetCart(w, r)
	})
	mux.HandleFunc("/cart/items", controllers.Cart.Items)
	mux.HandleFunc("/cart/drawer", controllers.Cart.SetDrawer)

	// Wishlist routes
	mux.HandleFunc("/wishlist", controllers.Wishlist.Wishlist)
	mux.HandleFunc("/wishlist/items", controllers.Wishlist.AddItem)
	mux.HandleFunc("/wishlist/items/", controllers.Wishlist.Item)

	// Account routes
	mux.HandleFunc("/account/notification-preferences", controllers.Preference.Preferences)
	mux.HandleFunc("/account/notification-preferences/", controllers.Preference.Preference)
	mux.HandleFunc("/account/push", controllers.Push.Push)
	mux.HandleFunc("/account/push/permission", controllers.Push.RequestPermission)
	mux.HandleFunc("/account/notifications", controllers.Notification.List)
	mux.HandleFunc("/account/notifications/", controllers.Notification.Action)

	// Checkout
	mux.HandleFunc("/checkout", controllers.Checkout.Checkout)

	// Notification dispatch is called server to server; no session, CORS on every answer
	dispatch := controller.WithCORS(limiter.Middleware(http.HandlerFunc(controllers.Notification.Dispatch)))

	sessioned := sessions.Middleware(mux)
	return logRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/functions/send-notification" {
			dispatch.ServeHTTP(w, r)
			return
		}
		sessioned.ServeHTTP(w, r)
	}))
}
