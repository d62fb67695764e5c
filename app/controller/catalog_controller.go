package controller

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"ekta-storefront/service"
)

// CatalogController handles HTTP requests for products and search
type CatalogController struct {
	catalog *service.CatalogService
	images  *service.ImageService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog *service.CatalogService, images *service.ImageService) *CatalogController {
	return &CatalogController{
		catalog: catalog,
		images:  images,
	}
}

func searchParams(r *http.Request) service.SearchParams {
	q := r.URL.Query()
	return service.SearchParams{
		Query:      q.Get("q"),
		Category:   q.Get("category"),
		PriceRange: q.Get("price"),
	}
}

// ListProducts handles GET /products
// Query params: category (all|men|women|baby), q, price (all|min-max|min-)
func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "ListProducts", r)
		return
	}

	params := searchParams(r)
	log.Printf("🔍 ListProducts: category=%q, q=%q, price=%q", params.Category, params.Query, params.PriceRange)

	products, err := c.catalog.Filter(params)
	if err != nil {
		log.Printf("❌ ListProducts: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Search handles GET /search, the live search dropdown
func (c *CatalogController) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "Search", r)
		return
	}

	result, err := c.catalog.LiveSearch(searchParams(r))
	if err != nil {
		log.Printf("❌ Search: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// NewArrivals handles GET /products/new
func (c *CatalogController) NewArrivals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "NewArrivals", r)
		return
	}
	writeJSON(w, http.StatusOK, c.catalog.NewArrivals())
}

// OnSale handles GET /products/sale
func (c *CatalogController) OnSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "OnSale", r)
		return
	}
	writeJSON(w, http.StatusOK, c.catalog.OnSale())
}

// GetProduct handles GET /products/{id}
func (c *CatalogController) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GetProduct", r)
		return
	}

	id := pathParam(r.URL.Path, "/products/")
	product, err := c.catalog.Get(id)
	if err != nil {
		log.Printf("❌ GetProduct: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// RelatedProducts handles GET /products/{id}/related
func (c *CatalogController) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "RelatedProducts", r)
		return
	}

	id := pathParam(r.URL.Path, "/products/")
	related, err := c.catalog.Related(id)
	if err != nil {
		log.Printf("❌ RelatedProducts: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, related)
}

// GetProductImage handles GET /products/{id}/images/{index}?size=thumb|medium
// Returns an optimized JPEG image, cached on disk
func (c *CatalogController) GetProductImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GetProductImage", r)
		return
	}

	// Path: /products/{id}/images/{index}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/products/"), "/"), "/")
	if len(parts) != 3 || parts[1] != "images" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		writeError(w, http.StatusBadRequest, "image index must be a number")
		return
	}

	size := r.URL.Query().Get("size")
	if size == "" {
		size = service.ImageSizeMedium
	}
	if size != service.ImageSizeThumb && size != service.ImageSizeMedium {
		writeError(w, http.StatusBadRequest, "size must be 'thumb' or 'medium'")
		return
	}

	data, err := c.images.ProductImage(r.Context(), parts[0], index, size)
	if err != nil {
		log.Printf("❌ GetProductImage: %v", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
