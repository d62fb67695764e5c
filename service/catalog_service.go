package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"ekta-storefront/models"
)

// LiveSearchLimit is the number of suggestions shown in the search dropdown
const LiveSearchLimit = 6

// RelatedLimit is the number of products shown under "You may also like"
const RelatedLimit = 4

// PopularSearches are suggested while the search box is empty
var PopularSearches = []string{"Wool Sweater", "Linen Blazer", "Cotton Tee", "Baby Onesie"}

// SearchParams holds the search dropdown / shop filters.
// Empty Category or PriceRange means "all".
type SearchParams struct {
	Query      string
	Category   string
	PriceRange string
}

// PriceBucket is a half-open price interval; Max == nil means unbounded
type PriceBucket struct {
	Min int64
	Max *int64
}

// Contains reports whether price falls inside [Min, Max)
func (b PriceBucket) Contains(price int64) bool {
	if price < b.Min {
		return false
	}
	return b.Max == nil || price < *b.Max
}

// ParsePriceBucket parses "all", "min-max" or "min-".
// Returns nil for "all".
func ParsePriceBucket(raw string) (*PriceBucket, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == models.CategoryAll {
		return nil, nil
	}

	minStr, maxStr, found := strings.Cut(raw, "-")
	if !found {
		return nil, validationErrorf("invalid price range %q, expected min-max or min-", raw)
	}
	min, err := strconv.ParseInt(strings.TrimSpace(minStr), 10, 64)
	if err != nil || min < 0 {
		return nil, validationErrorf("invalid price range %q: bad minimum", raw)
	}

	bucket := &PriceBucket{Min: min}
	if maxStr = strings.TrimSpace(maxStr); maxStr != "" {
		max, err := strconv.ParseInt(maxStr, 10, 64)
		if err != nil || max <= min {
			return nil, validationErrorf("invalid price range %q: bad maximum", raw)
		}
		bucket.Max = &max
	}
	return bucket, nil
}

// LiveSearchResult is the truncated result shown in the search dropdown
type LiveSearchResult struct {
	Query       string           `json:"query"`
	Suggestions []models.Product `json:"suggestions"`
	Total       int              `json:"total"`
	HasMore     bool             `json:"hasMore"`
	Popular     []string         `json:"popularSearches,omitempty"`
}

type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

// LoadCatalog parses the YAML catalog and derives product ratings
func LoadCatalog(data []byte) ([]models.Product, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Products))
	for i := range file.Products {
		p := &file.Products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("product at position %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate product id %s", p.ID)
		}
		seen[p.ID] = true
		if !models.IsValidCategory(p.Category) {
			return nil, fmt.Errorf("product %s has invalid category %q", p.ID, p.Category)
		}
		if p.Reviews == nil {
			p.Reviews = []models.Review{}
		}
		p.Rating = models.AverageRating(p.Reviews)
	}

	log.Printf("✓ Catalog loaded: %d products", len(file.Products))
	return file.Products, nil
}

// CatalogService serves the static product catalog.
// The product list is never mutated after construction.
type CatalogService struct {
	products []models.Product
	byID     map[string]int
}

// NewCatalogService creates a new CatalogService over products in catalog order
func NewCatalogService(products []models.Product) *CatalogService {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &CatalogService{products: products, byID: byID}
}

// Get returns a product by id
func (s *CatalogService) Get(id string) (models.Product, error) {
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return s.products[i], nil
}

// Related returns up to RelatedLimit other products of the same category, in catalog order
func (s *CatalogService) Related(id string) ([]models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	out := []models.Product{}
	for _, p := range s.products {
		if len(out) == RelatedLimit {
			break
		}
		if p.ID != product.ID && p.Category == product.Category {
			out = append(out, p)
		}
	}
	return out, nil
}

// ByCategory returns the products of a category; "all" returns everything
func (s *CatalogService) ByCategory(category string) ([]models.Product, error) {
	return s.Filter(SearchParams{Category: category})
}

// NewArrivals returns the products flagged as new
func (s *CatalogService) NewArrivals() []models.Product {
	return s.where(func(p models.Product) bool { return p.IsNew })
}

// OnSale returns the products flagged as on sale
func (s *CatalogService) OnSale() []models.Product {
	return s.where(func(p models.Product) bool { return p.IsSale })
}

func (s *CatalogService) where(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Filter returns the products matching params, preserving catalog order
func (s *CatalogService) Filter(params SearchParams) ([]models.Product, error) {
	category := strings.ToLower(strings.TrimSpace(params.Category))
	if category == "" {
		category = models.CategoryAll
	}
	if category != models.CategoryAll && !models.IsValidCategory(category) {
		return nil, validationErrorf("invalid category %q, must be one of: all, men, women, baby", params.Category)
	}

	bucket, err := ParsePriceBucket(params.PriceRange)
	if err != nil {
		return nil, err
	}

	// whitespace only decides whether there is a query; it is matched as typed
	fold := cases.Fold()
	query := ""
	if strings.TrimSpace(params.Query) != "" {
		query = fold.String(params.Query)
	}

	return s.where(func(p models.Product) bool {
		if category != models.CategoryAll && p.Category != category {
			return false
		}
		if bucket != nil && !bucket.Contains(p.Price) {
			return false
		}
		if query == "" {
			return true
		}
		return strings.Contains(fold.String(p.Name), query) ||
			strings.Contains(fold.String(p.Subcategory), query)
	}), nil
}

// LiveSearch returns at most LiveSearchLimit suggestions plus the untruncated count.
// An empty query yields no suggestions and the popular searches instead.
func (s *CatalogService) LiveSearch(params SearchParams) (*LiveSearchResult, error) {
	matches, err := s.Filter(params)
	if err != nil {
		return nil, err
	}

	result := &LiveSearchResult{
		Query:       params.Query,
		Suggestions: []models.Product{},
	}
	if strings.TrimSpace(params.Query) == "" {
		result.Popular = PopularSearches
		return result, nil
	}

	result.Total = len(matches)
	if len(matches) > LiveSearchLimit {
		matches = matches[:LiveSearchLimit]
		result.HasMore = true
	}
	result.Suggestions = matches
	return result, nil
}
