package models

import "math"

// Category values a product can belong to
const (
	CategoryMen   = "men"
	CategoryWomen = "women"
	CategoryBaby  = "baby"
	CategoryAll   = "all"
)

// Review represents a customer review attached to a product
type Review struct {
	ID       string `json:"id" yaml:"id"`
	Author   string `json:"author" yaml:"author"`
	Rating   int    `json:"rating" yaml:"rating"`
	Date     string `json:"date" yaml:"date"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Verified bool   `json:"verified" yaml:"verified"`
}

// Product represents a catalog product
// Prices are whole Taka amounts
type Product struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Price         int64    `json:"price" yaml:"price"`
	OriginalPrice *int64   `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Image         string   `json:"image" yaml:"image"`
	Images        []string `json:"images" yaml:"images"`
	Category      string   `json:"category" yaml:"category"`
	Subcategory   string   `json:"subcategory" yaml:"subcategory"`
	IsNew         bool     `json:"isNew,omitempty" yaml:"isNew,omitempty"`
	IsSale        bool     `json:"isSale,omitempty" yaml:"isSale,omitempty"`
	Description   string   `json:"description" yaml:"description"`
	Sizes         []string `json:"sizes" yaml:"sizes"`
	Colors        []string `json:"colors" yaml:"colors"`
	Reviews       []Review `json:"reviews" yaml:"reviews"`
	Rating        float64  `json:"rating" yaml:"-"`
}

// AverageRating returns the mean review rating rounded to one decimal, 0 without reviews
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

// IsValidCategory reports whether category is one of the product categories
func IsValidCategory(category string) bool {
	switch category {
	case CategoryMen, CategoryWomen, CategoryBaby:
		return true
	}
	return false
}
