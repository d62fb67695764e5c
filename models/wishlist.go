package models

// WishlistResponse represents the wishlist as returned by the API
type WishlistResponse struct {
	Items      []Product `json:"items"`
	TotalItems int       `json:"totalItems"`
}

// AddToWishlistRequest represents the request body for saving a product
type AddToWishlistRequest struct {
	ProductID string `json:"productId"`
}
