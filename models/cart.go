package models

// CartLine represents one line of a cart, unique per product + size + color
type CartLine struct {
	Product  Product `json:"product"`
	Size     string  `json:"size"`
	Color    string  `json:"color"`
	Quantity int     `json:"quantity"`
}

// Matches reports whether the line has the given composite key
func (l CartLine) Matches(productID, size, color string) bool {
	return l.Product.ID == productID && l.Size == size && l.Color == color
}

// CartResponse represents the cart as returned by the API
type CartResponse struct {
	Items      []CartLine `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice int64      `json:"totalPrice"`
	IsOpen     bool       `json:"isOpen"`
}

// AddToCartRequest represents the request body for adding a product to the cart
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// UpdateQuantityRequest represents the request body for changing a line quantity
type UpdateQuantityRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// CartDrawerRequest toggles the cart drawer visibility
type CartDrawerRequest struct {
	Open bool `json:"open"`
}
