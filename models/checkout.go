package models

// CheckoutQuote represents the order summary shown at checkout
type CheckoutQuote struct {
	ItemCount    int    `json:"itemCount"`
	Subtotal     int64  `json:"subtotal"`
	Shipping     int64  `json:"shipping"`
	Total        int64  `json:"total"`
	FreeShipping bool   `json:"freeShipping"`
	Display      string `json:"display"`
}

// PlaceOrderRequest represents the request body for POST /checkout
type PlaceOrderRequest struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PaymentMethod string `json:"paymentMethod"`
}

// OrderConfirmation is returned once an order was placed
type OrderConfirmation struct {
	OrderID string        `json:"orderId"`
	Quote   CheckoutQuote `json:"quote"`
	Message string        `json:"message"`
}
