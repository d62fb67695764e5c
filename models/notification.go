package models

import (
	"encoding/json"
	"time"
)

// Notification types accepted by the dispatch endpoint
const (
	NotificationTypeOrder    = "order"
	NotificationTypePromo    = "promo"
	NotificationTypeSecurity = "security"
	NotificationTypeWishlist = "wishlist"
)

// NotificationTypes lists the valid notification types in the order they are reported
var NotificationTypes = []string{
	NotificationTypeOrder,
	NotificationTypePromo,
	NotificationTypeSecurity,
	NotificationTypeWishlist,
}

// NotificationRequest represents one notification sent to the dispatch endpoint
// Example: {"user_id": "u1", "type": "order", "title": "Shipped", "message": "Your order is on its way"}
type NotificationRequest struct {
	UserID   string          `json:"user_id"`
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Notification represents a row of the user_notifications table
type Notification struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

// DispatchResponse is returned after notifications were inserted
type DispatchResponse struct {
	Success       bool           `json:"success"`
	Notifications []Notification `json:"notifications"`
}

// NotificationListResponse represents the signed-in user's notifications
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
