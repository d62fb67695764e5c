package models

import (
	"fmt"
	"strings"
	"time"
)

// PreferenceKey names a category of notification
type PreferenceKey string

const (
	PreferenceOrderUpdates   PreferenceKey = "order_updates"
	PreferencePriceDrops     PreferenceKey = "price_drops"
	PreferenceBackInStock    PreferenceKey = "back_in_stock"
	PreferenceSecurityAlerts PreferenceKey = "security_alerts"
	PreferencePromotions     PreferenceKey = "promotions"
)

// Frequency controls how often email notifications are batched
type Frequency string

const (
	FrequencyInstant Frequency = "instant"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyNever   Frequency = "never"
)

// PreferenceDefault is the built-in configuration for one preference key
type PreferenceDefault struct {
	Key                 PreferenceKey `json:"key"`
	Category            string        `json:"category"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	DefaultEmailEnabled bool          `json:"defaultEmailEnabled"`
	DefaultFrequency    Frequency     `json:"defaultFrequency"`
}

// DefaultPreferences lists every preference key in display order
var DefaultPreferences = []PreferenceDefault{
	{
		Key:                 PreferenceOrderUpdates,
		Category:            "orders",
		Title:               "Order Updates",
		Description:         "Get notified about order confirmations, shipping updates, and delivery status",
		DefaultEmailEnabled: true,
		DefaultFrequency:    FrequencyInstant,
	},
	{
		Key:                 PreferencePriceDrops,
		Category:            "wishlist",
		Title:               "Price Drop Alerts",
		Description:         "Receive alerts when items in your wishlist go on sale",
		DefaultEmailEnabled: true,
		DefaultFrequency:    FrequencyInstant,
	},
	{
		Key:                 PreferenceBackInStock,
		Category:            "wishlist",
		Title:               "Back in Stock",
		Description:         "Get notified when out-of-stock wishlist items become available",
		DefaultEmailEnabled: true,
		DefaultFrequency:    FrequencyInstant,
	},
	{
		Key:                 PreferenceSecurityAlerts,
		Category:            "security",
		Title:               "Security Alerts",
		Description:         "Important alerts about new logins, password changes, and suspicious activity",
		DefaultEmailEnabled: true,
		DefaultFrequency:    FrequencyInstant,
	},
	{
		Key:                 PreferencePromotions,
		Category:            "marketing",
		Title:               "Promotions & Offers",
		Description:         "Exclusive deals, seasonal sales, and special offers",
		DefaultEmailEnabled: false,
		DefaultFrequency:    FrequencyWeekly,
	},
}

// ParsePreferenceKey validates a raw preference key
func ParsePreferenceKey(raw string) (PreferenceKey, error) {
	key := PreferenceKey(strings.TrimSpace(raw))
	for _, d := range DefaultPreferences {
		if d.Key == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("invalid preference key %q", raw)
}

// ParseFrequency validates a raw frequency value
func ParseFrequency(raw string) (Frequency, error) {
	switch f := Frequency(strings.TrimSpace(raw)); f {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly, FrequencyNever:
		return f, nil
	}
	return "", fmt.Errorf("invalid frequency %q, must be one of: instant, daily, weekly, never", raw)
}

// DefaultFor returns the built-in configuration for key
func DefaultFor(key PreferenceKey) (PreferenceDefault, bool) {
	for _, d := range DefaultPreferences {
		if d.Key == key {
			return d, true
		}
	}
	return PreferenceDefault{}, false
}

// NotificationPreference represents a row of the notification_preferences table
type NotificationPreference struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	PreferenceKey PreferenceKey `json:"preference_key"`
	EmailEnabled  bool          `json:"email_enabled"`
	PushEnabled   bool          `json:"push_enabled"`
	Frequency     Frequency     `json:"frequency"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PreferenceValue is the effective value of one preference key
type PreferenceValue struct {
	Key          PreferenceKey `json:"key"`
	EmailEnabled bool          `json:"emailEnabled"`
	PushEnabled  bool          `json:"pushEnabled"`
	Frequency    Frequency     `json:"frequency"`
}

// PreferenceUpdate carries the fields to change; nil fields are left untouched
type PreferenceUpdate struct {
	EmailEnabled *bool      `json:"email_enabled,omitempty"`
	PushEnabled  *bool      `json:"push_enabled,omitempty"`
	Frequency    *Frequency `json:"frequency,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u PreferenceUpdate) IsEmpty() bool {
	return u.EmailEnabled == nil && u.PushEnabled == nil && u.Frequency == nil
}

// UpdatePreferenceRequest represents the request body for PATCH /account/notification-preferences/{key}
type UpdatePreferenceRequest struct {
	EmailEnabled *bool   `json:"emailEnabled"`
	PushEnabled  *bool   `json:"pushEnabled"`
	Frequency    *string `json:"frequency"`
}

// SavePreferencesRequest represents the request body for PUT /account/notification-preferences
type SavePreferencesRequest struct {
	Preferences []struct {
		Key          string `json:"key"`
		EmailEnabled bool   `json:"emailEnabled"`
		PushEnabled  bool   `json:"pushEnabled"`
		Frequency    string `json:"frequency"`
	} `json:"preferences"`
}

// PreferenceView is one entry of the account preferences screen
type PreferenceView struct {
	Key          PreferenceKey `json:"key"`
	Category     string        `json:"category"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	EmailEnabled bool          `json:"emailEnabled"`
	PushEnabled  bool          `json:"pushEnabled"`
	Frequency    Frequency     `json:"frequency"`
}

// PreferencesResponse represents the preferences as returned by the API
type PreferencesResponse struct {
	State       string           `json:"state"`
	Saving      bool             `json:"saving"`
	Guest       bool             `json:"guest"`
	Preferences []PreferenceView `json:"preferences"`
}

// BulkOutcome summarises a multi-key preference write
type BulkOutcome struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	FailedKeys []PreferenceKey `json:"failedKeys,omitempty"`
}
